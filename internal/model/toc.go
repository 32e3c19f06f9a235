package model

// TOCEntry is one parsed table-of-contents line for a county chapter.
// DeclaredPage is the page number printed in the TOC, before the physical
// offset between declared and actual PDF pages is applied.
type TOCEntry struct {
	EntityName   string `json:"entity_name"`
	SectionLabel string `json:"section_label"`
	DeclaredPage int    `json:"declared_page"`
}

// SectionRange is a validated, bounded physical page range for one county's
// chapter. StartPage and EndPage are 1-indexed and inclusive.
type SectionRange struct {
	EntityName string `json:"entity_name"`
	StartPage  int    `json:"start_page"`
	EndPage    int    `json:"end_page"`
	Confidence int    `json:"confidence"`
}

// Pages expands the range into an ordered, strictly increasing page list.
func (r SectionRange) Pages() []int {
	if r.StartPage < 1 || r.EndPage < r.StartPage {
		return nil
	}
	pages := make([]int, 0, r.EndPage-r.StartPage+1)
	for p := r.StartPage; p <= r.EndPage; p++ {
		pages = append(pages, p)
	}
	return pages
}

// Len returns the number of pages in the range.
func (r SectionRange) Len() int {
	if r.EndPage < r.StartPage {
		return 0
	}
	return r.EndPage - r.StartPage + 1
}

// Clamp caps the range at maxLen pages, dropping trailing pages. Runaway
// ranges usually come from a TOC mis-parse, so the head of the range is the
// trustworthy part.
func (r SectionRange) Clamp(maxLen int) SectionRange {
	if maxLen > 0 && r.Len() > maxLen {
		r.EndPage = r.StartPage + maxLen - 1
	}
	return r
}

// Shift moves the whole range by delta pages. Used by the dynamic offset
// correction when the county header is found near, but not at, the computed
// start page.
func (r SectionRange) Shift(delta int) SectionRange {
	r.StartPage += delta
	r.EndPage += delta
	return r
}
