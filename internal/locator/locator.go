// Package locator resolves a county name to a validated physical page range.
package locator

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/fiscalwatch/countylens/internal/config"
	"github.com/fiscalwatch/countylens/internal/document"
	"github.com/fiscalwatch/countylens/internal/model"
	"github.com/fiscalwatch/countylens/internal/toc"
)

// Confidence levels attached to a resolved range, by how it was derived.
const (
	confValidated   = 90 // header verified on the computed start page
	confShifted     = 75 // header found nearby, range shifted
	confUnvalidated = 50 // computed from TOC but header never verified
	confFallback    = 35 // static fallback map, no TOC entry
	confDefault     = 10 // fixed default range, located nothing
)

// Locator resolves county sections against one document. The TOC index and
// resolved ranges are memoized per Locator; construct one Locator per
// document and share it freely across goroutines.
type Locator struct {
	src     document.Source
	indexer *toc.Indexer
	cfg     config.LocatorConfig
	front   int // front-matter pages scanned for the TOC

	indexOnce sync.Once
	index     []model.TOCEntry

	mu     sync.RWMutex
	ranges map[string]model.SectionRange
}

// New creates a Locator for one document.
func New(src document.Source, tocCfg config.TOCConfig, cfg config.LocatorConfig) *Locator {
	return &Locator{
		src:     src,
		indexer: toc.New(tocCfg.MinDeclaredPage),
		cfg:     cfg,
		front:   tocCfg.FrontMatterPages,
		ranges:  make(map[string]model.SectionRange),
	}
}

// Index returns the memoized TOC index, parsing the front matter on first
// use. An empty index is non-fatal; resolution falls back to the static map.
func (l *Locator) Index(ctx context.Context) []model.TOCEntry {
	l.indexOnce.Do(func() {
		var sb strings.Builder
		limit := l.front
		if pc := l.src.PageCount(); limit > pc {
			limit = pc
		}
		for p := 1; p <= limit; p++ {
			text, err := l.src.PageText(ctx, p)
			if err != nil {
				zap.L().Warn("locator: front matter page unreadable",
					zap.Int("page", p), zap.Error(err))
				continue
			}
			sb.WriteString(text)
			sb.WriteString("\n")
		}
		l.index = l.indexer.Parse(sb.String())
	})
	return l.index
}

// Resolve returns the section range for a county. Hard failure (ErrNotFound)
// only when the name matches neither the TOC, the roster, nor the static
// fallback map; every weaker outcome returns a range with lower confidence.
func (l *Locator) Resolve(ctx context.Context, name string) (model.SectionRange, error) {
	key := model.Normalize(name)
	if key == "" {
		return model.SectionRange{}, model.ErrNotFound
	}

	l.mu.RLock()
	if r, ok := l.ranges[key]; ok {
		l.mu.RUnlock()
		return r, nil
	}
	l.mu.RUnlock()

	r, err := l.resolve(ctx, name, key)
	if err != nil {
		return model.SectionRange{}, err
	}

	l.mu.Lock()
	l.ranges[key] = r
	l.mu.Unlock()
	return r, nil
}

func (l *Locator) resolve(ctx context.Context, name, key string) (model.SectionRange, error) {
	canonical, inRoster := model.CanonicalName(name)
	display := canonical
	if display == "" {
		display = strings.TrimSpace(name)
	}

	index := l.Index(ctx)
	pos := matchEntry(index, key)
	if pos < 0 {
		zap.L().Warn("locator: county not in TOC, using fallback",
			zap.String("county", display))
		if !inRoster {
			return model.SectionRange{}, model.ErrNotFound
		}
		return l.fallbackRange(canonical), nil
	}

	entry := index[pos]

	// End page: one before the next chapter, or a fixed tail for the last.
	declaredEnd := entry.DeclaredPage + l.cfg.LastEntryPages - 1
	if pos+1 < len(index) {
		declaredEnd = index[pos+1].DeclaredPage - 1
	}

	r := model.SectionRange{
		EntityName: display,
		StartPage:  entry.DeclaredPage + l.cfg.PageOffset,
		EndPage:    declaredEnd + l.cfg.PageOffset,
		Confidence: confUnvalidated,
	}
	if r.EndPage < r.StartPage {
		r.EndPage = r.StartPage + l.cfg.LastEntryPages - 1
	}
	r = r.Clamp(l.cfg.MaxRangePages)
	r = l.boundToDocument(r)

	zap.L().Debug("locator: computed range from TOC",
		zap.String("county", display),
		zap.Int("declared", entry.DeclaredPage),
		zap.Int("start", r.StartPage),
		zap.Int("end", r.EndPage),
	)

	return l.verify(ctx, r, display, entry.SectionLabel), nil
}

// verify checks the county header on the computed start page and applies
// dynamic offset correction when the header sits nearby. A range that never
// validates is still returned: present-but-unverified beats nothing.
func (l *Locator) verify(ctx context.Context, r model.SectionRange, county, label string) model.SectionRange {
	if l.pageHasHeader(ctx, r.StartPage, county, label) {
		r.Confidence = confValidated
		return r
	}

	w := l.cfg.HeaderSearchWindow
	for delta := -w; delta <= w; delta++ {
		if delta == 0 {
			continue
		}
		page := r.StartPage + delta
		if page < 1 || page > l.src.PageCount() {
			continue
		}
		if l.pageHasHeader(ctx, page, county, label) {
			zap.L().Info("locator: header found off target, shifting range",
				zap.String("county", county),
				zap.Int("delta", delta),
			)
			shifted := l.boundToDocument(r.Shift(delta))
			shifted.Confidence = confShifted
			return shifted
		}
	}

	zap.L().Warn("locator: header never validated, keeping computed range",
		zap.String("county", county),
		zap.Int("start", r.StartPage),
	)
	r.Confidence = confUnvalidated
	return r
}

func (l *Locator) pageHasHeader(ctx context.Context, page int, county, label string) bool {
	text, err := l.src.PageText(ctx, page)
	if err != nil || text == "" {
		return false
	}
	lower := strings.ToLower(text)
	countyLower := strings.ToLower(county)

	if strings.Contains(lower, "county government of "+countyLower) {
		return true
	}
	// Chapter headers are sometimes upper-cased with the section label.
	if label != "" && strings.Contains(text, label) && strings.Contains(text, strings.ToUpper(county)) {
		return true
	}
	return false
}

func (l *Locator) fallbackRange(canonical string) model.SectionRange {
	start, ok := fallbackStartPages[model.Normalize(canonical)]
	if !ok {
		zap.L().Error("locator: county missing from fallback map, using default range",
			zap.String("county", canonical))
		return model.SectionRange{
			EntityName: canonical,
			StartPage:  defaultRangeStart,
			EndPage:    defaultRangeStart + l.cfg.LastEntryPages - 1,
			Confidence: confDefault,
		}
	}
	r := model.SectionRange{
		EntityName: canonical,
		StartPage:  start,
		EndPage:    start + l.cfg.LastEntryPages - 1,
		Confidence: confFallback,
	}
	return l.boundToDocument(r)
}

// boundToDocument keeps the range inside [1, PageCount].
func (l *Locator) boundToDocument(r model.SectionRange) model.SectionRange {
	pc := l.src.PageCount()
	if r.StartPage < 1 {
		r.StartPage = 1
	}
	if r.EndPage > pc {
		r.EndPage = pc
	}
	if r.StartPage > pc {
		r.StartPage = pc
	}
	if r.EndPage < r.StartPage {
		r.EndPage = r.StartPage
	}
	return r
}

// matchEntry finds a county in the index: exact normalized match first, then
// prefix/substring.
func matchEntry(index []model.TOCEntry, key string) int {
	for i, e := range index {
		if model.Normalize(e.EntityName) == key {
			return i
		}
	}
	for i, e := range index {
		ek := model.Normalize(e.EntityName)
		if strings.HasPrefix(ek, key) || strings.Contains(ek, key) {
			return i
		}
	}
	return -1
}
