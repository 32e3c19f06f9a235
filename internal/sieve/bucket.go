// Package sieve pulls named fiscal metrics out of extracted report text
// using bucket-scoped pattern matching. Buckets fence each topic section so
// a figure from one section can never answer a query about another — the
// canonical failure being an arrears amount reported as actual revenue.
package sieve

import (
	"regexp"
	"strings"
)

// Topic bucket names. These mirror the report's per-county sub-chapter
// structure (3.X.2 revenue, 3.X.3 arrears, and so on).
const (
	BucketRevenueActual  = "revenue_actual"
	BucketRevenueArrears = "revenue_arrears"
	BucketExchequer      = "exchequer"
	BucketExpenditure    = "expenditure"
	BucketPendingBills   = "pending_bills"
)

// bucketHeadings anchor each bucket at its numbered sub-chapter heading.
// Headings may carry markdown hashes from OCR output.
var bucketHeadings = []struct {
	name    string
	heading *regexp.Regexp
}{
	{BucketRevenueActual, regexp.MustCompile(`(?im)^#{0,6}\s*3\.\d+\.2\.?\s+(?:Own[-\s]?Source Revenue|OSR|Revenue Performance)`)},
	{BucketRevenueArrears, regexp.MustCompile(`(?im)^#{0,6}\s*3\.\d+\.3\.?\s+Revenue Arrears`)},
	{BucketExchequer, regexp.MustCompile(`(?im)^#{0,6}\s*3\.\d+\.5\.?\s+(?:Exchequers? Approved|Total Funds Released|Exchequer Releases)`)},
	{BucketExpenditure, regexp.MustCompile(`(?im)^#{0,6}\s*3\.\d+\.6\.?\s+County Expenditure Review`)},
	{BucketPendingBills, regexp.MustCompile(`(?im)^#{0,6}\s*3\.\d+\.7\.?\s+Settlement of Pending Bills`)},
}

// nextHeading bounds a bucket: any numbered heading (3.X.Y or a new county
// chapter 3.X) ends the preceding bucket. Without this a bucket would
// swallow every section after it.
var nextHeading = regexp.MustCompile(`(?m)^#{0,6}\s*\d+\.\d+(?:\.\d+)?\.?\s+[A-Z]`)

// countyDetailTag isolates the per-county region of a tagged corpus from
// national summary context added by the extraction tiers.
var countyDetailTag = regexp.MustCompile(`(?s)<COUNTY_SPECIFIC_DETAIL>(.*?)</COUNTY_SPECIFIC_DETAIL>`)

// Slice cuts the corpus into topic buckets. Only the county-detail region is
// considered when delimiter tags are present. Buckets missing from the text
// are absent from the result.
func Slice(corpus string) map[string]string {
	text := corpus
	if tagged := countyDetailTag.FindAllStringSubmatch(corpus, -1); len(tagged) > 0 {
		var sb strings.Builder
		for _, m := range tagged {
			sb.WriteString(m[1])
			sb.WriteString("\n")
		}
		text = sb.String()
	}

	buckets := make(map[string]string)
	for _, b := range bucketHeadings {
		loc := b.heading.FindStringIndex(text)
		if loc == nil {
			continue
		}
		body := text[loc[0]:]
		// End at the next numbered heading after this one.
		if end := nextHeading.FindStringIndex(body[loc[1]-loc[0]:]); end != nil {
			body = body[:loc[1]-loc[0]+end[0]]
		}
		buckets[b.name] = strings.TrimSpace(body)
	}
	return buckets
}
