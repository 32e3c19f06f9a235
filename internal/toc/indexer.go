// Package toc parses the report's front matter into an ordered county index.
package toc

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/fiscalwatch/countylens/internal/model"
)

// TOC lines look like:
//
//	3.11. County Government of Isiolo ................................ 107
//
// The strict pattern anchors on the dotted leader run; OCR'd front matter
// sometimes mangles the leaders, so a relaxed variant retries without them.
var (
	strictLine  = regexp.MustCompile(`(\d+\.\d+)\.\s+County Government of\s+([A-Za-z\s'\-]+?)\s+\.+\s*(\d{3,})`)
	relaxedLine = regexp.MustCompile(`(\d+\.\d+)\.\s+County Government of\s+([A-Za-z\s'\-]+?)\s+.*?(\d{2,})\s*\n`)
)

// Indexer turns front-matter text into TOC entries.
type Indexer struct {
	// MinDeclaredPage discards matches pointing into front matter; those
	// are false positives from summary-table references.
	MinDeclaredPage int
}

// New creates an Indexer with the given front-matter page threshold.
func New(minDeclaredPage int) *Indexer {
	return &Indexer{MinDeclaredPage: minDeclaredPage}
}

// Parse extracts ordered TOC entries from the concatenated front-matter
// text. Order follows document appearance. An empty result is valid output:
// the locator falls back to its static map.
func (ix *Indexer) Parse(text string) []model.TOCEntry {
	if text == "" {
		return nil
	}

	matches := strictLine.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		zap.L().Debug("toc: strict pattern found nothing, retrying relaxed")
		matches = relaxedLine.FindAllStringSubmatch(text, -1)
	}

	entries := make([]model.TOCEntry, 0, len(matches))
	for _, m := range matches {
		page, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		if page < ix.MinDeclaredPage {
			// Early tables reference low page numbers; county
			// chapters never start there.
			continue
		}
		entries = append(entries, model.TOCEntry{
			EntityName:   strings.TrimSpace(m[2]),
			SectionLabel: m[1],
			DeclaredPage: page,
		})
	}

	zap.L().Info("toc: parsed index", zap.Int("entries", len(entries)))
	return entries
}
