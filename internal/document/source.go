// Package document provides page-level access to the composite report.
package document

import (
	"context"

	"github.com/rotisserie/eris"
)

// Source is the document access contract consumed by the pipeline. Pages are
// 1-indexed. Implementations must be safe for concurrent use.
type Source interface {
	// PageCount returns the total number of pages.
	PageCount() int
	// PageText returns the extractable text of one page. An empty string
	// with nil error means the page has no text layer.
	PageText(ctx context.Context, page int) (string, error)
	// RenderPageImage rasterizes one page to PNG bytes at the given DPI.
	RenderPageImage(ctx context.Context, page int, dpi int) ([]byte, error)
}

// MapSource serves pages from an in-memory map. Used by tests and fixtures;
// RenderPageImage returns the page text as bytes so tier plumbing can be
// exercised without a rasterizer.
type MapSource struct {
	Pages map[int]string
	Count int
}

// NewMapSource builds a MapSource. If count is 0 the highest page number in
// the map is used.
func NewMapSource(pages map[int]string, count int) *MapSource {
	if count == 0 {
		for p := range pages {
			if p > count {
				count = p
			}
		}
	}
	return &MapSource{Pages: pages, Count: count}
}

func (s *MapSource) PageCount() int { return s.Count }

func (s *MapSource) PageText(_ context.Context, page int) (string, error) {
	if page < 1 || page > s.Count {
		return "", eris.Errorf("document: page %d out of range [1,%d]", page, s.Count)
	}
	return s.Pages[page], nil
}

func (s *MapSource) RenderPageImage(ctx context.Context, page int, _ int) ([]byte, error) {
	text, err := s.PageText(ctx, page)
	if err != nil {
		return nil, err
	}
	return []byte(text), nil
}
