package model

import "github.com/rotisserie/eris"

// Hard failures. Everything else the pipeline produces is a ValidationFlag
// embedded in the ResultRecord, not an error.
var (
	// ErrNotFound means the county matched neither the TOC index, the
	// roster, nor the static fallback map.
	ErrNotFound = eris.New("entity not found in document")

	// ErrExtractionUnavailable means every page in the resolved range
	// failed on both the remote and local tiers.
	ErrExtractionUnavailable = eris.New("extraction unavailable: all tiers failed for all pages")
)
