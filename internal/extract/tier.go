// Package extract runs tiered per-page extraction: a remote vision-OCR tier
// with a local text-layer fallback.
package extract

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/fiscalwatch/countylens/internal/document"
	"github.com/fiscalwatch/countylens/internal/model"
	"github.com/fiscalwatch/countylens/pkg/ocrflux"
)

// Tier is one extraction strategy attempted on a page.
type Tier interface {
	Method() model.Method
	// Attempt extracts one page. A failed attempt (Success=false) with a
	// non-nil error means the tier could not produce usable text; the
	// orchestrator falls through to the next tier.
	Attempt(ctx context.Context, page int) (model.ExtractionAttempt, error)
}

// Remote renders the page and sends it to the vision-OCR service. Every call
// carries a hard timeout; a short or empty transcription counts as failure.
type Remote struct {
	src      document.Source
	ocr      ocrflux.Client
	dpi      int
	timeout  time.Duration
	minChars int
}

// NewRemote builds the remote tier.
func NewRemote(src document.Source, ocr ocrflux.Client, dpi int, timeout time.Duration, minChars int) *Remote {
	return &Remote{src: src, ocr: ocr, dpi: dpi, timeout: timeout, minChars: minChars}
}

func (r *Remote) Method() model.Method { return model.MethodRemote }

func (r *Remote) Attempt(ctx context.Context, page int) (model.ExtractionAttempt, error) {
	fail := model.ExtractionAttempt{Method: model.MethodRemote, Page: page}

	img, err := r.src.RenderPageImage(ctx, page, r.dpi)
	if err != nil {
		return fail, eris.Wrapf(err, "extract: render page %d", page)
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.ocr.ExtractPage(callCtx, img)
	if err != nil {
		return fail, eris.Wrapf(err, "extract: remote page %d", page)
	}

	text := strings.TrimSpace(res.Text)
	if len(text) < r.minChars {
		return fail, eris.Errorf("extract: remote page %d payload too short (%d chars)", page, len(text))
	}

	return model.ExtractionAttempt{
		Method:     model.MethodRemote,
		Page:       page,
		Success:    true,
		Payload:    text,
		Confidence: res.Confidence,
	}, nil
}

// Local reads the page's embedded text layer. Cheaper and always available,
// but loses table structure on complex layouts.
type Local struct {
	src      document.Source
	minChars int
}

// NewLocal builds the local text-layer tier.
func NewLocal(src document.Source, minChars int) *Local {
	return &Local{src: src, minChars: minChars}
}

func (l *Local) Method() model.Method { return model.MethodLocal }

// localConfidence reflects that text-layer extraction flattens tables.
const localConfidence = 0.6

func (l *Local) Attempt(ctx context.Context, page int) (model.ExtractionAttempt, error) {
	fail := model.ExtractionAttempt{Method: model.MethodLocal, Page: page}

	text, err := l.src.PageText(ctx, page)
	if err != nil {
		return fail, eris.Wrapf(err, "extract: local page %d", page)
	}

	text = strings.TrimSpace(text)
	if len(text) < l.minChars {
		return fail, eris.Errorf("extract: local page %d has no usable text layer", page)
	}

	return model.ExtractionAttempt{
		Method:     model.MethodLocal,
		Page:       page,
		Success:    true,
		Payload:    text,
		Confidence: localConfidence,
	}, nil
}
