package extract

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fiscalwatch/countylens/internal/document"
	"github.com/fiscalwatch/countylens/internal/model"
)

// Delimiter tags separating county detail from national summary context in
// the assembled corpus. Downstream matching only trusts figures inside the
// county block.
const (
	countyOpenTag    = "<COUNTY_SPECIFIC_DETAIL>"
	countyCloseTag   = "</COUNTY_SPECIFIC_DETAIL>"
	nationalOpenTag  = "<NATIONAL_SUMMARY_CONTEXT>"
	nationalCloseTag = "</NATIONAL_SUMMARY_CONTEXT>"
)

// Result is the assembled output of a tiered extraction run.
type Result struct {
	// Corpus is the tagged concatenation of county pages plus national
	// summary context.
	Corpus string
	// Method is the tier that contributed the most county pages.
	Method model.Method
	// Confidence is the mean confidence over contributing county pages.
	Confidence float64
	// Attempts records the winning attempt per county page, in page order,
	// including failed pages.
	Attempts []model.ExtractionAttempt
	// PagesTargeted and PagesContributed measure coverage.
	PagesTargeted    int
	PagesContributed int
}

// Orchestrator runs tiers over a page range with a bounded worker pool.
// The remote tier is abandoned for the whole run after its first failure;
// a service that failed once is assumed down and local fallback takes over.
type Orchestrator struct {
	tiers        []Tier
	src          document.Source
	workers      int
	summaryPages []int
}

// NewOrchestrator builds an orchestrator over the given tiers, tried in
// order per page. summaryPages are fetched via the page text layer and
// appended under the national context tag.
func NewOrchestrator(tiers []Tier, src document.Source, workers int, summaryPages []int) *Orchestrator {
	if workers < 1 {
		workers = 1
	}
	return &Orchestrator{tiers: tiers, src: src, workers: workers, summaryPages: summaryPages}
}

// Run extracts the given pages. It returns model.ErrExtractionUnavailable
// when no page could be extracted by any tier; it never fabricates content.
func (o *Orchestrator) Run(ctx context.Context, pages []int) (*Result, error) {
	if len(pages) == 0 {
		return nil, eris.Wrap(model.ErrExtractionUnavailable, "extract: no pages to extract")
	}

	attempts := make([]model.ExtractionAttempt, len(pages))
	var abandonRemote atomic.Bool

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for i, page := range pages {
		i, page := i, page
		g.Go(func() error {
			attempts[i] = o.extractPage(gctx, page, &abandonRemote)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := assemble(attempts)
	res.PagesTargeted = len(pages)
	if res.PagesContributed == 0 {
		return nil, eris.Wrap(model.ErrExtractionUnavailable, "extract: all tiers failed for all pages")
	}

	if summary := o.fetchSummary(ctx); summary != "" {
		res.Corpus += "\n\n" + nationalOpenTag + "\n" + summary + "\n" + nationalCloseTag
	}

	zap.L().Info("extract: run complete",
		zap.Int("pages_targeted", res.PagesTargeted),
		zap.Int("pages_contributed", res.PagesContributed),
		zap.String("method", string(res.Method)),
		zap.Float64("confidence", res.Confidence),
		zap.Bool("remote_abandoned", abandonRemote.Load()),
	)
	return res, nil
}

// extractPage tries each tier in order and returns the first success, or the
// last failed attempt when every tier fails.
func (o *Orchestrator) extractPage(ctx context.Context, page int, abandonRemote *atomic.Bool) model.ExtractionAttempt {
	var last model.ExtractionAttempt
	last.Page = page

	for _, tier := range o.tiers {
		if tier.Method() == model.MethodRemote && abandonRemote.Load() {
			continue
		}

		attempt, err := tier.Attempt(ctx, page)
		if err == nil && attempt.Success {
			return attempt
		}

		if tier.Method() == model.MethodRemote {
			// Fail fast for the rest of the run rather than paying the
			// timeout on every page.
			if abandonRemote.CompareAndSwap(false, true) {
				zap.L().Warn("extract: abandoning remote tier for this run",
					zap.Int("page", page),
					zap.Error(err),
				)
			}
		} else {
			zap.L().Warn("extract: tier failed",
				zap.String("tier", string(tier.Method())),
				zap.Int("page", page),
				zap.Error(err),
			)
		}
		last = attempt
	}
	return last
}

// assemble builds the tagged corpus and aggregate stats from per-page
// attempts kept in page order.
func assemble(attempts []model.ExtractionAttempt) *Result {
	var (
		parts       []string
		confSum     float64
		contributed int
		byMethod    = map[model.Method]int{}
	)

	for _, a := range attempts {
		if !a.Success {
			continue
		}
		parts = append(parts, a.Payload)
		confSum += a.Confidence
		contributed++
		byMethod[a.Method]++
	}

	res := &Result{
		Attempts:         attempts,
		PagesContributed: contributed,
	}
	if contributed == 0 {
		return res
	}

	res.Corpus = countyOpenTag + "\n" + strings.Join(parts, "\n\n") + "\n" + countyCloseTag
	res.Confidence = confSum / float64(contributed)

	res.Method = model.MethodLocal
	if byMethod[model.MethodRemote] >= byMethod[model.MethodLocal] {
		res.Method = model.MethodRemote
	}
	return res
}

// fetchSummary pulls the national summary-table pages via the text layer.
// Failures are tolerated; the summary only exists to let the reconciler see
// national aggregates in context.
func (o *Orchestrator) fetchSummary(ctx context.Context) string {
	var parts []string
	for _, page := range o.summaryPages {
		if page < 1 || page > o.src.PageCount() {
			continue
		}
		text, err := o.src.PageText(ctx, page)
		if err != nil {
			zap.L().Debug("extract: summary page skipped",
				zap.Int("page", page),
				zap.Error(err),
			)
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}
