// Package pipeline wires locate, extract, sieve, insight and reconcile into
// the end-to-end county extraction flow.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fiscalwatch/countylens/internal/config"
	"github.com/fiscalwatch/countylens/internal/document"
	"github.com/fiscalwatch/countylens/internal/extract"
	"github.com/fiscalwatch/countylens/internal/locator"
	"github.com/fiscalwatch/countylens/internal/model"
	"github.com/fiscalwatch/countylens/internal/reconcile"
	"github.com/fiscalwatch/countylens/internal/sieve"
	"github.com/fiscalwatch/countylens/pkg/ocrflux"
)

// Analyzer is the optional secondary metric source.
type Analyzer interface {
	Analyze(ctx context.Context, county, corpus string) (model.MetricSet, error)
}

// Pipeline runs the full flow for one document. Safe for concurrent use;
// the underlying locator caches are shared.
type Pipeline struct {
	cfg      *config.Config
	src      document.Source
	loc      *locator.Locator
	orch     *extract.Orchestrator
	analyzer Analyzer
	rec      *reconcile.Reconciler
}

// New builds a Pipeline over one document. ocr may be nil to run local-only;
// analyzer may be nil to skip the secondary source.
func New(cfg *config.Config, src document.Source, ocr ocrflux.Client, analyzer Analyzer) *Pipeline {
	var tiers []extract.Tier
	if ocr != nil {
		tiers = append(tiers, extract.NewRemote(
			src, ocr,
			cfg.Document.RenderDPI,
			cfg.Extract.RemoteTimeout(),
			cfg.Extract.MinPayloadChars,
		))
	}
	tiers = append(tiers, extract.NewLocal(src, cfg.Extract.MinPayloadChars))

	return &Pipeline{
		cfg:      cfg,
		src:      src,
		loc:      locator.New(src, cfg.TOC, cfg.Locator),
		orch:     extract.NewOrchestrator(tiers, src, cfg.Extract.Workers, cfg.Extract.SummaryPages),
		analyzer: analyzer,
		rec:      reconcile.New(cfg.Reconcile.DisagreementThreshold),
	}
}

// LocateSection resolves a county to its physical page range.
func (p *Pipeline) LocateSection(ctx context.Context, name string) ([]int, error) {
	r, err := p.loc.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}
	return r.Pages(), nil
}

// ExtractEntity runs the full pipeline for one county. The only hard
// failures are model.ErrNotFound and model.ErrExtractionUnavailable; every
// weaker problem is folded into the record's flags and confidence.
func (p *Pipeline) ExtractEntity(ctx context.Context, name string) (*model.ResultRecord, error) {
	runID := uuid.New().String()
	log := zap.L().With(zap.String("run_id", runID), zap.String("county", name))
	log.Info("pipeline: starting extraction")

	section, err := p.loc.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}

	res, err := p.orch.Run(ctx, section.Pages())
	if err != nil {
		return nil, err
	}

	primary := sieve.Extract(res.Corpus, res.Method)

	var secondary model.MetricSet
	if p.analyzer != nil {
		secondary, err = p.analyzer.Analyze(ctx, section.EntityName, res.Corpus)
		if err != nil {
			// The secondary source is best-effort; degrade to sieve-only.
			log.Warn("pipeline: secondary analysis failed, continuing without it",
				zap.Error(err))
			secondary = nil
		}
	}

	metrics, flags := p.rec.Reconcile(primary, secondary)
	flags = append(flags, p.coverageFlags(section, res)...)

	record := &model.ResultRecord{
		RunID:      runID,
		EntityName: section.EntityName,
		Metrics:    metrics,
		Flags:      flags,
		Confidence: model.ScoreFlags(100, flags),
		CreatedAt:  time.Now().UTC(),
	}
	record.Narrative = narrative(record, section, res)

	log.Info("pipeline: extraction complete",
		zap.Int("metrics", len(metrics)),
		zap.Int("flags", len(flags)),
		zap.Int("confidence", record.Confidence),
	)
	return record, nil
}

// coverageFlags grades how much of the targeted section actually produced
// text and how sure the whole chain is of what it read.
func (p *Pipeline) coverageFlags(section model.SectionRange, res *extract.Result) []model.ValidationFlag {
	var flags []model.ValidationFlag

	if res.PagesContributed < res.PagesTargeted {
		flags = append(flags, model.ValidationFlag{
			Severity: model.SeverityWarning,
			Kind:     model.FlagPartialCoverage,
			Message: fmt.Sprintf("only %d of %d targeted pages produced text",
				res.PagesContributed, res.PagesTargeted),
		})
	}

	extractionScore := int(res.Confidence * 100)
	if extractionScore > section.Confidence {
		extractionScore = section.Confidence
	}
	if extractionScore < p.cfg.Reconcile.LowConfidenceFloor {
		flags = append(flags, model.ValidationFlag{
			Severity: model.SeverityWarning,
			Kind:     model.FlagLowConfidence,
			Message: fmt.Sprintf("aggregate extraction confidence %d below floor %d",
				extractionScore, p.cfg.Reconcile.LowConfidenceFloor),
		})
	}

	return flags
}

// narrative renders a human-readable summary of what was found and how.
func narrative(rec *model.ResultRecord, section model.SectionRange, res *extract.Result) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s: pages %d-%d, %d/%d pages extracted via %s tier.\n",
		rec.EntityName, section.StartPage, section.EndPage,
		res.PagesContributed, res.PagesTargeted, res.Method)

	keys := make([]string, 0, len(rec.Metrics))
	for k := range rec.Metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		m := rec.Metrics[k]
		fmt.Fprintf(&sb, "  %s: KES %d (%s/%s)\n",
			k, m.Value, m.Provenance.Method, m.Provenance.Bucket)
	}

	if len(rec.Flags) > 0 {
		fmt.Fprintf(&sb, "Flags:\n")
		for _, f := range rec.Flags {
			fmt.Fprintf(&sb, "  [%s] %s: %s\n", f.Severity, f.Kind, f.Message)
		}
	}
	fmt.Fprintf(&sb, "Confidence: %d/100", rec.Confidence)

	return sb.String()
}
