package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiscalwatch/countylens/internal/config"
	"github.com/fiscalwatch/countylens/internal/document"
	"github.com/fiscalwatch/countylens/internal/model"
	"github.com/fiscalwatch/countylens/pkg/ocrflux"
)

const frontMatter = `Table of Contents
3.11. County Government of Isiolo ........................................ 107
3.12. County Government of Kajiado ....................................... 111
`

func reportSource() *document.MapSource {
	return document.NewMapSource(map[int]string{
		2: frontMatter,
		47: `National summary of exchequer issues.
The total funds released to all county governments was Kshs.418 billion.`,
		153: `County Government of Isiolo
3.11.2. Own-Source Revenue Performance
Own Source Revenue collected was Kshs.1.5 billion against the target of Kshs.2.1 billion.`,
		154: `3.11.5. Exchequer Releases
The total funds released to the County was Kshs.17.22 billion, including an equitable share of Kshs.8.5 billion.`,
		155: `3.11.6. County Expenditure Review
The County spent a total of Kshs.13.52 billion on development and recurrent programs.
The expenditure on development programs amounted to Kshs.3.34 billion.`,
		156: `3.11.7. Settlement of Pending Bills
The County reported total pending bills of Kshs.4.47 billion.`,
	}, 600)
}

func testConfig() *config.Config {
	return &config.Config{
		Document: config.DocumentConfig{RenderDPI: 150},
		TOC:      config.TOCConfig{FrontMatterPages: 5, MinDeclaredPage: 40},
		Locator: config.LocatorConfig{
			PageOffset: 46, MaxRangePages: 16, LastEntryPages: 4, HeaderSearchWindow: 5,
		},
		Extract: config.ExtractConfig{
			Workers: 2, RemoteTimeoutSecs: 5, MinPayloadChars: 20, SummaryPages: []int{47},
		},
		Reconcile: config.ReconcileConfig{DisagreementThreshold: 0.15, LowConfidenceFloor: 50},
	}
}

// echoOCR transcribes the rendered image bytes back verbatim, mimicking a
// perfect vision-OCR pass over the test source.
type echoOCR struct {
	fail bool
}

func (e *echoOCR) ExtractPage(_ context.Context, image []byte) (*ocrflux.PageResult, error) {
	if e.fail {
		return nil, eris.New("connection refused")
	}
	return &ocrflux.PageResult{Text: string(image), Confidence: 0.95}, nil
}

type stubAnalyzer struct {
	metrics model.MetricSet
	err     error
	calls   int
}

func (s *stubAnalyzer) Analyze(_ context.Context, _, _ string) (model.MetricSet, error) {
	s.calls++
	return s.metrics, s.err
}

func TestLocateSection(t *testing.T) {
	p := New(testConfig(), reportSource(), nil, nil)

	pages, err := p.LocateSection(context.Background(), "Isiolo")

	require.NoError(t, err)
	assert.Equal(t, []int{153, 154, 155, 156}, pages)
}

func TestExtractEntityRemote(t *testing.T) {
	p := New(testConfig(), reportSource(), &echoOCR{}, nil)

	rec, err := p.ExtractEntity(context.Background(), "Isiolo")

	require.NoError(t, err)
	assert.Equal(t, "Isiolo", rec.EntityName)
	assert.NotEmpty(t, rec.RunID)
	assert.False(t, rec.CreatedAt.IsZero())

	assert.Equal(t, int64(1_500_000_000), rec.Metrics.Value(model.MetricOwnSourceRevenue))
	assert.Equal(t, int64(17_220_000_000), rec.Metrics.Value(model.MetricTotalRevenue))
	assert.Equal(t, int64(4_470_000_000), rec.Metrics.Value(model.MetricPendingBills))
	for _, m := range rec.Metrics {
		assert.Equal(t, model.MethodRemote, m.Provenance.Method)
		assert.True(t, m.Provenance.Valid())
	}

	// Clean run over a fully covered section.
	assert.Empty(t, rec.Flags)
	assert.Equal(t, 100, rec.Confidence)
	assert.Contains(t, rec.Narrative, "pages 153-156")
}

func TestExtractEntityRemoteDownFallsBackToLocal(t *testing.T) {
	p := New(testConfig(), reportSource(), &echoOCR{fail: true}, nil)

	rec, err := p.ExtractEntity(context.Background(), "Isiolo")

	require.NoError(t, err)
	assert.Greater(t, rec.Confidence, 0)
	assert.NotEmpty(t, rec.Metrics)
	for _, m := range rec.Metrics {
		assert.Equal(t, model.MethodLocal, m.Provenance.Method)
	}
}

func TestExtractEntityAllTiersFail(t *testing.T) {
	// TOC resolves the section but every county page is blank.
	src := document.NewMapSource(map[int]string{2: frontMatter}, 600)
	p := New(testConfig(), src, &echoOCR{fail: true}, nil)

	_, err := p.ExtractEntity(context.Background(), "Isiolo")

	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrExtractionUnavailable))
}

func TestExtractEntityNotFound(t *testing.T) {
	p := New(testConfig(), reportSource(), nil, nil)

	_, err := p.ExtractEntity(context.Background(), "Gotham")

	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestExtractEntityNationalAggregateIgnored(t *testing.T) {
	// The 418B figure from the summary pages must never surface as a metric.
	p := New(testConfig(), reportSource(), &echoOCR{}, nil)

	rec, err := p.ExtractEntity(context.Background(), "Isiolo")

	require.NoError(t, err)
	for key, m := range rec.Metrics {
		assert.NotEqual(t, int64(418_000_000_000), m.Value, "metric %s", key)
	}
}

func TestExtractEntityInsightDisagreement(t *testing.T) {
	analyzer := &stubAnalyzer{
		metrics: model.MetricSet{
			model.MetricOwnSourceRevenue: {
				Value: 1_000_000_000,
				Provenance: model.Provenance{
					Bucket: "narrative", PatternID: "insight", Method: model.MethodInsight,
				},
			},
		},
	}
	p := New(testConfig(), reportSource(), &echoOCR{}, analyzer)

	rec, err := p.ExtractEntity(context.Background(), "Isiolo")

	require.NoError(t, err)
	assert.Equal(t, 1, analyzer.calls)

	// The table figure wins; the conflict shows up as exactly one flag.
	assert.Equal(t, int64(1_500_000_000), rec.Metrics.Value(model.MetricOwnSourceRevenue))
	var disagreements []model.ValidationFlag
	for _, f := range rec.Flags {
		if f.Kind == model.FlagSourceDisagreement {
			disagreements = append(disagreements, f)
		}
	}
	require.Len(t, disagreements, 1)
	assert.ElementsMatch(t, []int64{1_500_000_000, 1_000_000_000}, disagreements[0].ConflictingValues)
	assert.Less(t, rec.Confidence, 100)
}

func TestExtractEntityInsightFailureDegrades(t *testing.T) {
	analyzer := &stubAnalyzer{err: eris.New("api down")}
	p := New(testConfig(), reportSource(), &echoOCR{}, analyzer)

	rec, err := p.ExtractEntity(context.Background(), "Isiolo")

	require.NoError(t, err)
	assert.NotEmpty(t, rec.Metrics, "sieve metrics survive an insight outage")
}

func TestExtractEntityPartialCoverage(t *testing.T) {
	src := reportSource()
	delete(src.Pages, 155)
	p := New(testConfig(), src, &echoOCR{}, nil)

	rec, err := p.ExtractEntity(context.Background(), "Isiolo")

	require.NoError(t, err)
	var found bool
	for _, f := range rec.Flags {
		if f.Kind == model.FlagPartialCoverage {
			found = true
		}
	}
	assert.True(t, found, "missing page must raise a partial coverage flag")
	assert.Less(t, rec.Confidence, 100)
}
