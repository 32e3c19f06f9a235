package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSectionRange(t *testing.T) {
	r := SectionRange{EntityName: "Isiolo", StartPage: 153, EndPage: 156}

	assert.Equal(t, []int{153, 154, 155, 156}, r.Pages())
	assert.Equal(t, 4, r.Len())

	shifted := r.Shift(2)
	assert.Equal(t, 155, shifted.StartPage)
	assert.Equal(t, 158, shifted.EndPage)
	// Original untouched.
	assert.Equal(t, 153, r.StartPage)

	clamped := SectionRange{StartPage: 100, EndPage: 199}.Clamp(16)
	assert.Equal(t, 16, clamped.Len())
	assert.Equal(t, 115, clamped.EndPage)

	assert.Nil(t, SectionRange{StartPage: 10, EndPage: 5}.Pages())
}

func TestMetricSetClone(t *testing.T) {
	orig := MetricSet{
		MetricOwnSourceRevenue: {Value: 1_500_000_000, Provenance: Provenance{Bucket: "revenue_actual", PatternID: "osr.0", Method: MethodLocal}},
	}

	clone := orig.Clone()
	clone[MetricOwnSourceRevenue] = Metric{Value: 7}

	assert.Equal(t, int64(1_500_000_000), orig.Value(MetricOwnSourceRevenue))
	assert.Equal(t, int64(7), clone.Value(MetricOwnSourceRevenue))
	assert.Equal(t, int64(0), orig.Value(MetricPendingBills))
}

func TestProvenanceValid(t *testing.T) {
	assert.True(t, Provenance{Bucket: "expenditure", PatternID: "te.1", Method: MethodRemote}.Valid())
	assert.False(t, Provenance{Bucket: "expenditure", Method: MethodRemote}.Valid())
	assert.False(t, Provenance{}.Valid())
}

func TestScoreFlags(t *testing.T) {
	flags := []ValidationFlag{
		{Severity: SeverityWarning, Kind: FlagScaleViolation},
		{Severity: SeverityCritical, Kind: FlagLogicalInconsistency},
	}
	assert.Equal(t, 65, ScoreFlags(100, flags))

	// Floor at zero.
	many := make([]ValidationFlag, 10)
	for i := range many {
		many[i] = ValidationFlag{Severity: SeverityCritical}
	}
	assert.Equal(t, 0, ScoreFlags(100, many))

	// Monotonically non-increasing as flags accumulate.
	prev := 100
	var acc []ValidationFlag
	for _, f := range flags {
		acc = append(acc, f)
		score := ScoreFlags(100, acc)
		assert.LessOrEqual(t, score, prev)
		prev = score
	}
}
