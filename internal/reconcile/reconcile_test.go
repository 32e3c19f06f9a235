package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiscalwatch/countylens/internal/model"
)

func tableMetric(v int64) model.Metric {
	return model.Metric{
		Value: v,
		Provenance: model.Provenance{
			Bucket: "revenue_actual", PatternID: "own_source_revenue.0", Method: model.MethodRemote,
		},
	}
}

func narrativeMetric(v int64) model.Metric {
	return model.Metric{
		Value: v,
		Provenance: model.Provenance{
			Bucket: "narrative", PatternID: "insight", Method: model.MethodInsight,
		},
	}
}

func flagsOfKind(flags []model.ValidationFlag, kind model.FlagKind) []model.ValidationFlag {
	var out []model.ValidationFlag
	for _, f := range flags {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

func TestReconcileTableOutranksNarrative(t *testing.T) {
	// 20% apart: above the 15% threshold.
	primary := model.MetricSet{model.MetricOwnSourceRevenue: tableMetric(1_000_000_000)}
	secondary := model.MetricSet{model.MetricOwnSourceRevenue: narrativeMetric(800_000_000)}

	merged, flags := New(0.15).Reconcile(primary, secondary)

	assert.Equal(t, int64(1_000_000_000), merged.Value(model.MetricOwnSourceRevenue))
	assert.Equal(t, model.MethodRemote, merged[model.MetricOwnSourceRevenue].Provenance.Method)

	disagreements := flagsOfKind(flags, model.FlagSourceDisagreement)
	require.Len(t, disagreements, 1, "exactly one disagreement flag")
	assert.Equal(t, model.MetricOwnSourceRevenue, disagreements[0].Field)
	assert.ElementsMatch(t, []int64{1_000_000_000, 800_000_000}, disagreements[0].ConflictingValues)
}

func TestReconcileAgreementWithinThreshold(t *testing.T) {
	primary := model.MetricSet{model.MetricTotalRevenue: tableMetric(17_220_000_000)}
	secondary := model.MetricSet{model.MetricTotalRevenue: narrativeMetric(17_000_000_000)}

	merged, flags := New(0.15).Reconcile(primary, secondary)

	assert.Equal(t, int64(17_220_000_000), merged.Value(model.MetricTotalRevenue))
	assert.Empty(t, flagsOfKind(flags, model.FlagSourceDisagreement))
}

func TestReconcileSecondaryFillsGaps(t *testing.T) {
	primary := model.MetricSet{model.MetricTotalRevenue: tableMetric(17_220_000_000)}
	secondary := model.MetricSet{model.MetricPendingBills: narrativeMetric(4_470_000_000)}

	merged, flags := New(0.15).Reconcile(primary, secondary)

	assert.Equal(t, int64(4_470_000_000), merged.Value(model.MetricPendingBills))
	assert.Equal(t, model.MethodInsight, merged[model.MetricPendingBills].Provenance.Method)
	assert.Empty(t, flags)
}

func TestReconcileNationalAggregateDiscarded(t *testing.T) {
	// The 418B figure is a national total, never a county figure.
	primary := model.MetricSet{model.MetricTotalRevenue: tableMetric(418_000_000_000)}

	merged, flags := New(0.15).Reconcile(primary, nil)

	_, found := merged.Get(model.MetricTotalRevenue)
	assert.False(t, found, "aggregate value must be discarded, not kept")
	require.Len(t, flagsOfKind(flags, model.FlagScaleViolation), 1)
}

func TestReconcileScaleCeilingClampsToZero(t *testing.T) {
	primary := model.MetricSet{model.MetricEquitableShare: tableMetric(60_000_000_000)}

	merged, flags := New(0.15).Reconcile(primary, nil)

	assert.Equal(t, int64(0), merged.Value(model.MetricEquitableShare))
	require.Len(t, flagsOfKind(flags, model.FlagScaleViolation), 1)
	assert.Equal(t, model.MetricEquitableShare, flags[0].Field)
}

func TestReconcileActualEqualsTargetFlagged(t *testing.T) {
	primary := model.MetricSet{
		model.MetricOwnSourceRevenue: tableMetric(2_100_000_000),
		model.MetricOSRTarget:        tableMetric(2_100_000_000),
	}

	_, flags := New(0.15).Reconcile(primary, nil)

	inconsistencies := flagsOfKind(flags, model.FlagLogicalInconsistency)
	require.Len(t, inconsistencies, 1)
	assert.Equal(t, model.MetricOwnSourceRevenue, inconsistencies[0].Field)
}

func TestReconcileDevelopmentExceedsTotal(t *testing.T) {
	primary := model.MetricSet{
		model.MetricTotalExpenditure:       tableMetric(3_000_000_000),
		model.MetricDevelopmentExpenditure: tableMetric(5_000_000_000),
	}

	_, flags := New(0.15).Reconcile(primary, nil)

	assert.NotEmpty(t, flagsOfKind(flags, model.FlagLogicalInconsistency))
}

func TestReconcileRevenueBelowComponents(t *testing.T) {
	primary := model.MetricSet{
		model.MetricTotalRevenue:     tableMetric(5_000_000_000),
		model.MetricEquitableShare:   tableMetric(8_000_000_000),
		model.MetricOwnSourceRevenue: tableMetric(1_000_000_000),
	}

	_, flags := New(0.15).Reconcile(primary, nil)

	assert.NotEmpty(t, flagsOfKind(flags, model.FlagLogicalInconsistency))
}

func TestReconcileCleanInputNoFlags(t *testing.T) {
	primary := model.MetricSet{
		model.MetricOwnSourceRevenue:       tableMetric(1_500_000_000),
		model.MetricOSRTarget:              tableMetric(2_100_000_000),
		model.MetricTotalRevenue:           tableMetric(17_220_000_000),
		model.MetricEquitableShare:         tableMetric(8_500_000_000),
		model.MetricTotalExpenditure:       tableMetric(13_520_000_000),
		model.MetricDevelopmentExpenditure: tableMetric(3_340_000_000),
		model.MetricPendingBills:           tableMetric(4_470_000_000),
	}

	merged, flags := New(0.15).Reconcile(primary, nil)

	assert.Empty(t, flags)
	assert.Len(t, merged, 7)
}

func TestReconcileDoesNotMutateInputs(t *testing.T) {
	primary := model.MetricSet{model.MetricEquitableShare: tableMetric(60_000_000_000)}

	_, _ = New(0.15).Reconcile(primary, nil)

	assert.Equal(t, int64(60_000_000_000), primary.Value(model.MetricEquitableShare))
}

func TestRelativeDelta(t *testing.T) {
	assert.Equal(t, 0.0, relativeDelta(100, 100))
	assert.InDelta(t, 0.2, relativeDelta(1000, 800), 1e-9)
	assert.Equal(t, 0.0, relativeDelta(0, 0))
	assert.InDelta(t, 1.0, relativeDelta(0, 500), 1e-9)
}
