// Package reconcile merges metric sets from independent sources and
// validates the merged result against magnitude and logical rules.
package reconcile

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/fiscalwatch/countylens/internal/model"
)

// nationalAggregateFloor marks values that can only be national totals, not
// a single county's figure. The report's own county-level maxima sit well
// below this.
const nationalAggregateFloor = 100_000_000_000

// scaleCeilings bounds each field to a plausible county magnitude. Fields
// not listed are only checked against the aggregate floor.
var scaleCeilings = map[string]int64{
	model.MetricEquitableShare:   25_000_000_000,
	model.MetricOSRTarget:        30_000_000_000,
	model.MetricTotalExpenditure: 50_000_000_000,
}

// logicalTolerance absorbs rounding between narrative figures and table
// figures when comparing derived totals.
const logicalTolerance = 0.02

// Reconciler merges a primary (table/regex derived) set with an optional
// secondary (narrative/model derived) set.
type Reconciler struct {
	// DisagreementThreshold is the relative delta above which two sources
	// conflict.
	DisagreementThreshold float64
}

// New creates a Reconciler.
func New(disagreementThreshold float64) *Reconciler {
	if disagreementThreshold <= 0 {
		disagreementThreshold = 0.15
	}
	return &Reconciler{DisagreementThreshold: disagreementThreshold}
}

// Reconcile merges the two sources and validates the result. primary wins on
// disagreement: a figure read out of a table row outranks one a model pulled
// from narrative prose. Returns the merged set and the flags raised.
func (r *Reconciler) Reconcile(primary, secondary model.MetricSet) (model.MetricSet, []model.ValidationFlag) {
	merged := primary.Clone()
	var flags []model.ValidationFlag

	for key, sec := range secondary {
		pri, ok := merged[key]
		if !ok {
			merged[key] = sec
			continue
		}

		if relativeDelta(pri.Value, sec.Value) > r.DisagreementThreshold {
			flags = append(flags, model.ValidationFlag{
				Severity: model.SeverityWarning,
				Kind:     model.FlagSourceDisagreement,
				Field:    key,
				Message: fmt.Sprintf("sources disagree on %s: %d (%s) vs %d (%s)",
					key, pri.Value, pri.Provenance.Method, sec.Value, sec.Provenance.Method),
				ConflictingValues: []int64{pri.Value, sec.Value},
			})
			zap.L().Warn("reconcile: source disagreement",
				zap.String("field", key),
				zap.Int64("primary", pri.Value),
				zap.Int64("secondary", sec.Value),
			)
		}
	}

	merged, scaleFlags := applyScaleRules(merged)
	flags = append(flags, scaleFlags...)
	flags = append(flags, checkLogicalRules(merged)...)

	return merged, flags
}

// relativeDelta is |a-b| relative to the larger magnitude.
func relativeDelta(a, b int64) float64 {
	if a == b {
		return 0
	}
	larger := math.Max(math.Abs(float64(a)), math.Abs(float64(b)))
	if larger == 0 {
		return 0
	}
	return math.Abs(float64(a)-float64(b)) / larger
}

// applyScaleRules drops national-aggregate values and clamps out-of-band
// figures to zero so a wrong magnitude can never pass as a real value.
func applyScaleRules(in model.MetricSet) (model.MetricSet, []model.ValidationFlag) {
	out := in.Clone()
	var flags []model.ValidationFlag

	for key, m := range in {
		switch {
		case m.Value >= nationalAggregateFloor:
			delete(out, key)
			flags = append(flags, model.ValidationFlag{
				Severity: model.SeverityWarning,
				Kind:     model.FlagScaleViolation,
				Field:    key,
				Message:  fmt.Sprintf("%s value %d is a national aggregate, discarded", key, m.Value),
			})

		case m.Value < 0:
			m.Value = 0
			out[key] = m
			flags = append(flags, model.ValidationFlag{
				Severity: model.SeverityWarning,
				Kind:     model.FlagScaleViolation,
				Field:    key,
				Message:  fmt.Sprintf("%s is negative, clamped to zero", key),
			})

		default:
			ceiling, bounded := scaleCeilings[key]
			if bounded && m.Value > ceiling {
				m.Value = 0
				out[key] = m
				flags = append(flags, model.ValidationFlag{
					Severity: model.SeverityWarning,
					Kind:     model.FlagScaleViolation,
					Field:    key,
					Message:  fmt.Sprintf("%s exceeds plausible county magnitude, clamped to zero", key),
				})
			}
		}
	}

	return out, flags
}

// checkLogicalRules flags internally inconsistent combinations without
// altering values.
func checkLogicalRules(m model.MetricSet) []model.ValidationFlag {
	var flags []model.ValidationFlag

	total, hasTotal := m.Get(model.MetricTotalExpenditure)
	dev, hasDev := m.Get(model.MetricDevelopmentExpenditure)
	if hasTotal && hasDev && total.Value > 0 {
		if float64(dev.Value) > float64(total.Value)*(1+logicalTolerance) {
			flags = append(flags, model.ValidationFlag{
				Severity: model.SeverityWarning,
				Kind:     model.FlagLogicalInconsistency,
				Field:    model.MetricDevelopmentExpenditure,
				Message:  "development expenditure exceeds total expenditure",
				ConflictingValues: []int64{
					dev.Value, total.Value,
				},
			})
		}
	}

	rev, hasRev := m.Get(model.MetricTotalRevenue)
	share, hasShare := m.Get(model.MetricEquitableShare)
	osr, hasOSR := m.Get(model.MetricOwnSourceRevenue)
	if hasRev && hasShare && hasOSR && rev.Value > 0 {
		floor := float64(share.Value+osr.Value) * (1 - logicalTolerance)
		if float64(rev.Value) < floor {
			flags = append(flags, model.ValidationFlag{
				Severity: model.SeverityWarning,
				Kind:     model.FlagLogicalInconsistency,
				Field:    model.MetricTotalRevenue,
				Message:  "total revenue is below equitable share plus own-source revenue",
				ConflictingValues: []int64{
					rev.Value, share.Value, osr.Value,
				},
			})
		}
	}

	// Collection exactly equal to target is almost always a table
	// column-alignment error, not a perfect hit.
	target, hasTarget := m.Get(model.MetricOSRTarget)
	if hasOSR && hasTarget && osr.Value == target.Value && osr.Value > 0 {
		flags = append(flags, model.ValidationFlag{
			Severity: model.SeverityWarning,
			Kind:     model.FlagLogicalInconsistency,
			Field:    model.MetricOwnSourceRevenue,
			Message:  "own-source revenue exactly equals its target, likely column misread",
			ConflictingValues: []int64{
				osr.Value, target.Value,
			},
		})
	}

	return flags
}
