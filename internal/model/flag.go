package model

// FlagSeverity grades how much a validation finding should erode confidence.
type FlagSeverity string

const (
	SeverityInfo     FlagSeverity = "info"
	SeverityWarning  FlagSeverity = "warning"
	SeverityCritical FlagSeverity = "critical"
)

// Penalty is the confidence cost of a flag of this severity.
func (s FlagSeverity) Penalty() int {
	switch s {
	case SeverityInfo:
		return 2
	case SeverityWarning:
		return 10
	case SeverityCritical:
		return 25
	default:
		return 10
	}
}

// FlagKind names the sanity rule or condition that raised a flag. These are
// embedded in the ResultRecord rather than surfaced as errors so callers
// keep best-effort data.
type FlagKind string

const (
	FlagLowConfidence        FlagKind = "low_confidence"
	FlagScaleViolation       FlagKind = "scale_violation"
	FlagLogicalInconsistency FlagKind = "logical_inconsistency"
	FlagPartialCoverage      FlagKind = "partial_coverage"
	FlagSourceDisagreement   FlagKind = "source_disagreement"
)

// ValidationFlag records one sanity finding against a field.
// ConflictingValues holds the disputed figures when two sources disagree.
type ValidationFlag struct {
	Severity          FlagSeverity `json:"severity"`
	Kind              FlagKind     `json:"kind"`
	Field             string       `json:"field,omitempty"`
	Message           string       `json:"message"`
	ConflictingValues []int64      `json:"conflicting_values,omitempty"`
}

// ScoreFlags computes a confidence score starting from base (0-100) and
// subtracting each flag's severity penalty, floored at 0. Adding flags can
// only lower the score.
func ScoreFlags(base int, flags []ValidationFlag) int {
	score := base
	for _, f := range flags {
		score -= f.Severity.Penalty()
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
