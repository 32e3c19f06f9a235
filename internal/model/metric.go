package model

// Method identifies the extraction source class that produced a value.
type Method string

const (
	// MethodRemote is the high-fidelity vision-OCR tier.
	MethodRemote Method = "remote"
	// MethodLocal is the direct PDF text fallback tier.
	MethodLocal Method = "local"
	// MethodInsight is the secondary model-derived analysis source.
	MethodInsight Method = "insight"
)

// Canonical metric keys extracted from a county chapter.
const (
	MetricOwnSourceRevenue       = "own_source_revenue"
	MetricOSRTarget              = "osr_target"
	MetricTotalRevenue           = "total_revenue"
	MetricTotalExpenditure       = "total_expenditure"
	MetricDevelopmentExpenditure = "development_expenditure"
	MetricPendingBills           = "pending_bills"
	MetricEquitableShare         = "equitable_share"
)

// MetricKeys lists every metric the pipeline targets, in report order.
var MetricKeys = []string{
	MetricOwnSourceRevenue,
	MetricOSRTarget,
	MetricTotalRevenue,
	MetricTotalExpenditure,
	MetricDevelopmentExpenditure,
	MetricPendingBills,
	MetricEquitableShare,
}

// Provenance records where a metric value came from: the topic bucket it was
// matched in, the pattern that matched, and the extraction method that
// produced the underlying text. A Metric without provenance is invalid.
type Provenance struct {
	Bucket    string `json:"bucket"`
	PatternID string `json:"pattern_id"`
	Method    Method `json:"method"`
}

// Valid reports whether the provenance is fully populated.
func (p Provenance) Valid() bool {
	return p.Bucket != "" && p.PatternID != "" && p.Method != ""
}

// Metric is a single extracted value in whole Kenyan shillings.
type Metric struct {
	Value      int64      `json:"value"`
	Provenance Provenance `json:"provenance"`
}

// MetricSet maps metric key to value. Stages treat sets as immutable: a
// stage that adjusts values builds a new set via Clone rather than mutating
// its input.
type MetricSet map[string]Metric

// Clone returns a shallow copy of the set.
func (m MetricSet) Clone() MetricSet {
	out := make(MetricSet, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Get returns the metric for key and whether it is present.
func (m MetricSet) Get(key string) (Metric, bool) {
	v, ok := m[key]
	return v, ok
}

// Value returns the value for key, or 0 if absent.
func (m MetricSet) Value(key string) int64 {
	return m[key].Value
}

// ExtractionAttempt is the ephemeral outcome of one tier's attempt on one
// page. Payload holds the extracted text when Success is true.
type ExtractionAttempt struct {
	Method     Method  `json:"method"`
	Page       int     `json:"page"`
	Success    bool    `json:"success"`
	Payload    string  `json:"payload,omitempty"`
	Confidence float64 `json:"confidence"`
}
