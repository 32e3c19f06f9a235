package model

import "time"

// ResultRecord is the terminal, immutable output of one extraction run.
type ResultRecord struct {
	RunID      string           `json:"run_id"`
	EntityName string           `json:"entity_name"`
	Metrics    MetricSet        `json:"metrics"`
	Flags      []ValidationFlag `json:"flags"`
	Confidence int              `json:"confidence"`
	Narrative  string           `json:"narrative"`
	CreatedAt  time.Time        `json:"created_at"`
}
