package sieve

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/fiscalwatch/countylens/internal/model"
)

// Extract mines the tagged corpus for every known metric. Each metric's
// patterns run only inside its designated bucket; a metric whose bucket is
// missing, or whose patterns all fail, is simply absent from the result.
// method records which extraction tier produced the corpus.
func Extract(corpus string, method model.Method) model.MetricSet {
	buckets := Slice(corpus)
	out := make(model.MetricSet, len(specs))

	for _, spec := range specs {
		body, ok := buckets[spec.bucket]
		if !ok {
			continue
		}

		value, patternID, found := matchMetric(spec, body)
		if !found {
			continue
		}

		out[spec.key] = model.Metric{
			Value: value,
			Provenance: model.Provenance{
				Bucket:    spec.bucket,
				PatternID: patternID,
				Method:    method,
			},
		}
		zap.L().Debug("sieve: metric extracted",
			zap.String("metric", spec.key),
			zap.String("bucket", spec.bucket),
			zap.String("pattern", patternID),
			zap.Int64("value", value),
		)
	}

	return out
}

// matchMetric tries the ordered pattern list, then the table-row fallback.
func matchMetric(spec metricSpec, body string) (int64, string, bool) {
	for i, re := range spec.patterns {
		for _, m := range re.FindAllStringSubmatch(body, -1) {
			unit := ""
			if len(m) > 2 {
				unit = m[2]
			}
			v, ok := ParseAmount(m[1], unit)
			if ok && v > 0 {
				return v, fmt.Sprintf("%s.%d", spec.key, i), true
			}
		}
	}

	if spec.rowLine != nil {
		if line := spec.rowLine.FindString(body); line != "" {
			if tok, ok := LongestToken(line); ok {
				if v, parsed := ParseAmount(tok, ""); parsed && v > 0 {
					return v, spec.key + ".row", true
				}
			}
		}
	}

	return 0, "", false
}
