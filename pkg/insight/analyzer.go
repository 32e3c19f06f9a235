package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/fiscalwatch/countylens/internal/model"
)

const systemPrompt = `You are a fiscal analyst reading Kenya's county budget
implementation review reports. You extract exact figures for one county and
answer only in JSON. Never report national totals or figures for other
counties. If a figure is not stated for the requested county, use null.`

const userPromptTemplate = `From the report text below, extract these figures
for %s county. All values must be integers in Kenyan shillings (convert
"Kshs.1.5 billion" to 1500000000).

Respond with exactly this JSON object and nothing else:
{
  "own_source_revenue": <int or null>,
  "osr_target": <int or null>,
  "total_revenue": <int or null>,
  "equitable_share": <int or null>,
  "total_expenditure": <int or null>,
  "development_expenditure": <int or null>,
  "pending_bills": <int or null>
}

Report text:
%s`

// Analyzer asks the model for the county's metrics and parses the reply into
// a MetricSet tagged as a narrative-class source.
type Analyzer struct {
	messenger Messenger
	model     string
	maxTokens int64
}

// NewAnalyzer creates an Analyzer using the given Messenger.
func NewAnalyzer(m Messenger, modelID string, maxTokens int64) *Analyzer {
	return &Analyzer{messenger: m, model: modelID, maxTokens: maxTokens}
}

// Analyze extracts metrics for the named county from the assembled corpus.
func (a *Analyzer) Analyze(ctx context.Context, county, corpus string) (model.MetricSet, error) {
	if strings.TrimSpace(corpus) == "" {
		return nil, eris.New("insight: empty corpus")
	}

	user := fmt.Sprintf(userPromptTemplate, county, corpus)
	reply, err := a.messenger.CreateMessage(ctx, a.model, a.maxTokens, systemPrompt, user)
	if err != nil {
		return nil, err
	}

	metrics, err := parseReply(reply)
	if err != nil {
		return nil, err
	}

	zap.L().Debug("insight: analysis complete",
		zap.String("county", county),
		zap.Int("metrics", len(metrics)),
	)
	return metrics, nil
}

// parseReply decodes the model's JSON answer, tolerating markdown fences.
func parseReply(reply string) (model.MetricSet, error) {
	cleaned := stripFences(reply)

	var raw map[string]*int64
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, eris.Wrapf(err, "insight: parse reply %q", truncateForErr(cleaned))
	}

	out := make(model.MetricSet)
	for _, key := range model.MetricKeys {
		v, ok := raw[key]
		if !ok || v == nil || *v <= 0 {
			continue
		}
		out[key] = model.Metric{
			Value: *v,
			Provenance: model.Provenance{
				Bucket:    "narrative",
				PatternID: "insight",
				Method:    model.MethodInsight,
			},
		}
	}
	return out, nil
}

// stripFences removes a surrounding ```json ... ``` block if present and
// trims any prose before the first brace.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		s = strings.TrimPrefix(s, "json")
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}
	if i := strings.Index(s, "{"); i > 0 {
		s = s[i:]
	}
	if j := strings.LastIndex(s, "}"); j >= 0 {
		s = s[:j+1]
	}
	return strings.TrimSpace(s)
}

func truncateForErr(s string) string {
	if len(s) <= 120 {
		return s
	}
	return s[:120] + "..."
}
