package judge

import "context"

// Judgment is one provider's verdict on a passage.
type Judgment struct {
	Provider  string   `json:"provider"`
	Model     string   `json:"model,omitempty"`
	Score     float64  `json:"score"`
	Reasoning []string `json:"reasoning,omitempty"`
}

// Client is a single external judge provider. Judge submits the passage and
// parses the model's free-form reply into a Judgment; Generate returns the raw
// model text for the same credential and model list, which the rewrite path
// consumes. Failures from both are *ProviderError values.
type Client interface {
	Name() string
	Judge(ctx context.Context, text string) (Judgment, error)
	Generate(ctx context.Context, prompt string) (string, error)
}

// DefaultScore is substituted when a model's JSON reply carries no numeric
// score field. The substitution is recorded in the judgment's reasoning.
const DefaultScore = 0.5

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
