package consensus

import (
	"fmt"

	"provenance/internal/stylometry"
)

// Indicator is one labeled, human-readable signal derived from the metrics.
type Indicator struct {
	Score       float64 `json:"score"`
	Description string  `json:"description"`
}

// IndicatorNames lists the indicator keys in presentation order.
func IndicatorNames() []string {
	return []string{
		"sentence_structure",
		"vocabulary_diversity",
		"repetition_patterns",
		"transition_words",
		"perplexity",
		"burstiness",
		"sentiment_uniformity",
		"readability",
	}
}

// BuildIndicators re-derives the scorer's eight sub-scores as named
// indicators. Descriptions embed the raw metric at two decimals; nothing new
// is computed here.
func BuildIndicators(m stylometry.Metrics) map[string]Indicator {
	s := deriveSubScores(m)
	return map[string]Indicator{
		"sentence_structure": {
			Score:       s.Structure,
			Description: fmt.Sprintf("sentence length variance %.2f", m.SentenceLengthVariance),
		},
		"vocabulary_diversity": {
			Score:       s.Vocabulary,
			Description: fmt.Sprintf("type-token ratio %.2f", m.VocabularyRichness),
		},
		"repetition_patterns": {
			Score:       s.Repetition,
			Description: fmt.Sprintf("repetition ratio %.2f among long words", m.RepetitionRatio),
		},
		"transition_words": {
			Score:       s.Transitions,
			Description: fmt.Sprintf("transition density %.2f per sentence", m.TransitionDensity),
		},
		"perplexity": {
			Score:       s.Perplexity,
			Description: fmt.Sprintf("perplexity heuristic %.2f", m.Perplexity),
		},
		"burstiness": {
			Score:       s.Burstiness,
			Description: fmt.Sprintf("burstiness heuristic %.2f", m.Burstiness),
		},
		"sentiment_uniformity": {
			Score:       s.Sentiment,
			Description: fmt.Sprintf("sentiment balance %.2f", m.Sentiment),
		},
		"readability": {
			Score:       s.Readability,
			Description: fmt.Sprintf("reading ease %.2f", m.Readability),
		},
	}
}
