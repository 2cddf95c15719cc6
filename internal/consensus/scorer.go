package consensus

import (
	"math"

	"provenance/internal/judge"
	"provenance/internal/stylometry"
)

// DefaultThreshold classifies a blended score as machine-generated only when
// strictly exceeded; a score of exactly 0.7 stays human.
const DefaultThreshold = 0.7

// Provider judgments outweigh linguistics whenever at least one judge
// responded.
const (
	providerWeight   = 0.7
	linguisticWeight = 0.3
)

// Cutoffs for the threshold sub-scores. Low variance, modest vocabulary,
// heavy repetition, and dense transitions all read machine-made.
const (
	varianceCutoff   = 5.0
	richnessCutoff   = 0.6
	repetitionCutoff = 0.15
	transitionCutoff = 0.3
)

type weights struct {
	Structure   float64
	Vocabulary  float64
	Repetition  float64
	Transitions float64
	Perplexity  float64
	Burstiness  float64
	Sentiment   float64
	Readability float64
}

func linguisticWeights() weights {
	return weights{
		Structure:   0.20,
		Vocabulary:  0.15,
		Repetition:  0.15,
		Transitions: 0.10,
		Perplexity:  0.15,
		Burstiness:  0.10,
		Sentiment:   0.05,
		Readability: 0.10,
	}
}

type subScores struct {
	Structure   float64
	Vocabulary  float64
	Repetition  float64
	Transitions float64
	Perplexity  float64
	Burstiness  float64
	Sentiment   float64
	Readability float64
}

func deriveSubScores(m stylometry.Metrics) subScores {
	s := subScores{
		Structure:   0.3,
		Vocabulary:  0.4,
		Repetition:  0.2,
		Transitions: 0.3,
		Perplexity:  1 - m.Perplexity,
		Burstiness:  1 - m.Burstiness,
		Sentiment:   math.Abs(m.Sentiment-0.5) * 2,
		Readability: m.Readability,
	}
	if m.SentenceLengthVariance < varianceCutoff {
		s.Structure = 0.8
	}
	if m.VocabularyRichness < richnessCutoff {
		s.Vocabulary = 0.7
	}
	if m.RepetitionRatio > repetitionCutoff {
		s.Repetition = 0.8
	}
	if m.TransitionDensity > transitionCutoff {
		s.Transitions = 0.8
	}
	return s
}

// WeightedLinguisticScore folds the eight sub-scores into one [0,1] value.
// Texts under 100 words are damped toward 0.8x, since short samples carry
// weak evidence either way.
func WeightedLinguisticScore(m stylometry.Metrics) float64 {
	w := linguisticWeights()
	s := deriveSubScores(m)
	weighted := w.Structure*s.Structure +
		w.Vocabulary*s.Vocabulary +
		w.Repetition*s.Repetition +
		w.Transitions*s.Transitions +
		w.Perplexity*s.Perplexity +
		w.Burstiness*s.Burstiness +
		w.Sentiment*s.Sentiment +
		w.Readability*s.Readability
	lengthFactor := math.Min(float64(m.WordCount)/100.0, 1.0)
	return clamp01(weighted * (0.8 + 0.2*lengthFactor))
}

// Blend combines provider judgments with the linguistic score. With no
// judgments the linguistic score passes through untouched, so providers being
// down degrades quality, never availability.
func Blend(judgments []judge.Judgment, m stylometry.Metrics) float64 {
	linguistic := WeightedLinguisticScore(m)
	if len(judgments) == 0 {
		return linguistic
	}
	sum := 0.0
	for _, j := range judgments {
		sum += j.Score
	}
	mean := sum / float64(len(judgments))
	return clamp01(providerWeight*mean + linguisticWeight*linguistic)
}

// IsAIGenerated applies the exclusive classification threshold. A
// non-positive threshold falls back to DefaultThreshold.
func IsAIGenerated(score, threshold float64) bool {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return score > threshold
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
