package stylometry

import (
	"math"
	"regexp"
	"strings"
)

// Metrics holds the per-text linguistic features consumed by the consensus
// scorer. All fields except AvgSentenceLength and SentenceLengthVariance are
// normalized to [0,1]. Degenerate inputs (no words or no sentences) yield the
// neutral defaults below instead of NaN.
type Metrics struct {
	WordCount              int     `json:"word_count"`
	SentenceCount          int     `json:"sentence_count"`
	AvgSentenceLength      float64 `json:"avg_sentence_length"`
	SentenceLengthVariance float64 `json:"sentence_length_variance"`
	VocabularyRichness     float64 `json:"vocabulary_richness"`
	RepetitionRatio        float64 `json:"repetition_ratio"`
	TransitionDensity      float64 `json:"transition_density"`
	Perplexity             float64 `json:"perplexity"`
	Burstiness             float64 `json:"burstiness"`
	Sentiment              float64 `json:"sentiment"`
	Readability            float64 `json:"readability"`
}

// Neutral values returned for degenerate inputs.
const (
	NeutralRichness    = 0.5
	NeutralPerplexity  = 0.5
	NeutralBurstiness  = 0.5
	NeutralSentiment   = 0.5
	NeutralReadability = 0.5
)

var sentenceSplit = regexp.MustCompile(`[.!?]+`)
var nonWordStripper = regexp.MustCompile(`[^a-z0-9_]+`)
var letterOnly = regexp.MustCompile(`[^a-z]+`)
var vowelGroups = regexp.MustCompile(`[aeiouy]+`)

var transitionPhrases = []string{
	"furthermore", "moreover", "additionally", "consequently", "therefore",
	"however", "nevertheless", "nonetheless", "meanwhile", "similarly",
	"likewise", "in contrast", "for example", "for instance", "in conclusion",
}

var positiveLexicon = map[string]struct{}{
	"good": {}, "great": {}, "excellent": {}, "wonderful": {},
	"amazing": {}, "fantastic": {}, "positive": {}, "beneficial": {},
}

var negativeLexicon = map[string]struct{}{
	"bad": {}, "terrible": {}, "awful": {}, "horrible": {},
	"negative": {}, "poor": {}, "disappointing": {}, "harmful": {},
}

// Extract computes every metric in one pass over the text. It is pure and
// total: any input, including empty or punctuation-free text, produces a
// fully populated Metrics.
func Extract(text string) Metrics {
	words := strings.Fields(text)
	sentences := splitSentences(text)

	m := Metrics{
		WordCount:          len(words),
		SentenceCount:      len(sentences),
		VocabularyRichness: NeutralRichness,
		Perplexity:         NeutralPerplexity,
		Burstiness:         NeutralBurstiness,
		Sentiment:          NeutralSentiment,
		Readability:        NeutralReadability,
	}
	if len(words) == 0 || len(sentences) == 0 {
		return m
	}

	lengths := make([]float64, len(sentences))
	for i, s := range sentences {
		lengths[i] = float64(len(strings.Fields(s)))
	}
	mean, variance := meanVariance(lengths)
	m.AvgSentenceLength = mean
	m.SentenceLengthVariance = variance

	lowered := make([]string, len(words))
	uniq := map[string]int{}
	for i, w := range words {
		lw := strings.ToLower(w)
		lowered[i] = lw
		uniq[lw]++
	}
	ttr := float64(len(uniq)) / float64(len(words))
	m.VocabularyRichness = ttr

	m.RepetitionRatio = repetitionRatio(lowered)
	m.TransitionDensity = transitionDensity(text, len(sentences))

	hapax := 0
	for _, n := range uniq {
		if n == 1 {
			hapax++
		}
	}
	hapaxRatio := float64(hapax) / float64(len(uniq))
	m.Perplexity = clamp01(0.1 / (ttr * (1 + hapaxRatio)))

	m.Burstiness = burstiness(lengths, mean, variance)
	m.Sentiment = sentiment(lowered)
	m.Readability = readability(words, len(sentences))
	return m
}

func splitSentences(text string) []string {
	parts := sentenceSplit.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// repetitionRatio counts normalized words longer than three characters that
// occur more than twice, relative to the unique normalized vocabulary.
func repetitionRatio(lowered []string) float64 {
	counts := map[string]int{}
	for _, w := range lowered {
		nw := nonWordStripper.ReplaceAllString(w, "")
		if len(nw) > 3 {
			counts[nw]++
		}
	}
	if len(counts) == 0 {
		return 0
	}
	repeated := 0
	for _, n := range counts {
		if n > 2 {
			repeated++
		}
	}
	return float64(repeated) / float64(len(counts))
}

func transitionDensity(text string, sentenceCount int) float64 {
	lower := strings.ToLower(text)
	hits := 0
	for _, phrase := range transitionPhrases {
		hits += strings.Count(lower, phrase)
	}
	return clamp01(float64(hits) / float64(sentenceCount))
}

func burstiness(lengths []float64, mean, variance float64) float64 {
	if len(lengths) <= 1 || mean == 0 {
		return NeutralBurstiness
	}
	cv := math.Sqrt(variance) / mean
	return clamp01(2 * cv)
}

func sentiment(lowered []string) float64 {
	pos := 0
	neg := 0
	for _, w := range lowered {
		nw := nonWordStripper.ReplaceAllString(w, "")
		if _, ok := positiveLexicon[nw]; ok {
			pos++
		}
		if _, ok := negativeLexicon[nw]; ok {
			neg++
		}
	}
	raw := float64(pos-neg) / float64(pos+neg+1)
	return (raw + 1) / 2
}

// readability is Flesch Reading Ease scaled to [0,1]. Syllables use a
// vowel-group heuristic; "-es"/"-ed" endings drop one group, floor one
// syllable per word.
func readability(words []string, sentenceCount int) float64 {
	syllables := 0
	for _, w := range words {
		syllables += syllableCount(w)
	}
	asl := float64(len(words)) / float64(sentenceCount)
	spw := float64(syllables) / float64(len(words))
	fre := 206.835 - 1.015*asl - 84.6*spw
	return clamp01(fre / 100)
}

func syllableCount(word string) int {
	w := letterOnly.ReplaceAllString(strings.ToLower(word), "")
	if w == "" {
		return 1
	}
	n := len(vowelGroups.FindAllString(w, -1))
	if n > 1 && (strings.HasSuffix(w, "es") || strings.HasSuffix(w, "ed")) {
		n--
	}
	if n < 1 {
		n = 1
	}
	return n
}

func meanVariance(values []float64) (mean, variance float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return mean, variance
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
