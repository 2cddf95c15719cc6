package chunk

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Segment is one rewrite unit cut from a longer passage. Start and End are
// byte offsets into the trimmed input; the gaps between consecutive segments
// hold only whitespace.
type Segment struct {
	Index int
	Start int
	End   int
	Text  string
}

var sentenceEnd = regexp.MustCompile(`[.!?]+`)

// BySentence packs whole sentences into segments of at most maxChars bytes.
// A sentence that alone exceeds the budget is cut at word boundaries, and
// mid-word only when a single word overruns it. A non-positive budget or
// blank input yields nil.
func BySentence(text string, maxChars int) []Segment {
	if maxChars <= 0 {
		return nil
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	bounds := sentenceBounds(trimmed)
	segments := make([]Segment, 0, len(trimmed)/maxChars+1)
	start := 0
	i := 0
	for start < len(trimmed) {
		for i < len(bounds) && bounds[i] <= start {
			i++
		}
		fit := -1
		for j := i; j < len(bounds) && bounds[j]-start <= maxChars; j++ {
			fit = j
		}
		var end int
		if fit >= 0 {
			end = bounds[fit]
			i = fit + 1
		} else {
			end = wordCut(trimmed, start, maxChars)
		}
		segments = append(segments, Segment{
			Index: len(segments),
			Start: start,
			End:   end,
			Text:  trimmed[start:end],
		})
		start = skipSpace(trimmed, end)
	}

	return segments
}

// sentenceBounds returns the ascending offsets just past each sentence
// terminator run, always ending with len(text).
func sentenceBounds(text string) []int {
	runs := sentenceEnd.FindAllStringIndex(text, -1)
	bounds := make([]int, 0, len(runs)+1)
	for _, r := range runs {
		bounds = append(bounds, r[1])
	}
	if len(bounds) == 0 || bounds[len(bounds)-1] != len(text) {
		bounds = append(bounds, len(text))
	}
	return bounds
}

// wordCut picks a cut inside an oversized sentence: the last whitespace
// within budget, else a hard cut aligned to a rune start.
func wordCut(text string, start, maxChars int) int {
	window := text[start : start+maxChars]
	if cut := strings.LastIndexAny(window, " \t\n\r"); cut > 0 {
		return start + cut
	}
	end := start + maxChars
	for end > start && !utf8.RuneStart(text[end]) {
		end--
	}
	if end == start {
		return start + maxChars
	}
	return end
}

func skipSpace(text string, i int) int {
	for i < len(text) && (text[i] == ' ' || text[i] == '\t' || text[i] == '\n' || text[i] == '\r') {
		i++
	}
	return i
}
