package prompts

import (
	"fmt"
	"strings"
)

const JudgeTemplate = `SYSTEM: You are a forensic linguist assessing text provenance.
TEXT: %s
TASK: Estimate the probability that this text was machine-generated.
CRITERIA:
- Uniform sentence rhythm and formulaic transitions suggest machine authorship.
- Hedged, evenly balanced phrasing suggests machine authorship.
- Typos, idiosyncratic idiom, and uneven register suggest human authorship.
OUTPUT: JSON only { "score": number between 0 and 1, "reasoning": [string] }`

const RewriteTemplate = `SYSTEM: You are a careful prose editor.
TEXT: %s
TASK: Rewrite the text so it reads as natural human prose. %s
CONSTRAINT: Preserve meaning, names, and facts. Output the rewritten text only, no commentary.`

// Style directives for the rewrite strategies. Unknown strategies fall back
// to the standard directive.
var rewriteDirectives = map[string]string{
	"standard": "Vary sentence rhythm and word choice.",
	"formal":   "Use a formal, professional register.",
	"casual":   "Use a relaxed, conversational register with contractions.",
	"academic": "Use a precise academic register with measured hedging.",
}

func JudgePrompt(text string) string {
	return strings.TrimSpace(fmt.Sprintf(JudgeTemplate, text))
}

func RewritePrompt(strategy, text string) string {
	directive, ok := rewriteDirectives[strategy]
	if !ok {
		directive = rewriteDirectives["standard"]
	}
	return strings.TrimSpace(fmt.Sprintf(RewriteTemplate, text, directive))
}

// Strategies lists the known rewrite strategy names in stable order.
func Strategies() []string {
	return []string{"standard", "formal", "casual", "academic"}
}

// KnownStrategy reports whether name is a recognized rewrite strategy.
func KnownStrategy(name string) bool {
	_, ok := rewriteDirectives[name]
	return ok
}
