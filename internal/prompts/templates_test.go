package prompts

import (
	"strings"
	"testing"
)

func TestJudgePromptEmbedsText(t *testing.T) {
	p := JudgePrompt("the passage under review")
	if !strings.Contains(p, "the passage under review") {
		t.Fatalf("prompt missing passage: %q", p)
	}
	if !strings.Contains(p, `"score"`) || !strings.Contains(p, `"reasoning"`) {
		t.Fatalf("prompt missing output contract: %q", p)
	}
}

func TestRewritePromptPerStrategy(t *testing.T) {
	seen := map[string]struct{}{}
	for _, strategy := range Strategies() {
		p := RewritePrompt(strategy, "original text")
		if !strings.Contains(p, "original text") {
			t.Fatalf("%s: prompt missing text", strategy)
		}
		seen[p] = struct{}{}
	}
	if len(seen) != len(Strategies()) {
		t.Fatal("expected each strategy to produce a distinct prompt")
	}
}

func TestRewritePromptUnknownStrategyFallsBack(t *testing.T) {
	if RewritePrompt("surreal", "text") != RewritePrompt("standard", "text") {
		t.Fatal("unknown strategy should use the standard directive")
	}
}

func TestKnownStrategy(t *testing.T) {
	for _, s := range Strategies() {
		if !KnownStrategy(s) {
			t.Fatalf("expected %q to be known", s)
		}
	}
	if KnownStrategy("surreal") {
		t.Fatal("unexpected strategy recognized")
	}
}
