package judge

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ExtractJSONObject returns the first balanced {...} object inside free-form
// model output, tolerating a fenced ``` block around it. Returns "" when the
// text holds no balanced object. Braces inside string values are not special-
// cased; the later validity check rejects anything the scan mangles.
func ExtractJSONObject(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if lines := strings.Split(s, "\n"); len(lines) >= 3 {
			s = strings.Join(lines[1:len(lines)-1], "\n")
		}
	}
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// ParseJudgment interprets raw model text as provider's judgment. The reply
// must contain a JSON object; a missing numeric score inside an otherwise
// valid object is not a failure and defaults to DefaultScore with the
// substitution recorded in the reasoning. Scores are clamped to [0,1].
func ParseJudgment(provider, raw string) (Judgment, error) {
	obj := ExtractJSONObject(raw)
	if obj == "" {
		return Judgment{}, fmt.Errorf("no JSON object in model output")
	}
	if !gjson.Valid(obj) {
		return Judgment{}, fmt.Errorf("invalid JSON object in model output")
	}

	j := Judgment{Provider: provider}
	if score := gjson.Get(obj, "score"); score.Type == gjson.Number {
		j.Score = clamp01(score.Float())
	} else {
		j.Score = DefaultScore
		j.Reasoning = append(j.Reasoning,
			fmt.Sprintf("model reply carried no numeric score, defaulting to %.1f", DefaultScore))
	}

	reasoning := gjson.Get(obj, "reasoning")
	switch {
	case reasoning.IsArray():
		for _, item := range reasoning.Array() {
			if line := strings.TrimSpace(item.String()); line != "" {
				j.Reasoning = append(j.Reasoning, line)
			}
		}
	case reasoning.Type == gjson.String:
		if line := strings.TrimSpace(reasoning.String()); line != "" {
			j.Reasoning = append(j.Reasoning, line)
		}
	}
	return j, nil
}
