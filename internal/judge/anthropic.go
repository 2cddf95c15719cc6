package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"provenance/internal/prompts"
)

const (
	anthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"

	// anthropicInputLimit bounds the passage submitted for judging.
	anthropicInputLimit = 2000
)

// Anthropic judges text through the Anthropic Messages API with a single
// configured model. The passage is truncated to anthropicInputLimit before
// submission.
type Anthropic struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

var _ Client = (*Anthropic)(nil)

func NewAnthropic(apiKey, model string) *Anthropic {
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}
	return &Anthropic{
		APIKey:     apiKey,
		Model:      model,
		BaseURL:    anthropicBaseURL,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Anthropic) Name() string { return "anthropic" }

func (c *Anthropic) Judge(ctx context.Context, text string) (Judgment, error) {
	if c.APIKey == "" {
		return Judgment{}, authMissing(c.Name())
	}
	raw, err := c.complete(ctx, prompts.JudgePrompt(truncate(text, anthropicInputLimit)))
	if err != nil {
		return Judgment{}, classify(c.Name(), err)
	}
	j, err := ParseJudgment(c.Name(), raw)
	if err != nil {
		return Judgment{}, &ProviderError{Provider: c.Name(), Kind: KindMalformedResponse, Err: err}
	}
	j.Model = c.Model
	return j, nil
}

func (c *Anthropic) Generate(ctx context.Context, prompt string) (string, error) {
	if c.APIKey == "" {
		return "", authMissing(c.Name())
	}
	out, err := c.complete(ctx, prompt)
	if err != nil {
		return "", classify(c.Name(), err)
	}
	return out, nil
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicEnvelope struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (c *Anthropic) complete(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(anthropicRequest{
		Model:     c.Model,
		MaxTokens: 1024,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	var env anthropicEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", err
	}
	for _, block := range env.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content block")
}

// truncate cuts s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
