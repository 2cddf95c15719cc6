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

	"provenance/internal/prompts"
)

// Ollama judges text through a local Ollama instance. The provider is enabled
// only when an endpoint is configured; there is no credential. Models are
// tried in configured order, like WorkersAI.
type Ollama struct {
	Endpoint   string
	Models     []string
	HTTPClient *http.Client
}

var _ Client = (*Ollama)(nil)

func NewOllama(endpoint string, models []string) *Ollama {
	return &Ollama{
		Endpoint:   endpoint,
		Models:     models,
		HTTPClient: &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *Ollama) Name() string { return "ollama" }

func (c *Ollama) configured() bool {
	return strings.TrimSpace(c.Endpoint) != "" && len(c.Models) > 0
}

func (c *Ollama) Judge(ctx context.Context, text string) (Judgment, error) {
	if !c.configured() {
		return Judgment{}, authMissing(c.Name())
	}
	prompt := prompts.JudgePrompt(text)
	var lastErr error
	for _, model := range c.Models {
		if ctx.Err() != nil {
			return Judgment{}, &ProviderError{Provider: c.Name(), Kind: KindTimeout, Err: ctx.Err()}
		}
		raw, err := c.run(ctx, model, prompt, true)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", model, err)
			continue
		}
		j, err := ParseJudgment(c.Name(), raw)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", model, err)
			continue
		}
		j.Model = model
		return j, nil
	}
	return Judgment{}, &ProviderError{Provider: c.Name(), Kind: KindAllModelsExhausted, Err: lastErr}
}

func (c *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.configured() {
		return "", authMissing(c.Name())
	}
	var lastErr error
	for _, model := range c.Models {
		if ctx.Err() != nil {
			return "", &ProviderError{Provider: c.Name(), Kind: KindTimeout, Err: ctx.Err()}
		}
		out, err := c.run(ctx, model, prompt, false)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", model, err)
			continue
		}
		return out, nil
	}
	return "", &ProviderError{Provider: c.Name(), Kind: KindAllModelsExhausted, Err: lastErr}
}

type ollamaEnvelope struct {
	Response string `json:"response"`
}

func (c *Ollama) run(ctx context.Context, model, prompt string, wantJSON bool) (string, error) {
	body := map[string]any{
		"model":  model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]any{
			"temperature": 0,
		},
	}
	if wantJSON {
		body["format"] = "json"
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.generateURL(), bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	raw, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	var env ollamaEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", err
	}
	if strings.TrimSpace(env.Response) == "" {
		return "", fmt.Errorf("empty model response")
	}
	return env.Response, nil
}

func (c *Ollama) generateURL() string {
	base := strings.TrimSpace(c.Endpoint)
	if strings.Contains(base, "/api/generate") {
		return base
	}
	return strings.TrimSuffix(base, "/") + "/api/generate"
}
