package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"provenance/internal/prompts"
)

const workersAIBaseURL = "https://api.cloudflare.com/client/v4"

// WorkersAI judges text through Cloudflare Workers AI, trying its configured
// model ids in order. A model that times out, errors, or returns unparseable
// output hands over to the next one; exhausting the list yields
// AllModelsExhausted carrying the last cause.
type WorkersAI struct {
	AccountID  string
	APIToken   string
	Models     []string
	BaseURL    string
	HTTPClient *http.Client
}

var _ Client = (*WorkersAI)(nil)

func NewWorkersAI(accountID, apiToken string, models []string) *WorkersAI {
	return &WorkersAI{
		AccountID:  accountID,
		APIToken:   apiToken,
		Models:     models,
		BaseURL:    workersAIBaseURL,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *WorkersAI) Name() string { return "workers-ai" }

func (c *WorkersAI) configured() bool {
	return c.AccountID != "" && c.APIToken != "" && len(c.Models) > 0
}

func (c *WorkersAI) Judge(ctx context.Context, text string) (Judgment, error) {
	if !c.configured() {
		return Judgment{}, authMissing(c.Name())
	}
	prompt := prompts.JudgePrompt(text)
	var lastErr error
	for _, model := range c.Models {
		if ctx.Err() != nil {
			return Judgment{}, &ProviderError{Provider: c.Name(), Kind: KindTimeout, Err: ctx.Err()}
		}
		raw, err := c.run(ctx, model, prompt)
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

func (c *WorkersAI) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.configured() {
		return "", authMissing(c.Name())
	}
	var lastErr error
	for _, model := range c.Models {
		if ctx.Err() != nil {
			return "", &ProviderError{Provider: c.Name(), Kind: KindTimeout, Err: ctx.Err()}
		}
		out, err := c.run(ctx, model, prompt)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", model, err)
			continue
		}
		return out, nil
	}
	return "", &ProviderError{Provider: c.Name(), Kind: KindAllModelsExhausted, Err: lastErr}
}

type workersAIEnvelope struct {
	Result struct {
		Response string `json:"response"`
		Output   string `json:"output"`
		Message  string `json:"message"`
	} `json:"result"`
	Success bool `json:"success"`
}

func (c *WorkersAI) run(ctx context.Context, model, prompt string) (string, error) {
	endpoint := fmt.Sprintf("%s/accounts/%s/ai/run/%s", c.BaseURL, c.AccountID, model)
	payload, err := json.Marshal(map[string]any{"prompt": prompt})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIToken)
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

	var env workersAIEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", err
	}
	if !env.Success {
		return "", fmt.Errorf("unsuccessful result envelope")
	}
	out := firstNonEmpty(env.Result.Response, env.Result.Output, env.Result.Message)
	if out == "" {
		return "", fmt.Errorf("empty result payload")
	}
	return out, nil
}
