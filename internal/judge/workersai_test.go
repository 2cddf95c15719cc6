package judge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func workersReply(text string) map[string]any {
	return map[string]any{
		"result":  map[string]any{"response": text},
		"success": true,
	}
}

func TestWorkersAIJudgeFirstModel(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
			t.Errorf("unexpected Authorization header %q", got)
		}
		if !strings.Contains(r.URL.Path, "/accounts/acct-1/ai/run/@cf/meta/model-a") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if prompt, _ := req["prompt"].(string); !strings.Contains(prompt, "sample passage") {
			t.Errorf("prompt missing passage: %q", prompt)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(workersReply(`{"score": 0.85, "reasoning": ["very uniform"]}`))
	}))
	defer server.Close()

	c := NewWorkersAI("acct-1", "token-1", []string{"@cf/meta/model-a", "@cf/meta/model-b"})
	c.BaseURL = server.URL
	c.HTTPClient = server.Client()

	j, err := c.Judge(context.Background(), "sample passage")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if j.Provider != "workers-ai" || j.Model != "@cf/meta/model-a" {
		t.Fatalf("unexpected judgment identity: %+v", j)
	}
	if j.Score != 0.85 {
		t.Fatalf("expected score 0.85, got %f", j.Score)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("expected a single request, got %d", hits)
	}
}

func TestWorkersAIJudgeFallsBackOnUnparseableOutput(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.URL.Path, "model-a") {
			json.NewEncoder(w).Encode(workersReply("I believe it is AI generated."))
			return
		}
		json.NewEncoder(w).Encode(workersReply(`{"score": 0.6}`))
	}))
	defer server.Close()

	c := NewWorkersAI("acct", "token", []string{"model-a", "model-b"})
	c.BaseURL = server.URL
	c.HTTPClient = server.Client()

	j, err := c.Judge(context.Background(), "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if j.Model != "model-b" {
		t.Fatalf("expected fallback to model-b, got %q", j.Model)
	}
	if atomic.LoadInt32(&hits) != 2 {
		t.Fatalf("expected both models tried, got %d requests", hits)
	}
}

func TestWorkersAIJudgeExhaustsModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewWorkersAI("acct", "token", []string{"model-a", "model-b"})
	c.BaseURL = server.URL
	c.HTTPClient = server.Client()

	_, err := c.Judge(context.Background(), "text")
	if KindOf(err) != KindAllModelsExhausted {
		t.Fatalf("expected AllModelsExhausted, got %v", err)
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Fatalf("expected last cause preserved, got %v", err)
	}
}

func TestWorkersAIJudgeUnsuccessfulEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{}, "success": false})
	}))
	defer server.Close()

	c := NewWorkersAI("acct", "token", []string{"model-a"})
	c.BaseURL = server.URL
	c.HTTPClient = server.Client()

	_, err := c.Judge(context.Background(), "text")
	if KindOf(err) != KindAllModelsExhausted {
		t.Fatalf("expected AllModelsExhausted, got %v", err)
	}
}

func TestWorkersAIOutputEnvelopeKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"result":  map[string]any{"output": `{"score": 0.3}`},
			"success": true,
		})
	}))
	defer server.Close()

	c := NewWorkersAI("acct", "token", []string{"model-a"})
	c.BaseURL = server.URL
	c.HTTPClient = server.Client()

	j, err := c.Judge(context.Background(), "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if j.Score != 0.3 {
		t.Fatalf("expected score 0.3 from output key, got %f", j.Score)
	}
}

func TestWorkersAIMissingCredentials(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer server.Close()

	c := NewWorkersAI("", "", []string{"model-a"})
	c.BaseURL = server.URL
	c.HTTPClient = server.Client()

	_, err := c.Judge(context.Background(), "text")
	if KindOf(err) != KindAuthMissing {
		t.Fatalf("expected AuthMissing, got %v", err)
	}
	if _, err := c.Generate(context.Background(), "prompt"); KindOf(err) != KindAuthMissing {
		t.Fatalf("expected AuthMissing from Generate, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Fatalf("expected no requests for unconfigured provider, got %d", hits)
	}
}

func TestWorkersAIGenerateReturnsRawText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(workersReply("The rewritten passage, plain prose."))
	}))
	defer server.Close()

	c := NewWorkersAI("acct", "token", []string{"model-a"})
	c.BaseURL = server.URL
	c.HTTPClient = server.Client()

	out, err := c.Generate(context.Background(), "rewrite this")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "The rewritten passage, plain prose." {
		t.Fatalf("unexpected output %q", out)
	}
}
