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

func TestOllamaJudge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["model"] != "llama3.1:8b" {
			t.Errorf("unexpected model %v", req["model"])
		}
		if req["stream"] != false {
			t.Errorf("expected stream disabled, got %v", req["stream"])
		}
		if req["format"] != "json" {
			t.Errorf("expected json format for judging, got %v", req["format"])
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"response": `{"score": 0.45, "reasoning": ["mixed signals"]}`})
	}))
	defer server.Close()

	c := NewOllama(server.URL, []string{"llama3.1:8b"})
	c.HTTPClient = server.Client()

	j, err := c.Judge(context.Background(), "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if j.Provider != "ollama" || j.Model != "llama3.1:8b" {
		t.Fatalf("unexpected judgment identity: %+v", j)
	}
	if j.Score != 0.45 {
		t.Fatalf("expected score 0.45, got %f", j.Score)
	}
}

func TestOllamaGenerateOmitsJSONFormat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if _, ok := req["format"]; ok {
			t.Error("expected no format constraint for generation")
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"response": "plain rewritten prose"})
	}))
	defer server.Close()

	c := NewOllama(server.URL, []string{"llama3.1:8b"})
	c.HTTPClient = server.Client()

	out, err := c.Generate(context.Background(), "rewrite this")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "plain rewritten prose" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestOllamaModelFallback(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		if n == 1 {
			json.NewEncoder(w).Encode(map[string]any{"response": "no json here"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"response": `{"score": 0.9}`})
	}))
	defer server.Close()

	c := NewOllama(server.URL, []string{"first", "second"})
	c.HTTPClient = server.Client()

	j, err := c.Judge(context.Background(), "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if j.Model != "second" {
		t.Fatalf("expected fallback model, got %q", j.Model)
	}
	if atomic.LoadInt32(&hits) != 2 {
		t.Fatalf("expected 2 requests, got %d", hits)
	}
}

func TestOllamaUnconfigured(t *testing.T) {
	c := NewOllama("", nil)
	if _, err := c.Judge(context.Background(), "text"); KindOf(err) != KindAuthMissing {
		t.Fatalf("expected AuthMissing, got %v", err)
	}
	if _, err := c.Generate(context.Background(), "prompt"); KindOf(err) != KindAuthMissing {
		t.Fatalf("expected AuthMissing from Generate, got %v", err)
	}
}

func TestOllamaExhaustsModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewOllama(server.URL, []string{"a", "b"})
	c.HTTPClient = server.Client()

	_, err := c.Judge(context.Background(), "text")
	if KindOf(err) != KindAllModelsExhausted {
		t.Fatalf("expected AllModelsExhausted, got %v", err)
	}
}

func TestOllamaGenerateURL(t *testing.T) {
	cases := []struct {
		endpoint string
		want     string
	}{
		{"http://127.0.0.1:11434", "http://127.0.0.1:11434/api/generate"},
		{"http://127.0.0.1:11434/", "http://127.0.0.1:11434/api/generate"},
		{"http://host/api/generate", "http://host/api/generate"},
	}
	for _, c := range cases {
		o := &Ollama{Endpoint: c.endpoint}
		if got := o.generateURL(); got != c.want {
			t.Fatalf("endpoint %q: expected %q, got %q", c.endpoint, c.want, got)
		}
	}
}

func TestOllamaEmptyResponseIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"response": "   "})
	}))
	defer server.Close()

	c := NewOllama(server.URL, []string{"a"})
	c.HTTPClient = server.Client()

	_, err := c.Generate(context.Background(), "prompt")
	if KindOf(err) != KindAllModelsExhausted {
		t.Fatalf("expected AllModelsExhausted, got %v", err)
	}
	if !strings.Contains(err.Error(), "empty model response") {
		t.Fatalf("expected empty-response cause, got %v", err)
	}
}
