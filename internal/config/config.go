package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries everything the detection and rewrite paths need. It is
// built once at startup and injected; nothing reads the environment after
// construction.
type Config struct {
	WorkersAI WorkersAIConfig `yaml:"workers_ai"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	Ollama    OllamaConfig    `yaml:"ollama"`

	JudgeTimeoutMs int     `yaml:"judge_timeout_ms"`
	AIThreshold    float64 `yaml:"ai_threshold"`
	MaxTextLen     int     `yaml:"max_text_len"`

	DatabasePath string `yaml:"database_path"`
}

// WorkersAIConfig configures the Cloudflare Workers AI judge. An empty
// account id or token leaves the provider absent.
type WorkersAIConfig struct {
	AccountID string   `yaml:"account_id"`
	APIToken  string   `yaml:"api_token"`
	Models    []string `yaml:"models"`
}

// AnthropicConfig configures the Anthropic judge. An empty key leaves the
// provider absent.
type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// OllamaConfig configures the local Ollama judge. An empty URL leaves the
// provider absent; there is no credential.
type OllamaConfig struct {
	URL    string   `yaml:"url"`
	Models []string `yaml:"models"`
}

// FromEnv builds the configuration from process environment variables,
// falling back to defaults for anything unset.
func FromEnv() Config {
	return Config{
		WorkersAI: WorkersAIConfig{
			AccountID: strings.TrimSpace(os.Getenv("CLOUDFLARE_ACCOUNT_ID")),
			APIToken:  strings.TrimSpace(os.Getenv("CLOUDFLARE_API_TOKEN")),
			Models: getenvList("PROVENANCE_WORKERS_AI_MODELS", []string{
				"@cf/meta/llama-3.1-8b-instruct",
				"@cf/meta/llama-3-8b-instruct",
				"@cf/mistral/mistral-7b-instruct-v0.1",
			}),
		},
		Anthropic: AnthropicConfig{
			APIKey: strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")),
			Model:  strings.TrimSpace(os.Getenv("PROVENANCE_ANTHROPIC_MODEL")),
		},
		Ollama: OllamaConfig{
			URL:    strings.TrimSpace(os.Getenv("OLLAMA_URL")),
			Models: getenvList("PROVENANCE_OLLAMA_MODELS", []string{"llama3.1:8b"}),
		},
		JudgeTimeoutMs: getenvInt("PROVENANCE_JUDGE_TIMEOUT_MS", 30000),
		AIThreshold:    getenvFloat("PROVENANCE_AI_THRESHOLD", 0.7),
		MaxTextLen:     getenvInt("PROVENANCE_MAX_TEXT_LEN", 15000),
		DatabasePath:   getenvDefault("PROVENANCE_DB_PATH", "provenance.db"),
	}
}

// ApplyFile overlays settings from a YAML file onto c. Fields absent from
// the file keep their current values.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	if c.AIThreshold <= 0 || c.AIThreshold >= 1 {
		return fmt.Errorf("ai threshold %.2f outside (0,1)", c.AIThreshold)
	}
	if c.JudgeTimeoutMs <= 0 {
		return fmt.Errorf("judge timeout %dms must be positive", c.JudgeTimeoutMs)
	}
	if c.MaxTextLen <= 0 {
		return fmt.Errorf("max text length %d must be positive", c.MaxTextLen)
	}
	return nil
}

// JudgeTimeout is the per-provider call budget.
func (c Config) JudgeTimeout() time.Duration {
	return time.Duration(c.JudgeTimeoutMs) * time.Millisecond
}

func getenvDefault(name, fallback string) string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	return raw
}

func getenvList(name string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func getenvInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func getenvFloat(name string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}
