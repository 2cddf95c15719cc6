package judge

import "provenance/internal/config"

// ClientsFromConfig builds every known provider client in consensus order.
// Unconfigured providers are still returned; they settle as absent at call
// time and contribute zero weight.
func ClientsFromConfig(cfg config.Config) []Client {
	return []Client{
		NewWorkersAI(cfg.WorkersAI.AccountID, cfg.WorkersAI.APIToken, cfg.WorkersAI.Models),
		NewAnthropic(cfg.Anthropic.APIKey, cfg.Anthropic.Model),
		NewOllama(cfg.Ollama.URL, cfg.Ollama.Models),
	}
}
