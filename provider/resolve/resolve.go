// Package resolve creates providers from provider-agnostic configuration.
package resolve

import (
	"fmt"

	quackquery "github.com/QuackQuery/QuackQuery"
	"github.com/QuackQuery/QuackQuery/provider/gemini"
	"github.com/QuackQuery/QuackQuery/provider/openaicompat"
)

// Config holds provider-agnostic configuration for creating a chat Provider.
type Config struct {
	Provider string // "gemini", "openai", "groq", "deepseek", "mistral", "ollama"
	APIKey   string
	Model    string
	BaseURL  string // required for openai-compat; auto-filled for known providers
}

// knownBaseURLs maps provider names to their OpenAI-compatible API bases.
var knownBaseURLs = map[string]string{
	"openai":   "https://api.openai.com/v1",
	"groq":     "https://api.groq.com/openai/v1",
	"deepseek": "https://api.deepseek.com/v1",
	"mistral":  "https://api.mistral.ai/v1",
	"ollama":   "http://localhost:11434/v1",
}

// Provider creates a quackquery.Provider from a Config.
func Provider(cfg Config) (quackquery.Provider, error) {
	switch cfg.Provider {
	case "gemini":
		return gemini.New(cfg.APIKey, cfg.Model), nil
	case "openai", "groq", "deepseek", "mistral", "ollama":
		base := cfg.BaseURL
		if base == "" {
			base = knownBaseURLs[cfg.Provider]
		}
		return openaicompat.NewProvider(cfg.APIKey, cfg.Model, base,
			openaicompat.WithName(cfg.Provider)), nil
	default:
		return nil, fmt.Errorf("resolve: unknown provider %q", cfg.Provider)
	}
}

// Transcriber creates a quackquery.Transcriber from a Config. Only Gemini
// accepts inline audio; other providers return an error.
func Transcriber(cfg Config) (quackquery.Transcriber, error) {
	if cfg.Provider == "gemini" {
		return gemini.New(cfg.APIKey, cfg.Model), nil
	}
	return nil, fmt.Errorf("resolve: provider %q does not support transcription", cfg.Provider)
}
