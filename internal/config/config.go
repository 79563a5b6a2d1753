// Package config loads application configuration: defaults, then a TOML
// file, then environment variables (env wins).
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	LLM       LLMConfig       `toml:"llm"`
	GitHub    GitHubConfig    `toml:"github"`
	Database  DatabaseConfig  `toml:"database"`
	Workspace WorkspaceConfig `toml:"workspace"`
	Voice     VoiceConfig     `toml:"voice"`
	Observer  ObserverConfig  `toml:"observer"`
}

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type GitHubConfig struct {
	Token string `toml:"token"`
}

type DatabaseConfig struct {
	// Backend selects the history store: "sqlite" (default), "postgres",
	// or "none" to disable persistence.
	Backend     string `toml:"backend"`
	Path        string `toml:"path"`
	PostgresURL string `toml:"postgres_url"`
}

type WorkspaceConfig struct {
	Path string `toml:"path"`
}

type VoiceConfig struct {
	RecordSeconds int `toml:"record_seconds"`
}

type ObserverConfig struct {
	Enabled bool `toml:"enabled"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	home, _ := os.UserHomeDir()
	if home == "" {
		home = "/tmp"
	}
	return Config{
		LLM:       LLMConfig{Provider: "gemini", Model: "gemini-2.5-flash"},
		Database:  DatabaseConfig{Backend: "sqlite", Path: "quackquery.db"},
		Workspace: WorkspaceConfig{Path: filepath.Join(home, "quackquery-workspace")},
		Voice:     VoiceConfig{RecordSeconds: 5},
	}
}

// Load reads config: defaults -> TOML file -> env vars (env wins).
func Load(path string) Config {
	cfg := Default()

	if path == "" {
		path = "quackquery.toml"
	}

	if data, err := os.ReadFile(path); err == nil {
		_ = toml.Unmarshal(data, &cfg)
	}

	// Env overrides
	if v := os.Getenv("QUACKQUERY_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("QUACKQUERY_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("QUACKQUERY_LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" && cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		cfg.GitHub.Token = v
	}
	if v := os.Getenv("QUACKQUERY_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("QUACKQUERY_POSTGRES_URL"); v != "" {
		cfg.Database.Backend = "postgres"
		cfg.Database.PostgresURL = v
	}
	if v := os.Getenv("QUACKQUERY_WORKSPACE"); v != "" {
		cfg.Workspace.Path = v
	}
	if os.Getenv("QUACKQUERY_OBSERVER_ENABLED") == "true" || os.Getenv("QUACKQUERY_OBSERVER_ENABLED") == "1" {
		cfg.Observer.Enabled = true
	}

	return cfg
}
