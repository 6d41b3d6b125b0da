package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/sandevgo/chatty/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"CHATTY_RUNTIME_PATH" envDefault:".chatty"`
	// Allow selecting the model backend flavor
	LLMProvider string `env:"LLM_PROVIDER" envDefault:"ollama"`

	// Character persona definition
	CharacterPath string `env:"CHATTY_CHARACTER_PATH" envDefault:"character.yaml"`

	// Context assembly
	RecentHistoryLimit   int `env:"CHATTY_RECENT_HISTORY" envDefault:"10"`
	RelevantHistoryLimit int `env:"CHATTY_RELEVANT_HISTORY" envDefault:"5"`
	RelevantFactsLimit   int `env:"CHATTY_RELEVANT_FACTS" envDefault:"5"`

	// Proactive messaging
	CheckInterval       time.Duration `env:"CHATTY_CHECK_INTERVAL" envDefault:"1h"`
	InactivityThreshold time.Duration `env:"CHATTY_INACTIVITY_THRESHOLD" envDefault:"24h"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	// Relative runtime paths resolve against the home directory
	c.RuntimePath = GetRuntimePath()
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "chatty.db")
}

func (c AppConfig) GetMCPConfigPath() string {
	return filepath.Join(c.RuntimePath, "mcp.json")
}

func (c AppConfig) GetCharacterPath() string {
	if filepath.IsAbs(c.CharacterPath) {
		return c.CharacterPath
	}
	return filepath.Join(c.RuntimePath, c.CharacterPath)
}
