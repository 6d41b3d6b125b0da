package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/chatty/pkg/log"
)

type OllamaConfig struct {
	Host       string `env:"OLLAMA_HOST" envDefault:"http://localhost:11434"`
	APIKey     string `env:"OLLAMA_API_KEY"`
	ChatModel  string `env:"OLLAMA_CHAT_MODEL" envDefault:"gpt-oss:20b"`
	EmbedModel string `env:"OLLAMA_EMBED_MODEL" envDefault:"nomic-embed-text"`
	// Must match the vector column width of the migrations.
	EmbeddingDim int `env:"OLLAMA_EMBED_DIM" envDefault:"768"`
}

func NewOllamaConfig(ctx context.Context) *OllamaConfig {
	c := &OllamaConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Ollama config")
	}
	return c
}
