package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/chatty/internal/config"
	"github.com/sandevgo/chatty/internal/core"
	"github.com/sandevgo/chatty/pkg/log"
)

// NewProvider builds the chat provider and the embedder for the configured
// backend. Both point at the same host; only the models differ.
func NewProvider(ctx context.Context, appCfg *config.AppConfig, cfg *config.OllamaConfig) (core.AIProvider, core.Embedder, error) {
	switch appCfg.LLMProvider {
	case "ollama":
		o := NewOllama(cfg.Host, cfg.APIKey, cfg.ChatModel, cfg.EmbedModel)
		return o, newCheckedEmbedder(o, cfg.EmbeddingDim), nil

	case "openai":
		chat := NewOpenAICompatible(OpenAICompatibleConfig{
			BaseURL:    cfg.Host,
			APIKey:     cfg.APIKey,
			Model:      cfg.ChatModel,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
		})
		embed := NewOpenAICompatible(OpenAICompatibleConfig{
			BaseURL:    cfg.Host,
			APIKey:     cfg.APIKey,
			Model:      cfg.EmbedModel,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
		})
		log.FromCtx(ctx).Info().Str("host", cfg.Host).Msg("using openai-compatible backend")
		return chat, newCheckedEmbedder(embed, cfg.EmbeddingDim), nil

	default:
		return nil, nil, &core.ConfigError{
			Setting: "LLM_PROVIDER",
			Err:     fmt.Errorf("unknown provider %q", appCfg.LLMProvider),
		}
	}
}
