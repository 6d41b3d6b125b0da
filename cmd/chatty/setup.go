package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/chatty/internal/config"
	"github.com/sandevgo/chatty/internal/core"
	"github.com/sandevgo/chatty/internal/providers/llm"
	"github.com/sandevgo/chatty/internal/providers/mcp"
	"github.com/sandevgo/chatty/internal/providers/tools"
	"github.com/sandevgo/chatty/internal/service/character"
	"github.com/sandevgo/chatty/internal/service/gateway"
	"github.com/sandevgo/chatty/internal/service/handler"
	"github.com/sandevgo/chatty/internal/service/memory"
	"github.com/sandevgo/chatty/internal/service/scheduler"
	"github.com/sandevgo/chatty/internal/storage/sqlite"
	"github.com/sandevgo/chatty/internal/transport/telegram"
	"github.com/sandevgo/chatty/pkg/log"
	"github.com/sandevgo/chatty/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	err := initEnv(ctx, config.GetRuntimePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	ollamaCfg := config.NewOllamaConfig(ctx)
	tgCfg := config.NewTelegramConfig(ctx)

	// 2. Storage
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	messagesRepo := sqlite.NewMessagesRepo(db)
	factsRepo := sqlite.NewFactsRepo(db)
	remindersRepo := sqlite.NewRemindersRepo(db)

	// 3. AI Provider
	aiProvider, embedder, err := llm.NewProvider(ctx, appCfg, ollamaCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize LLM provider")
	}

	// 4. Character persona
	persona, err := character.Load(appCfg.GetCharacterPath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load character")
	}

	// 5. Tools
	registry := initTools(ctx, appCfg, remindersRepo, &services)

	// 6. Memory & Gateway
	store := memory.NewStore(messagesRepo, factsRepo, embedder)
	assembler := memory.NewAssembler(
		store,
		persona,
		appCfg.RecentHistoryLimit,
		appCfg.RelevantHistoryLimit,
		appCfg.RelevantFactsLimit,
	)
	gw := gateway.New(aiProvider, registry, tools.NewExecutor(registry))

	// 7. Conversation handler
	h := handler.New(ctx, assembler, gw, store)

	// 8. Transport
	bot, err := telegram.NewBot(ctx, tgCfg, h, persona, store)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize telegram bot")
	}
	// Resolve the owner's name before anything reads the persona
	bot.FetchDisplayName(ctx)
	services = append(services, bot)

	// 9. Proactive scheduler
	sched := scheduler.New(
		store,
		gw,
		persona,
		bot,
		appCfg.CheckInterval,
		appCfg.InactivityThreshold,
		appCfg.RecentHistoryLimit,
	)
	services = append(services, sched)

	return services
}

func initTools(ctx context.Context, cfg *config.AppConfig, reminders core.RemindersRepository, services *[]srv.Service) *tools.Registry {
	logger := log.FromCtx(ctx)

	registry := tools.NewRegistry()
	registry.Register(ctx, tools.NewFetch())
	registry.Register(ctx, tools.NewListReminders(reminders))
	registry.Register(ctx, tools.NewCreateReminder(reminders))
	registry.Register(ctx, tools.NewEditReminder(reminders))
	registry.Register(ctx, tools.NewCompleteReminder(reminders))
	registry.Register(ctx, tools.NewAgenda(reminders))

	// External MCP servers
	mcpCfg, err := mcp.LoadConfig(cfg.GetMCPConfigPath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load mcp config")
	}
	connector := mcp.NewConnector()
	connector.RegisterAll(ctx, mcpCfg, registry)
	*services = append(*services, srv.NewCleanup(connector.Close))

	return registry
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
