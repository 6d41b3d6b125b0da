package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/sandevgo/chatty/internal/config"
	"github.com/sandevgo/chatty/internal/service/character"
	"github.com/sandevgo/chatty/internal/service/handler"
	"github.com/sandevgo/chatty/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const baseContextKey = "base_context"

const apologyReply = "Sorry, I had trouble processing that. Could you try again?"

type Bot struct {
	bot      *tele.Bot
	cfg      *config.TelegramConfig
	handler  *handler.Handler
	persona  *character.Character
	allFacts FactsSource
	sender   *sender
	ownerID  int64
}

// FactsSource backs the /facts command.
type FactsSource interface {
	AllFacts(ctx context.Context) ([]string, error)
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	h *handler.Handler,
	persona *character.Character,
	facts FactsSource,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:      b,
		cfg:      cfg,
		handler:  h,
		persona:  persona,
		allFacts: facts,
		sender:   newSender(b),
		ownerID:  cfg.OwnerID,
	}

	// Use context from Signal with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	// Middleware: Only allow the owner
	b.Use(bot.restrictToOwner)

	b.Handle("/start", bot.handleStart)
	b.Handle("/help", bot.handleHelp)
	b.Handle("/facts", bot.handleFacts)
	b.Handle("/forget", bot.handleForget)
	b.Handle(tele.OnText, bot.handleMessage)

	return bot, nil
}

// restrictToOwner drops updates from anyone but the configured owner.
func (b *Bot) restrictToOwner(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if c.Sender().ID != b.ownerID {
			ctx := c.Get(baseContextKey).(context.Context)
			log.FromCtx(ctx).Info().Int64("user_id", c.Sender().ID).Msg("ignoring message from unauthorized user")
			return nil
		}
		return next(c)
	}
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx)

	// Notify user we are working
	_ = c.Notify(tele.Typing)

	reply, err := b.handler.HandleMessage(ctx, c.Text())
	if err != nil {
		logger.Error().Err(err).Msg("message handling failed")
		return c.Send(apologyReply)
	}

	return b.sender.sendMarkdown(ctx, c.Chat(), reply, false)
}

// SendProactive delivers an unprompted message to the owner chat.
func (b *Bot) SendProactive(ctx context.Context, text string) error {
	owner := &tele.User{ID: b.ownerID}
	return b.sender.sendMarkdown(ctx, owner, text, false)
}

// FetchDisplayName looks up the owner's name on Telegram and hands it to the
// persona. Failure is not fatal; the prompt simply omits the user block.
func (b *Bot) FetchDisplayName(ctx context.Context) {
	logger := log.FromCtx(ctx)

	chat, err := b.bot.ChatByID(b.ownerID)
	if err != nil {
		logger.Warn().Err(err).Int64("user_id", b.ownerID).Msg("could not fetch owner name")
		return
	}

	name := chat.FirstName
	if name == "" {
		name = chat.Username
	}
	if name == "" {
		return
	}

	b.persona.UserName = name
	logger.Info().Str("name", name).Msg("fetched owner display name")
}
