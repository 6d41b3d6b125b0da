package scheduler

import (
	"context"
	"time"

	"github.com/sandevgo/chatty/internal/core"
	"github.com/sandevgo/chatty/pkg/log"
)

const proactiveKind = "check_in"

const defaultProactivePrompt = "It's been a while since we last talked. " +
	"Generate a natural, casual message to check in with the user."

// Memory is the slice of the store the scheduler reads and writes.
type Memory interface {
	LastUserMessageTime(ctx context.Context) (time.Time, bool, error)
	RecentHistory(ctx context.Context, limit int) ([]core.Message, error)
	AllFacts(ctx context.Context) ([]string, error)
	AddMessage(ctx context.Context, role, content string) (string, error)
}

type Generator interface {
	GenerateProactiveMessage(ctx context.Context, systemPrompt, proactivePrompt string, recentMessages []core.Message, userFacts []string) (string, error)
}

type Persona interface {
	SystemPrompt() string
	ProactivePrompt(kind string) string
}

// Sender delivers an unprompted message to the owner.
type Sender interface {
	SendProactive(ctx context.Context, text string) error
}

// Scheduler periodically checks for user inactivity and sends at most one
// proactive check-in per inactivity window. Every tick failure is logged and
// swallowed; the next tick retries from scratch.
type Scheduler struct {
	memory  Memory
	gen     Generator
	persona Persona
	sender  Sender

	checkInterval       time.Duration
	inactivityThreshold time.Duration
	recentLimit         int

	// lastProactiveAt suppresses repeats within one window. Only the
	// scheduler goroutine touches it.
	lastProactiveAt time.Time

	nowFn func() time.Time
	stop  chan struct{}
}

func New(memory Memory, gen Generator, persona Persona, sender Sender, checkInterval, inactivityThreshold time.Duration, recentLimit int) *Scheduler {
	return &Scheduler{
		memory:              memory,
		gen:                 gen,
		persona:             persona,
		sender:              sender,
		checkInterval:       checkInterval,
		inactivityThreshold: inactivityThreshold,
		recentLimit:         recentLimit,
		nowFn:               time.Now,
		stop:                make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().
		Dur("check_interval", s.checkInterval).
		Dur("inactivity_threshold", s.inactivityThreshold).
		Msg("proactive scheduler started")

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.checkAndSend(ctx)
		case <-ctx.Done():
			return nil
		case <-s.stop:
			return nil
		}
	}
}

func (s *Scheduler) Shutdown(ctx context.Context) error {
	close(s.stop)
	log.FromCtx(ctx).Info().Msg("proactive scheduler stopped")
	return nil
}

func (s *Scheduler) checkAndSend(ctx context.Context) {
	logger := log.FromCtx(ctx)

	lastUser, ok, err := s.memory.LastUserMessageTime(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("proactive check failed")
		return
	}
	if !ok {
		logger.Debug().Msg("no conversation history, skipping proactive check")
		return
	}

	now := s.nowFn()

	inactive := now.Sub(lastUser)
	if inactive < s.inactivityThreshold {
		logger.Debug().Dur("inactive", inactive).Msg("user active recently, no proactive message needed")
		return
	}

	// One check-in per inactivity window
	if !s.lastProactiveAt.IsZero() && now.Sub(s.lastProactiveAt) < s.inactivityThreshold {
		logger.Debug().Msg("already sent proactive message this window, skipping")
		return
	}

	s.sendProactive(ctx, now)
}

func (s *Scheduler) sendProactive(ctx context.Context, now time.Time) {
	logger := log.FromCtx(ctx)

	recent, err := s.memory.RecentHistory(ctx, s.recentLimit)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load recent history for proactive message")
		return
	}

	facts, err := s.memory.AllFacts(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load facts for proactive message")
		return
	}

	prompt := s.persona.ProactivePrompt(proactiveKind)
	if prompt == "" {
		prompt = defaultProactivePrompt
	}

	message, err := s.gen.GenerateProactiveMessage(ctx, s.persona.SystemPrompt(), prompt, recent, facts)
	if err != nil {
		logger.Error().Err(err).Msg("failed to generate proactive message")
		return
	}

	if err := s.sender.SendProactive(ctx, message); err != nil {
		logger.Error().Err(err).Msg("failed to send proactive message")
		return
	}

	// The send is confirmed; the suppression window opens even if the
	// bookkeeping write below fails, otherwise the user gets double-pinged.
	s.lastProactiveAt = now

	if _, err := s.memory.AddMessage(ctx, core.RoleAssistant, message); err != nil {
		logger.Error().Err(err).Msg("failed to persist proactive message")
		return
	}

	logger.Info().Msg("proactive message sent")
}
