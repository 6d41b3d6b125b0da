package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/chatty/pkg/log"
	tele "gopkg.in/telebot.v3"
)

func (b *Bot) handleStart(c tele.Context) error {
	return c.Send(fmt.Sprintf(
		"Hey! I'm %s. Nice to meet you! Feel free to chat with me anytime. 💬",
		b.persona.Name,
	))
}

func (b *Bot) handleHelp(c tele.Context) error {
	return c.Send(fmt.Sprintf(
		"I'm %s, your AI companion!\n\n"+
			"Just send me a message and I'll respond. "+
			"I remember our conversations and learn about you over time.\n\n"+
			"Commands:\n"+
			"/start - Start a conversation\n"+
			"/help - Show this help message\n"+
			"/facts - See what I remember about you\n"+
			"/forget - Clear my memory of our conversations",
		b.persona.Name,
	))
}

func (b *Bot) handleFacts(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)

	facts, err := b.allFacts.AllFacts(ctx)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to load facts")
		return c.Send(apologyReply)
	}

	if len(facts) == 0 {
		return c.Send("I haven't learned any specific facts about you yet. We'll get to know each other as we chat!")
	}

	var sb strings.Builder
	sb.WriteString("Here's what I remember about you:\n\n")
	for _, f := range facts {
		sb.WriteString("• ")
		sb.WriteString(f)
		sb.WriteByte('\n')
	}
	return c.Send(sb.String())
}

func (b *Bot) handleForget(c tele.Context) error {
	return c.Send("Memory clearing is not implemented yet. If you need to reset, you can delete the database file.")
}
