package character

import (
	"fmt"
	"os"
	"strings"

	"github.com/sandevgo/chatty/internal/core"
	"gopkg.in/yaml.v3"
)

// Character is the persona the bot speaks as. Loaded once at startup;
// UserName is written exactly once afterwards, during startup sequencing,
// before any concurrent reader exists.
type Character struct {
	Name              string            `yaml:"name"`
	Personality       string            `yaml:"personality"`
	Background        string            `yaml:"background"`
	ConversationStyle string            `yaml:"conversation_style"`
	ExampleResponses  []string          `yaml:"example_responses"`
	ProactivePrompts  map[string]string `yaml:"proactive_prompts"`

	UserName string `yaml:"-"`
}

func Load(path string) (*Character, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &core.ConfigError{Setting: "CHATTY_CHARACTER_PATH", Err: err}
	}

	c := &Character{
		Name:        "Assistant",
		Personality: "A helpful AI assistant.",
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, &core.ConfigError{Setting: "CHATTY_CHARACTER_PATH", Err: fmt.Errorf("invalid character file: %w", err)}
	}
	return c, nil
}

// SystemPrompt renders the persona definition for the model.
func (c *Character) SystemPrompt() string {
	examples := make([]string, 0, len(c.ExampleResponses))
	for _, ex := range c.ExampleResponses {
		examples = append(examples, fmt.Sprintf("- %q", ex))
	}

	userContext := ""
	if c.UserName != "" {
		userContext = fmt.Sprintf(
			"\n\n## User\nYou are talking to %s. Address them by name when appropriate.", c.UserName)
	}

	return fmt.Sprintf(`You are %s, an AI companion with the following characteristics:

## Personality
%s

## Background
%s

## Conversation Style
%s

## Example Responses (for tone reference)
%s%s

Remember: You are %s. Stay in character. Be genuine, not performative.
Write short messages, you are writing with an instant message app. No emdashes.
Your responses should feel natural and true to your personality.`,
		c.Name,
		strings.TrimSpace(c.Personality),
		strings.TrimSpace(c.Background),
		strings.TrimSpace(c.ConversationStyle),
		strings.Join(examples, "\n"),
		userContext,
		c.Name,
	)
}

// ProactivePrompt returns the named proactive template, or "" when absent.
func (c *Character) ProactivePrompt(kind string) string {
	return c.ProactivePrompts[kind]
}
