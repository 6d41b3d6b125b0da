package installer

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// textStep is the shared shape of the free-text Ollama steps.
type textStep struct {
	input  textinput.Model
	prompt string
	assign func(state *InstallState, value string)
}

func newTextStep(prompt, placeholder string, assign func(*InstallState, string)) *textStep {
	ti := textinput.New()
	ti.Focus()
	ti.Width = 40
	ti.Placeholder = placeholder

	return &textStep{
		input:  ti,
		prompt: prompt,
		assign: assign,
	}
}

func (s *textStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *textStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		val := s.input.Value()
		if val == "" {
			val = s.input.Placeholder
		}
		s.assign(state, val)
		return nil, nil
	}
	return s, cmd
}

func (s *textStep) View(state *InstallState) string {
	return s.prompt + "\n\n" + s.input.View() + "\n\n(press enter to confirm, empty keeps the default)\n"
}

func NewOllamaHostStep() Step {
	return newTextStep("Enter Ollama Host URL:", "http://localhost:11434", func(st *InstallState, v string) {
		st.OllamaHost = v
	})
}

func NewChatModelStep() Step {
	return newTextStep("Enter the chat model:", "gpt-oss:20b", func(st *InstallState, v string) {
		st.ChatModel = v
	})
}

func NewEmbedModelStep() Step {
	return newTextStep("Enter the embedding model:", "nomic-embed-text", func(st *InstallState, v string) {
		st.EmbedModel = v
	})
}
