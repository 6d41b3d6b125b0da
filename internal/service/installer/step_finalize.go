package installer

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/chatty/configs"
	"github.com/sandevgo/chatty/internal/config"
	"github.com/sandevgo/chatty/pkg/env"
)

// SaveEnvStep writes the collected configuration to the .env file
type SaveEnvStep struct {
	err   error
	saved bool
}

func NewSaveEnvStep() Step {
	return &SaveEnvStep{}
}

func (s *SaveEnvStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *SaveEnvStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.saved {
		return nil, nil
	}

	path := config.GetRuntimePath()

	if err := os.MkdirAll(path, 0755); err != nil {
		s.err = fmt.Errorf("failed to create runtime directory: %w", err)
		return s, nil
	}

	envPath := filepath.Join(path, ".env")

	if _, err := os.Stat(envPath); err == nil {
		s.err = fmt.Errorf(".env file already exists at %s", envPath)
		return s, nil
	}

	content, err := s.render(state)
	if err != nil {
		s.err = err
		return s, nil
	}

	if err := os.WriteFile(envPath, []byte(content), 0600); err != nil {
		s.err = err
		return s, nil
	}

	s.saved = true
	return nil, nil
}

// render marshals the answers through the same structs the runtime parses,
// so the written keys can never drift from the config package.
func (s *SaveEnvStep) render(state *InstallState) (string, error) {
	ownerID, err := strconv.ParseInt(state.TelegramOwnerID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid telegram user ID: %w", err)
	}

	tgContent, err := env.MarshalEnv(&config.TelegramConfig{
		Token:   state.TelegramToken,
		OwnerID: ownerID,
	})
	if err != nil {
		return "", err
	}

	ollamaContent, err := env.MarshalEnv(&config.OllamaConfig{
		Host:       state.OllamaHost,
		ChatModel:  state.ChatModel,
		EmbedModel: state.EmbedModel,
	})
	if err != nil {
		return "", err
	}

	return tgContent + ollamaContent, nil
}

func (s *SaveEnvStep) View(state *InstallState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", s.err)) + "\n\n(press ctrl+c to quit)\n"
	}
	if s.saved {
		return "Configuration saved successfully!\n"
	}
	return "Saving configuration...\n"
}

// InitializeFilesStep seeds the runtime directory with the default
// character file and MCP config. Existing files are left alone.
type InitializeFilesStep struct {
	err  error
	done bool
}

func NewInitializeFilesStep() Step {
	return &InitializeFilesStep{}
}

func (s *InitializeFilesStep) Init() tea.Cmd {
	return nil
}

func (s *InitializeFilesStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.done {
		return nil, nil
	}

	path := config.GetRuntimePath()

	if err := os.MkdirAll(path, 0755); err != nil {
		s.err = fmt.Errorf("failed to create runtime directory: %w", err)
		return s, nil
	}

	files := map[string]string{
		"character.yaml": filepath.Join(path, "character.yaml"),
		"mcp.json":       filepath.Join(path, "mcp.json"),
	}

	for src, dst := range files {
		if _, err := os.Stat(dst); err == nil {
			continue
		}

		data, err := configs.FS.ReadFile(src)
		if err != nil {
			s.err = fmt.Errorf("failed to read embedded %s: %w", src, err)
			return s, nil
		}

		if err := os.WriteFile(dst, data, 0644); err != nil {
			s.err = fmt.Errorf("failed to write %s: %w", dst, err)
			return s, nil
		}
	}

	s.done = true
	return nil, nil
}

func (s *InitializeFilesStep) View(state *InstallState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", s.err)) + "\n\n(press ctrl+c to quit)\n"
	}
	if s.done {
		return "Runtime files initialized successfully!\n"
	}
	return "Initializing runtime files...\n"
}
