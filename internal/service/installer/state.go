package installer

// InstallState accumulates the answers collected by the wizard steps.
type InstallState struct {
	TelegramToken   string
	TelegramOwnerID string

	OllamaHost string
	ChatModel  string
	EmbedModel string
}

func NewInstallState() *InstallState {
	return &InstallState{}
}
