package core

import "context"

// Sampling carries the completion options forwarded to the model backend.
type Sampling struct {
	Temperature   float64 `json:"temperature"`
	TopP          float64 `json:"top_p"`
	TopK          int     `json:"top_k"`
	RepeatPenalty float64 `json:"repeat_penalty"`
}

// SamplingCreative is the default conversational preset.
func SamplingCreative() Sampling {
	return Sampling{Temperature: 0.8, TopP: 0.9, TopK: 40, RepeatPenalty: 1.1}
}

// SamplingPrecise lowers temperature for tool selection and fact extraction.
func SamplingPrecise() Sampling {
	return Sampling{Temperature: 0.3, TopP: 0.9, TopK: 40, RepeatPenalty: 1.1}
}

type AIProvider interface {
	Chat(ctx context.Context, messages []ChatMessage, tools []Tool, opts Sampling) (ChatMessage, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
