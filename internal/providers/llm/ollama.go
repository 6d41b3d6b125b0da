package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sandevgo/chatty/internal/core"
)

// Ollama speaks the native Ollama API, which accepts per-request sampling
// options and returns structured tool calls.
type Ollama struct {
	baseProvider
	embedModel string
}

func NewOllama(baseURL, apiKey, chatModel, embedModel string) *Ollama {
	return &Ollama{
		baseProvider: newBaseProvider(baseURL, apiKey, chatModel),
		embedModel:   embedModel,
	}
}

func (o *Ollama) headers() map[string]string {
	h := make(map[string]string)
	if o.apiKey != "" {
		h["Authorization"] = "Bearer " + o.apiKey
	}
	return h
}

func (o *Ollama) Chat(ctx context.Context, messages []core.ChatMessage, tools []core.Tool, opts core.Sampling) (core.ChatMessage, error) {
	payload := map[string]any{
		"model":    o.model,
		"messages": messages,
		"stream":   false,
		"options":  opts,
	}
	if len(tools) > 0 {
		payload["tools"] = tools
	}

	resp, err := o.doRequest(ctx, http.MethodPost, "/api/chat", payload, o.headers())
	if err != nil {
		return core.ChatMessage{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return core.ChatMessage{}, readError(resp)
	}

	var result struct {
		Message core.ChatMessage `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return core.ChatMessage{}, fmt.Errorf("decode: %w", err)
	}
	return result.Message, nil
}

func (o *Ollama) Embed(ctx context.Context, text string) ([]float32, error) {
	payload := map[string]any{
		"model": o.embedModel,
		"input": text,
	}

	resp, err := o.doRequest(ctx, http.MethodPost, "/api/embed", payload, o.headers())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var result struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embeddings: %s", string(data))
	}
	return result.Embeddings[0], nil
}
