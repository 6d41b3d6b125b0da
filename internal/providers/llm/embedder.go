package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/chatty/internal/core"
)

// checkedEmbedder rejects vectors whose width does not match the configured
// dimension. A mismatched embed model would otherwise write garbage into the
// vector tables, which are created with a fixed column width.
type checkedEmbedder struct {
	inner core.Embedder
	dim   int
}

func newCheckedEmbedder(inner core.Embedder, dim int) *checkedEmbedder {
	return &checkedEmbedder{inner: inner, dim: dim}
}

func (e *checkedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if e.dim > 0 && len(vec) != e.dim {
		return nil, fmt.Errorf("embedding has %d dimensions, expected %d; check OLLAMA_EMBED_MODEL and OLLAMA_EMBED_DIM", len(vec), e.dim)
	}
	return vec, nil
}
