package memory

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Embedding models have a small context; anything longer is cut at a token
// boundary before it reaches the embedder.
const embedTokenLimit = 400

var (
	tk     *tiktoken.Tiktoken
	tkOnce sync.Once
)

func truncateForEmbedding(text string) string {
	tkOnce.Do(func() {
		// Errors leave tk nil and disable truncation (offline BPE data)
		tk, _ = tiktoken.GetEncoding("cl100k_base")
	})
	if tk == nil {
		return text
	}

	ids := tk.Encode(text, nil, nil)
	if len(ids) <= embedTokenLimit {
		return text
	}
	return tk.Decode(ids[:embedTokenLimit])
}
