// Package embed produces fixed-width text embeddings for semantic matching.
package embed

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Embedder converts text into a vector of the configured dimension.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type embeddingClient interface {
	CreateEmbeddings(ctx context.Context, req openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// OpenAIEmbedder calls the OpenAI embeddings API. Input text is truncated
// to maxChars before the request so oversized résumés cannot blow the
// model's context window.
type OpenAIEmbedder struct {
	client   embeddingClient
	model    openai.EmbeddingModel
	dim      int
	maxChars int
	log      *zap.Logger
}

var _ Embedder = (*OpenAIEmbedder)(nil)

// NewOpenAIEmbedder creates an embedder producing dim-wide vectors.
func NewOpenAIEmbedder(client *openai.Client, model string, dim, maxChars int, log *zap.Logger) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		client:   client,
		model:    openai.EmbeddingModel(model),
		dim:      dim,
		maxChars: maxChars,
		log:      log,
	}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if truncated := Truncate(text, e.maxChars); len(truncated) < len(text) {
		e.log.Warn("truncating text before embedding",
			zap.Int("original_chars", len(text)),
			zap.Int("limit", e.maxChars))
		text = truncated
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: e.model,
		Input: []string{text},
	})
	if err != nil {
		return nil, &EmbeddingError{Message: "request failed", Cause: err}
	}
	if len(resp.Data) == 0 {
		return nil, &EmbeddingError{Message: "response contained no embeddings"}
	}

	vec := resp.Data[0].Embedding
	if len(vec) != e.dim {
		return nil, &EmbeddingError{
			Message: "unexpected embedding dimension",
			Cause:   &dimensionMismatch{got: len(vec), want: e.dim},
		}
	}
	return vec, nil
}

type dimensionMismatch struct {
	got, want int
}

func (d *dimensionMismatch) Error() string {
	return fmt.Sprintf("got %d dimensions, want %d", d.got, d.want)
}

// Truncate limits s to at most limit characters, cutting on a rune boundary
// so the result stays valid UTF-8. A non-positive limit disables truncation.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
