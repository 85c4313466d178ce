package port

import "context"

// EmbedderPort produces one embedding vector per input text, in order.
type EmbedderPort interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
