package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/jian131/agent-bds/internal/configs"
	"github.com/jian131/agent-bds/internal/core/domain"
	"github.com/jian131/agent-bds/internal/core/port"
)

// Gemini fronts the Gemini API for the two model-backed concerns:
// structured intent parsing and listing embeddings. One client serves
// both; the models differ.
type Gemini struct {
	client     *genai.Client
	model      string
	embedModel string
	logger     port.LoggerPort
}

// NewGemini connects the client. The key is required here; callers
// decide beforehand whether model features are enabled at all.
func NewGemini(ctx context.Context, cfg configs.GeminiConfig, logger port.LoggerPort) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("gemini: creating client: %w", err)
	}

	return &Gemini{
		client:     client,
		model:      cfg.Model,
		embedModel: cfg.EmbedModel,
		logger:     logger.WithFields(port.Fields{"component": "gemini"}),
	}, nil
}

// ParseIntent implements port.IntentLLMPort. The model answers in JSON
// (enforced via response MIME type); whatever decodes is canonicalized
// against the vocabulary, and anything else comes back as an error so
// the caller can fall back to rules.
func (g *Gemini) ParseIntent(ctx context.Context, query string, vocab port.IntentVocabulary) (domain.SearchIntent, error) {
	prompt := buildIntentPrompt(query, vocab)

	temperature := float32(0.1)
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      &temperature,
	})
	if err != nil {
		return domain.SearchIntent{}, fmt.Errorf("gemini: generate content: %w", err)
	}

	raw := result.Text()
	if raw == "" {
		return domain.SearchIntent{}, fmt.Errorf("gemini: model returned no text")
	}

	intent, err := decodeIntent(raw, vocab)
	if err != nil {
		g.logger.Warn("Model output did not decode", port.Fields{
			"query": query,
			"error": err.Error(),
		})
		return domain.SearchIntent{}, err
	}
	return intent, nil
}

// EmbedTexts implements port.EmbedderPort.
func (g *Gemini) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, contents, &genai.EmbedContentConfig{
		TaskType: "SEMANTIC_SIMILARITY",
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: embed content: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini: got %d embeddings for %d texts", len(result.Embeddings), len(texts))
	}

	embeddings := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		embeddings[i] = emb.Values
	}
	return embeddings, nil
}
