package port

import (
	"context"

	"github.com/jian131/agent-bds/internal/core/domain"
)

// IntentVocabulary constrains the language model to values the rest of
// the pipeline understands. Cities and districts use canonical
// Vietnamese spellings.
type IntentVocabulary struct {
	Cities        []string
	Districts     map[string][]string
	PropertyTypes []string
}

// IntentLLMPort parses a free-form query into a structured intent.
// Implementations return an error when the model is unreachable or
// produces unusable output; callers fall back to rule-based parsing.
type IntentLLMPort interface {
	ParseIntent(ctx context.Context, query string, vocab IntentVocabulary) (domain.SearchIntent, error)
}
