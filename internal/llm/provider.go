package llm

import (
	"context"
	"fmt"

	"github.com/pmarkov/rectify/internal/model"
)

// Provider defines the interface for completion providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Correct issues a single surgical correction request and returns
	// the corrected sentence
	Correct(ctx context.Context, req CorrectionRequest) (*CorrectionResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CorrectionRequest contains the input for one correction call
type CorrectionRequest struct {
	// Prompt is the fully built correction prompt (see BuildMarkedPrompt
	// and BuildPrompt)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// CorrectionResponse contains the provider's output
type CorrectionResponse struct {
	// Sentence is the returned corrected sentence (may be empty when the
	// model produced nothing usable)
	Sentence string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds completion provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic (or a LiteLLM proxy key)
	APIKey string

	// BaseURL for custom endpoints (LiteLLM proxy, Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Model:     "",
		Timeout:   30,
		MaxTokens: 300,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(modelConfig model.LLMConfig) Config {
	return Config{
		Provider:  modelConfig.Provider,
		Model:     modelConfig.Model,
		APIKey:    modelConfig.APIKey,
		BaseURL:   modelConfig.BaseURL,
		Timeout:   modelConfig.Timeout,
		MaxTokens: modelConfig.MaxTokens,
	}
}

// systemPrompt is shared by all providers. The correction contract is
// enforced again after the call by the edit-magnitude validator, so the
// prompt only has to make the common case cheap, not bulletproof.
const systemPrompt = `You are a surgical fact-correction assistant. You fix at most one factual discrepancy in a single sentence against a trusted reference, changing as little text as possible. You never explain, never quote, and never return anything except the corrected sentence.`

// SystemPrompt returns the shared system prompt for correction requests.
func SystemPrompt() string {
	return systemPrompt
}

// BuildMarkedPrompt constructs a correction prompt with the suspicious
// span wrapped in explicit markers. The model may change only the marked
// span, and only if the reference contradicts it.
func BuildMarkedPrompt(markedSentence, reference, open, close string) string {
	return fmt.Sprintf(`One sentence from an AI-generated article contains a suspicious span wrapped in %s and %s.

Trusted reference sentence (ground truth):
%s

Sentence to correct:
%s

Rules:
1. If the marked span is factually wrong relative to the reference, replace it with the correct value.
2. If the marked span is already correct, keep it as it is.
3. Every character outside the marked span must stay byte-for-byte identical.
4. Return exactly one sentence: the corrected sentence WITHOUT the %s %s markers.
5. Return nothing else - no explanation, no quotes.`, open, close, reference, markedSentence, open, close)
}

// BuildPrompt constructs an unmarked minimal-edit correction prompt, used
// when a sentence diverges from its best source candidate but carries no
// numeric span to mark.
func BuildPrompt(sentence, reference string) string {
	return fmt.Sprintf(`One sentence from an AI-generated article may contain a factual discrepancy.

Trusted reference sentence (ground truth):
%s

Sentence to correct:
%s

Rules:
1. Fix only what the reference contradicts, with the smallest possible edit.
2. If nothing is wrong, return the sentence unchanged.
3. Return exactly one sentence and nothing else - no explanation, no quotes.`, reference, sentence)
}
