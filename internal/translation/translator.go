package translation

import (
	"context"
	"fmt"
)

// Provider defines the interface for machine translation backends
type Provider interface {
	// Translate translates text into the target language
	Translate(ctx context.Context, text, targetLang string) (string, error)

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured
	IsAvailable() error
}

// Config holds common configuration for translation providers
type Config struct {
	Provider   string // Provider name: "openai" or "gemini"
	Model      string // Model override; empty uses the provider default
	TargetLang string // BCP 47 language code, e.g. "en"

	OpenAIKey string
	GeminiKey string
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Provider:   "openai",
		TargetLang: "en",
	}
}

// NewProvider creates the appropriate translation provider based on configuration
func NewProvider(ctx context.Context, config *Config) (Provider, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case "openai":
		if config.OpenAIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		return NewOpenAIProvider(config)

	case "gemini":
		if config.GeminiKey == "" {
			return nil, fmt.Errorf("Gemini API key is required")
		}
		return NewGeminiProvider(ctx, config)

	default:
		return nil, fmt.Errorf("unknown translation provider: %s", config.Provider)
	}
}

// TranslationError reports a failed translation of a single field. Transient
// failures (rate limits, server errors, network trouble) may be retried;
// permanent ones (bad request, auth) may not.
type TranslationError struct {
	Provider  string
	Field     string
	Err       error
	Retryable bool
}

func (e *TranslationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: translate %s: %v", e.Provider, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *TranslationError) Unwrap() error { return e.Err }

// Transient reports whether the failure is worth retrying.
func (e *TranslationError) Transient() bool { return e.Retryable }
