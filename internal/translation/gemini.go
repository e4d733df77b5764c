package translation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiProvider implements Provider using the Gemini API
type GeminiProvider struct {
	client *genai.Client
	config *Config
	model  string
}

// NewGeminiProvider creates a new Gemini translation provider
func NewGeminiProvider(ctx context.Context, config *Config) (Provider, error) {
	if config.GeminiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.GeminiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	model := config.Model
	if model == "" {
		model = defaultGeminiModel
	}

	return &GeminiProvider{
		client: client,
		config: config,
		model:  model,
	}, nil
}

// Translate translates text into the target language
func (p *GeminiProvider) Translate(ctx context.Context, text, targetLang string) (string, error) {
	prompt := fmt.Sprintf("Translate the following Japanese text from a clip-art catalogue into %s. Respond with only the translation, nothing else.\n\n%s",
		languageName(targetLang), text)

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.3),
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", p.wrapError(err)
	}

	translated := strings.TrimSpace(resp.Text())
	if translated == "" {
		return "", &TranslationError{
			Provider:  p.Name(),
			Err:       fmt.Errorf("no translation returned"),
			Retryable: true,
		}
	}

	return translated, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// IsAvailable checks if the Gemini API is configured
func (p *GeminiProvider) IsAvailable() error {
	if p.config.GeminiKey == "" {
		return fmt.Errorf("Gemini API key not configured")
	}
	return nil
}

func (p *GeminiProvider) wrapError(err error) error {
	retryable := true

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			retryable = true
		case apiErr.Code >= 500:
			retryable = true
		case apiErr.Code >= 400:
			retryable = false
		}
	}

	return &TranslationError{
		Provider:  p.Name(),
		Err:       err,
		Retryable: retryable,
	}
}
