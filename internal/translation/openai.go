package translation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = openai.GPT4oMini

// OpenAIProvider implements Provider using the OpenAI chat completion API
type OpenAIProvider struct {
	client *openai.Client
	config *Config
	model  string
}

// NewOpenAIProvider creates a new OpenAI translation provider
func NewOpenAIProvider(config *Config) (Provider, error) {
	if config.OpenAIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	model := config.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	return &OpenAIProvider{
		client: openai.NewClient(config.OpenAIKey),
		config: config,
		model:  model,
	}, nil
}

// Translate translates text into the target language via chat completion
func (p *OpenAIProvider) Translate(ctx context.Context, text, targetLang string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf("You are a translator for a Japanese clip-art catalogue. Translate the user's Japanese text into %s. Respond with only the translation, nothing else.", languageName(targetLang)),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		MaxTokens:   500,
		Temperature: 0.3,
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", p.wrapError(err)
	}

	if len(resp.Choices) == 0 {
		return "", &TranslationError{
			Provider:  p.Name(),
			Err:       fmt.Errorf("no translation returned"),
			Retryable: true,
		}
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the OpenAI API is configured
func (p *OpenAIProvider) IsAvailable() error {
	if p.config.OpenAIKey == "" {
		return fmt.Errorf("OpenAI API key not configured")
	}
	return nil
}

// wrapError classifies an API failure. Rate limits and server-side errors
// are retryable; other client errors (auth, bad request) are not.
func (p *OpenAIProvider) wrapError(err error) error {
	retryable := true

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			retryable = true
		case apiErr.HTTPStatusCode >= 500:
			retryable = true
		case apiErr.HTTPStatusCode >= 400:
			retryable = false
		}
	}

	return &TranslationError{
		Provider:  p.Name(),
		Err:       err,
		Retryable: retryable,
	}
}

// languageName maps common language codes to names for the prompt. Unknown
// codes pass through unchanged; the models handle them fine.
func languageName(code string) string {
	switch strings.ToLower(code) {
	case "", "en":
		return "English"
	case "de":
		return "German"
	case "fr":
		return "French"
	case "es":
		return "Spanish"
	default:
		return code
	}
}
