package models

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Lister handles listing available OpenAI models
type Lister struct {
	apiKey string
	client *openai.Client
}

// NewLister creates a new model lister
func NewLister(apiKey string) *Lister {
	return &Lister{
		apiKey: apiKey,
		client: openai.NewClient(apiKey),
	}
}

// ListAvailableModels lists the OpenAI models usable for translation
func (l *Lister) ListAvailableModels() error {
	if l.apiKey == "" {
		return fmt.Errorf("OpenAI API key not found. Set OPENAI_API_KEY environment variable or configure in .iie.yaml")
	}

	// List models
	ctx := context.Background()
	models, err := l.client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	// Only chat completion models can translate; TTS, image and embedding
	// models are counted but not listed.
	chatModels := []string{}
	otherModels := 0

	for _, model := range models.Models {
		modelID := model.ID
		if strings.Contains(modelID, "gpt") || strings.Contains(modelID, "chat") {
			chatModels = append(chatModels, modelID)
		} else {
			otherModels++
		}
	}

	sort.Strings(chatModels)

	fmt.Println("OpenAI models usable for translation (pass one via --model):")
	if len(chatModels) == 0 {
		fmt.Println("  No chat models found")
	} else {
		for _, model := range chatModels {
			fmt.Printf("  %s\n", model)
		}
	}

	if otherModels > 0 {
		fmt.Printf("\n%d further models (audio, image, embeddings) are not usable here\n", otherModels)
	}

	return nil
}
