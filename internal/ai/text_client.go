package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// TextClient calls the Gemini text model for caption writing and image
// prompt derivation.
type TextClient struct {
	client *genai.Client
	model  string
	log    zerolog.Logger
}

// NewTextClient builds the Gemini client up front so a missing credential
// fails at startup instead of inside the first wizard action.
func NewTextClient(ctx context.Context, apiKey, model string, log zerolog.Logger) (*TextClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}
	return &TextClient{client: client, model: model, log: log}, nil
}

// Generate runs one text completion and returns the cleaned model output.
func (c *TextClient) Generate(ctx context.Context, prompt string, temperature float32, maxTokens int32) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: maxTokens,
	}

	start := time.Now()
	c.log.Debug().Str("stage", "gemini_start").Str("model", c.model).Msg("text generation")
	res, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		c.log.Warn().Str("stage", "gemini_fail").Str("model", c.model).Err(err).Msg("text generation")
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	c.log.Debug().Str("stage", "gemini_done").Str("model", c.model).
		Int64("ms", time.Since(start).Milliseconds()).Msg("text generation")

	text, err := CleanText(res.Text())
	if err != nil {
		return "", fmt.Errorf("gemini response: %w", err)
	}
	return text, nil
}
