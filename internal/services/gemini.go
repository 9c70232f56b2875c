package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"alfredoptarigan/resume-match-bot/internal/models"
)

type GeminiService interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateText(ctx context.Context, prompt string, temperature float32) (string, error)
	GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error)
}

// maxEmbeddingInput keeps embedding requests under the model's token ceiling.
const maxEmbeddingInput = 40000

type geminiService struct {
	client     *genai.Client
	limiter    *rate.Limiter
	modelName  string
	embedModel string
}

// NewGeminiService builds the reasoning client. requestsPerMinute caps our own
// call rate so concurrent dimension analyses do not trip the API quota.
func NewGeminiService(apiKey string, requestsPerMinute int) (GeminiService, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if requestsPerMinute <= 0 {
		requestsPerMinute = 50
	}

	return &geminiService{
		client:     client,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 5),
		modelName:  "gemini-2.5-flash",
		embedModel: "text-embedding-004",
	}, nil
}

// GenerateEmbedding implements GeminiService.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if len(text) > maxEmbeddingInput {
		text = text[:maxEmbeddingInput]
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait interrupted: %w", err)
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// GenerateText implements GeminiService.
func (g *geminiService) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait interrupted: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("empty model response")
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty model response")
	}

	return text, nil
}

// GenerateTextWithRetry implements GeminiService. Retries back off linearly
// but never outlive the caller's deadline.
func (g *geminiService) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		result, err := g.GenerateText(ctx, prompt, temperature)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", models.NewCollaboratorError("gemini", fmt.Errorf("context cancelled: %w", ctx.Err()))
		}

		if attempt < maxRetries {
			log.Printf("⚠️  Gemini attempt %d failed: %v. Retrying...\n", attempt, err)
			select {
			case <-ctx.Done():
				return "", models.NewCollaboratorError("gemini", fmt.Errorf("context cancelled: %w", ctx.Err()))
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
	}

	return "", models.NewCollaboratorError("gemini", fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr))
}
