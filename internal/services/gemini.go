package services

import (
	"context"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"alfredoptarigan/resumatch/internal/logger"
)

// maxEmbeddingInput caps embedding input at roughly 10000 tokens.
const maxEmbeddingInput = 40000

// LanguageModel is the text generation capability the analyzer depends on.
type LanguageModel interface {
	GenerateText(ctx context.Context, prompt string, temperature float32) (string, error)
	IsConfigured() bool
	Model() string
}

// Embedder turns text into a vector for the shortlist index.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type GeminiService interface {
	LanguageModel
	Embedder
}

type geminiService struct {
	client     *genai.Client
	modelName  string
	embedModel string
	log        *zap.Logger
}

// NewGeminiService creates the Gemini-backed model. An empty API key yields an
// unconfigured service that fails every call without touching the network.
func NewGeminiService(ctx context.Context, apiKey, modelName, embedModel string, log *zap.Logger) (GeminiService, error) {
	log = logger.OrNop(log)

	svc := &geminiService{
		modelName:  modelName,
		embedModel: embedModel,
		log:        log,
	}

	if apiKey == "" {
		log.Warn("⚠️ GEMINI_API_KEY not set, analysis runs without a model")
		return svc, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	svc.client = client

	log.Info("✅ Gemini client initialized", zap.String("model", modelName))

	return svc, nil
}

func (g *geminiService) IsConfigured() bool {
	return g.client != nil
}

func (g *geminiService) Model() string {
	return g.modelName
}

// GenerateEmbedding implements Embedder.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if g.client == nil {
		return nil, fmt.Errorf("gemini client is not configured")
	}

	text = truncateUTF8(text, maxEmbeddingInput)

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// GenerateText implements LanguageModel.
func (g *geminiService) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	if g.client == nil {
		return "", fmt.Errorf("gemini client is not configured")
	}

	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		g.log.Error("❌ Gemini API error", zap.Error(err))
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	g.log.Debug("📊 Gemini response received",
		zap.Int("length", len(text)),
		zap.String("preview", logger.TruncateForLog(text, 200)),
	)

	return text, nil
}

// truncateUTF8 cuts s to at most maxBytes without splitting a rune.
func truncateUTF8(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
