package embedding

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

type GeminiProvider struct {
	client    *genai.Client
	model     string
	dimension int
}

// NewGeminiProvider embeds with a shared genai client. dimension > 0 asks the
// API for a truncated vector and is checked on every response.
func NewGeminiProvider(client *genai.Client, model string, dimension int) EmbeddingProvider {
	if model == "" {
		model = "text-embedding-004"
	}
	return &GeminiProvider{
		client:    client,
		model:     model,
		dimension: dimension,
	}
}

func (p *GeminiProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	cfg := &genai.EmbedContentConfig{TaskType: taskType}
	if p.dimension > 0 {
		dim := int32(p.dimension)
		cfg.OutputDimensionality = &dim
	}

	result, err := p.client.Models.EmbedContent(
		ctx,
		p.model,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		cfg,
	)
	if err != nil {
		return nil, fmt.Errorf("gemini embed content: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("no embedding returned from gemini")
	}

	values := result.Embeddings[0].Values
	if p.dimension > 0 && len(values) != p.dimension {
		return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d", p.dimension, len(values))
	}

	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{Values: values},
	}, nil
}
