package gemini

import (
	"context"
	"fmt"
	"strings"

	"finance-rag-be/pkg/llm"

	"google.golang.org/genai"
)

type GeminiProvider struct {
	client      *genai.Client
	modelName   string
	temperature float64
}

var _ llm.LLMProvider = &GeminiProvider{}

func NewGeminiProvider(client *genai.Client, modelName string, temperature float64) *GeminiProvider {
	return &GeminiProvider{
		client:      client,
		modelName:   modelName,
		temperature: temperature,
	}
}

// Chat folds system messages into the system instruction; the rest become
// user/model turns.
func (g *GeminiProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.NewOptions(g.temperature, opts...)

	model := g.modelName
	if options.Model != "" {
		model = options.Model
	}

	system, contents := toContents(history)
	if len(contents) == 0 {
		return "", fmt.Errorf("gemini chat: no user content")
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(options.Temperature)),
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if options.JSONMode {
		cfg.ResponseMIMEType = "application/json"
	}
	if options.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(options.MaxTokens)
	}

	result, err := g.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return text, nil
}

func (g *GeminiProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return g.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

func toContents(history []llm.Message) (string, []*genai.Content) {
	var system []string
	contents := make([]*genai.Content, 0, len(history))

	for _, msg := range history {
		switch msg.Role {
		case llm.RoleSystem:
			system = append(system, msg.Content)
		case llm.RoleAssistant, "model":
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}

	return strings.Join(system, "\n\n"), contents
}
