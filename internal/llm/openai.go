package llm

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIGenerator adapts an OpenAI-compatible server (including Ollama's /v1)
// to Generator and ModelLister.
type OpenAIGenerator struct {
	Client *openai.Client
}

var _ Backend = (*OpenAIGenerator)(nil)

// NewOpenAIGenerator builds a client for baseURL; apiKey may be empty for
// local servers.
func NewOpenAIGenerator(baseURL, apiKey string, hc *http.Client) *OpenAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if hc != nil {
		cfg.HTTPClient = hc
	}
	return &OpenAIGenerator{Client: openai.NewClientWithConfig(cfg)}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, model string, prompt string) (string, error) {
	resp, err := g.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.1,
		N:           1,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion")
	}
	return resp.Choices[0].Message.Content, nil
}

func (g *OpenAIGenerator) ListModelNames(ctx context.Context) ([]string, error) {
	models, err := g.Client.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(models.Models))
	for _, m := range models.Models {
		names = append(names, m.ID)
	}
	return names, nil
}
