package translation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIBackend translates with an OpenAI chat model.
type OpenAIBackend struct {
	apiKey string
	model  string
	client *openai.Client
}

// NewOpenAIBackend creates an OpenAI backend from cfg.
func NewOpenAIBackend(cfg *Config) (Backend, error) {
	if cfg.OpenAIKey == "" {
		return nil, &ConfigError{Field: "openai_key", Err: errors.New("OpenAI API key not found")}
	}

	clientCfg := openai.DefaultConfig(cfg.OpenAIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	model := cfg.OpenAIModel
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAIBackend{
		apiKey: cfg.OpenAIKey,
		model:  model,
		client: openai.NewClientWithConfig(clientCfg),
	}, nil
}

// Name implements Backend.
func (b *OpenAIBackend) Name() string { return string(ModelOpenAI) }

// Client exposes the underlying client for model listing.
func (b *OpenAIBackend) Client() *openai.Client { return b.client }

// Translate implements Backend.
func (b *OpenAIBackend) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: llmSystemPrompt(sourceLang, targetLang),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		MaxTokens:   512,
		Temperature: 0.1,
	}

	resp, err := b.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", b.classify(ctx, err)
	}

	if len(resp.Choices) == 0 {
		return "", Permanent(b.Name(), ErrEmptyTranslation)
	}

	translation := strings.TrimSpace(resp.Choices[0].Message.Content)
	if translation == "" {
		return "", Permanent(b.Name(), ErrEmptyTranslation)
	}
	return translation, nil
}

func (b *OpenAIBackend) classify(ctx context.Context, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return statusError(b.Name(), apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return statusError(b.Name(), reqErr.HTTPStatusCode, fmt.Sprint(reqErr.Err))
	}
	return transportError(ctx, b.Name(), err)
}
