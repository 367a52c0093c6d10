package translation

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// GeminiBackend translates with a Gemini model through the Gemini API.
type GeminiBackend struct {
	model  string
	client *genai.Client
}

// NewGeminiBackend creates a Gemini backend from cfg.
func NewGeminiBackend(cfg *Config) (Backend, error) {
	if cfg.GeminiKey == "" {
		return nil, &ConfigError{Field: "gemini_key", Err: errors.New("Gemini API key not found")}
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.GeminiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	if cfg.Timeout > 0 {
		cc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, &ConfigError{Field: "gemini", Err: err}
	}

	model := cfg.GeminiModel
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiBackend{model: model, client: client}, nil
}

// Name implements Backend.
func (b *GeminiBackend) Name() string { return string(ModelGemini) }

// Translate implements Backend.
func (b *GeminiBackend) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	resp, err := b.client.Models.GenerateContent(ctx, b.model, genai.Text(text), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(llmSystemPrompt(sourceLang, targetLang), genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.1),
	})
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", statusError(b.Name(), apiErr.Code, apiErr.Message)
		}
		return "", transportError(ctx, b.Name(), err)
	}

	translation := strings.TrimSpace(resp.Text())
	if translation == "" {
		return "", Permanent(b.Name(), ErrEmptyTranslation)
	}
	return translation, nil
}
