package translation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// GoogleTranslateURL is the Cloud Translation v2 REST endpoint.
const GoogleTranslateURL = "https://translation.googleapis.com/language/translate/v2"

// GoogleBackend calls Google Cloud Translation v2 with an API key. The
// model is "nmt" (neural) or "base" (phrase based).
type GoogleBackend struct {
	key    string
	model  string
	client *resty.Client
}

type googleResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText string `json:"translatedText"`
		} `json:"translations"`
	} `json:"data"`
}

func newGoogleFactory(model string) Factory {
	return func(cfg *Config) (Backend, error) {
		return NewGoogleBackend(cfg, model)
	}
}

// NewGoogleBackend creates a Cloud Translation backend for model.
func NewGoogleBackend(cfg *Config, model string) (*GoogleBackend, error) {
	if cfg.GoogleKey == "" {
		return nil, &ConfigError{Field: "google_key", Err: errors.New("Google API key not found")}
	}

	endpoint := GoogleTranslateURL
	if cfg.BaseURL != "" {
		endpoint = cfg.BaseURL
	}

	client := resty.New().SetBaseURL(endpoint)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &GoogleBackend{key: cfg.GoogleKey, model: model, client: client}, nil
}

// Name implements Backend.
func (b *GoogleBackend) Name() string {
	if b.model == "base" {
		return string(ModelGooglePhrase)
	}
	return string(ModelGoogleNeural)
}

// Translate implements Backend.
func (b *GoogleBackend) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	resp, err := b.client.R().
		SetContext(ctx).
		SetQueryParam("key", b.key).
		SetFormData(map[string]string{
			"q":      text,
			"source": sourceLang,
			"target": targetLang,
			"format": "text",
			"model":  b.model,
		}).
		Post("")
	if err != nil {
		return "", transportError(ctx, b.Name(), err)
	}
	if resp.IsError() {
		return "", statusError(b.Name(), resp.StatusCode(), resp.String())
	}

	var out googleResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", Permanent(b.Name(), fmt.Errorf("malformed response: %w", err))
	}
	if len(out.Data.Translations) == 0 || out.Data.Translations[0].TranslatedText == "" {
		return "", Permanent(b.Name(), ErrEmptyTranslation)
	}
	return out.Data.Translations[0].TranslatedText, nil
}
