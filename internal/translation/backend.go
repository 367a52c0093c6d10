package translation

import (
	"context"
	"time"
)

// Backend translates text between two languages.
type Backend interface {
	// Translate returns text translated from sourceLang to targetLang.
	// Errors are *BackendError values classified as retryable or permanent.
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)

	// Name returns the backend name used in logs and errors
	Name() string
}

// Config holds everything needed to construct a backend via New.
type Config struct {
	Model      string `validate:"required"`
	SourceLang string `validate:"required"`
	TargetLang string `validate:"required"`

	// Systran
	AuthFile string

	// Google Cloud Translation
	GoogleKey string

	// OpenAI
	OpenAIKey   string
	OpenAIModel string

	// Gemini
	GeminiKey   string
	GeminiModel string

	// BaseURL overrides the vendor endpoint (proxies, tests).
	BaseURL string

	Timeout         time.Duration `validate:"gte=0"`
	MaxRetries      int           `validate:"gte=0"`
	RetryUnit       time.Duration `validate:"gte=0"`
	BreakerFailures uint32
	BreakerTimeout  time.Duration `validate:"gte=0"`
}

// DefaultConfig returns the defaults used by the CLI.
func DefaultConfig() *Config {
	return &Config{
		Model:           string(ModelGoogleNeural),
		OpenAIModel:     "gpt-4o-mini",
		GeminiModel:     "gemini-2.0-flash",
		Timeout:         60 * time.Second,
		MaxRetries:      5,
		RetryUnit:       time.Second,
		BreakerFailures: 10,
		BreakerTimeout:  30 * time.Second,
	}
}
