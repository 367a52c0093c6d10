package translation

import (
	"errors"
	"testing"
)

func TestParseModel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Model
		wantErr bool
	}{
		{"empty selects default", "", ModelGoogleNeural, false},
		{"full name", "systran-rule", ModelSystranRule, false},
		{"alias gn", "gn", ModelGoogleNeural, false},
		{"alias gp", "gp", ModelGooglePhrase, false},
		{"alias sn", "sn", ModelSystranNeural, false},
		{"alias sr", "sr", ModelSystranRule, false},
		{"upper case", "DUMMY", ModelDummy, false},
		{"unknown", "babelfish", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseModel(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				if !IsConfigError(err) || !errors.Is(err, ErrUnknownModel) {
					t.Errorf("Expected ConfigError wrapping ErrUnknownModel, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseModel(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestModels(t *testing.T) {
	models := Models()
	if len(models) < 8 {
		t.Fatalf("Expected at least 8 registered models, got %d", len(models))
	}
	for i := 1; i < len(models); i++ {
		if models[i-1].Name >= models[i].Name {
			t.Errorf("Models not sorted: %q before %q", models[i-1].Name, models[i].Name)
		}
	}
}

func TestNewConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
	}{
		{"missing languages", &Config{Model: "dummy"}},
		{"bad source language", &Config{Model: "dummy", SourceLang: "not a language", TargetLang: "fr"}},
		{"unknown model", &Config{Model: "babelfish", SourceLang: "en", TargetLang: "fr"}},
		{"google without key", &Config{Model: "gn", SourceLang: "en", TargetLang: "fr"}},
		{"openai without key", &Config{Model: "openai", SourceLang: "en", TargetLang: "fr"}},
		{"gemini without key", &Config{Model: "gemini", SourceLang: "en", TargetLang: "fr"}},
		{"systran without auth file", &Config{Model: "sn", SourceLang: "en", TargetLang: "fr", AuthFile: "/nonexistent/auth.json"}},
		{"negative retries", &Config{Model: "dummy", SourceLang: "en", TargetLang: "fr", MaxRetries: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, err := New(tt.config)
			if err == nil {
				t.Fatalf("Expected error, got backend %v", backend)
			}
			if !IsConfigError(err) {
				t.Errorf("Expected ConfigError, got %T: %v", err, err)
			}
		})
	}
}

func TestNewWrapsDecorators(t *testing.T) {
	cfg := &Config{
		Model:           "dummy",
		SourceLang:      "en",
		TargetLang:      "fr",
		MaxRetries:      2,
		BreakerFailures: 3,
	}
	backend, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := backend.(*retrying); !ok {
		t.Errorf("Expected retry decorator outermost, got %T", backend)
	}
	if backend.Name() != "dummy" {
		t.Errorf("Name() = %q, want dummy", backend.Name())
	}

	cfg.MaxRetries = 0
	cfg.BreakerFailures = 0
	backend, err = New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := backend.(Dummy); !ok {
		t.Errorf("Expected bare Dummy backend, got %T", backend)
	}
}
