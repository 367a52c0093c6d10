package translation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-resty/resty/v2"
)

// SystranAuth is the content of the Systran auth file. Profiles map a
// language pair such as "enfr" to profile ids per model kind ("neural",
// "rule").
type SystranAuth struct {
	Endpoint string                       `json:"endpoint"`
	Key      string                       `json:"key"`
	Profiles map[string]map[string]string `json:"profiles"`
}

// DefaultSystranAuthFile returns $HOME/.systran/auth.json.
func DefaultSystranAuthFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".systran", "auth.json")
	}
	return filepath.Join(home, ".systran", "auth.json")
}

// LoadSystranAuth reads and checks an auth file.
func LoadSystranAuth(path string) (*SystranAuth, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Field: "auth_file", Err: err}
	}
	var auth SystranAuth
	if err := json.Unmarshal(data, &auth); err != nil {
		return nil, &ConfigError{Field: "auth_file", Err: fmt.Errorf("parsing %s: %w", path, err)}
	}
	if auth.Endpoint == "" {
		return nil, &ConfigError{Field: "auth_file", Err: errors.New("endpoint missing")}
	}
	if auth.Key == "" {
		return nil, &ConfigError{Field: "auth_file", Err: errors.New("key missing")}
	}
	return &auth, nil
}

// Profile returns the profile id for a language pair and model kind.
func (a *SystranAuth) Profile(sourceLang, targetLang, kind string) (string, bool) {
	byKind, ok := a.Profiles[sourceLang+targetLang]
	if !ok {
		return "", false
	}
	p, ok := byKind[kind]
	return p, ok && p != ""
}

// SystranBackend calls the Systran translation REST API.
type SystranBackend struct {
	auth   *SystranAuth
	kind   string
	client *resty.Client
}

type systranResponse struct {
	Outputs []struct {
		Output string `json:"output"`
	} `json:"outputs"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func newSystranFactory(kind string) Factory {
	return func(cfg *Config) (Backend, error) {
		return NewSystranBackend(cfg, kind)
	}
}

// NewSystranBackend loads the auth file and checks that a profile exists
// for the configured language pair.
func NewSystranBackend(cfg *Config, kind string) (*SystranBackend, error) {
	authFile := cfg.AuthFile
	if authFile == "" {
		authFile = DefaultSystranAuthFile()
	}
	auth, err := LoadSystranAuth(authFile)
	if err != nil {
		return nil, err
	}
	if _, ok := auth.Profile(cfg.SourceLang, cfg.TargetLang, kind); !ok {
		return nil, &ConfigError{
			Field: "auth_file",
			Err:   fmt.Errorf("no %s profile for %s->%s", kind, cfg.SourceLang, cfg.TargetLang),
		}
	}

	endpoint := auth.Endpoint
	if cfg.BaseURL != "" {
		endpoint = cfg.BaseURL
	}
	client := resty.New().SetBaseURL(endpoint)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &SystranBackend{auth: auth, kind: kind, client: client}, nil
}

// Name implements Backend.
func (b *SystranBackend) Name() string { return "systran-" + b.kind }

// Translate implements Backend.
func (b *SystranBackend) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	profile, ok := b.auth.Profile(sourceLang, targetLang, b.kind)
	if !ok {
		return "", Permanent(b.Name(), fmt.Errorf("no %s profile for %s->%s", b.kind, sourceLang, targetLang))
	}

	resp, err := b.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key":             b.auth.Key,
			"source":          sourceLang,
			"target":          targetLang,
			"profile":         profile,
			"input":           text,
			"backTranslation": "false",
		}).
		Get("")
	if err != nil {
		return "", transportError(ctx, b.Name(), err)
	}
	if resp.IsError() {
		return "", statusError(b.Name(), resp.StatusCode(), resp.String())
	}

	var out systranResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", Permanent(b.Name(), fmt.Errorf("malformed response: %w", err))
	}
	if out.Error != nil {
		return "", Permanent(b.Name(), errors.New(out.Error.Message))
	}

	parts := make([]string, 0, len(out.Outputs))
	for _, o := range out.Outputs {
		parts = append(parts, o.Output)
	}
	translation := strings.Join(parts, "\n")
	if translation == "" {
		return "", Permanent(b.Name(), ErrEmptyTranslation)
	}
	return translation, nil
}
