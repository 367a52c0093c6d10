package translation

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"
)

// Model identifies a registered backend variant.
type Model string

const (
	ModelGoogleNeural  Model = "google-neural"
	ModelGooglePhrase  Model = "google-phrase"
	ModelSystranNeural Model = "systran-neural"
	ModelSystranRule   Model = "systran-rule"
	ModelOpenAI        Model = "openai"
	ModelGemini        Model = "gemini"
	ModelDummy         Model = "dummy"
	ModelNoop          Model = "noop"
)

// Factory builds a vendor backend from cfg. Factories validate credentials
// and return a *ConfigError when they are missing.
type Factory func(cfg *Config) (Backend, error)

// ModelInfo describes a registered model.
type ModelInfo struct {
	Name        Model
	Aliases     []string
	Description string
}

type registration struct {
	info    ModelInfo
	factory Factory
}

var (
	registryMu sync.RWMutex
	registry   = map[Model]registration{}
	aliases    = map[string]Model{}
)

func init() {
	Register(ModelGoogleNeural, "Google Cloud Translation, neural model (nmt)", newGoogleFactory("nmt"), "gn")
	Register(ModelGooglePhrase, "Google Cloud Translation, phrase based model (base)", newGoogleFactory("base"), "gp")
	Register(ModelSystranNeural, "Systran REST API, neural profile", newSystranFactory("neural"), "sn")
	Register(ModelSystranRule, "Systran REST API, rule based profile", newSystranFactory("rule"), "sr")
	Register(ModelOpenAI, "OpenAI chat completion", NewOpenAIBackend, "oa")
	Register(ModelGemini, "Google Gemini", NewGeminiBackend, "gm")
	Register(ModelDummy, "Upper-cases the input, for testing", func(*Config) (Backend, error) { return Dummy{}, nil })
	Register(ModelNoop, "Returns the input unchanged, for testing", func(*Config) (Backend, error) { return Noop{}, nil })
}

// Register adds or replaces a model. Adding a vendor means registering it
// here, callers never switch on vendor identity.
func Register(model Model, description string, factory Factory, alias ...string) {
	registryMu.Lock()
	defer registryMu.Unlock()

	registry[model] = registration{
		info:    ModelInfo{Name: model, Aliases: alias, Description: description},
		factory: factory,
	}
	for _, a := range alias {
		aliases[a] = model
	}
}

// ParseModel resolves a model name or alias. An empty name selects the
// default model.
func ParseModel(name string) (Model, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ModelGoogleNeural, nil
	}

	registryMu.RLock()
	defer registryMu.RUnlock()

	if _, ok := registry[Model(name)]; ok {
		return Model(name), nil
	}
	if m, ok := aliases[name]; ok {
		return m, nil
	}
	return "", &ConfigError{Field: "model", Err: fmt.Errorf("%w: %q", ErrUnknownModel, name)}
}

// Models lists registered models sorted by name.
func Models() []ModelInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()

	infos := make([]ModelInfo, 0, len(registry))
	for _, r := range registry {
		infos = append(infos, r.info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// New validates cfg, builds the vendor backend for cfg.Model and wraps it
// with the circuit breaker and retry decorators.
func New(cfg *Config) (Backend, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, &ConfigError{Field: "config", Err: err}
	}
	for field, code := range map[string]string{"source_lang": cfg.SourceLang, "target_lang": cfg.TargetLang} {
		if _, err := language.Parse(code); err != nil {
			return nil, &ConfigError{Field: field, Err: err}
		}
	}

	model, err := ParseModel(cfg.Model)
	if err != nil {
		return nil, err
	}

	registryMu.RLock()
	reg := registry[model]
	registryMu.RUnlock()

	backend, err := reg.factory(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.BreakerFailures > 0 {
		backend = WithBreaker(backend, cfg.BreakerFailures, cfg.BreakerTimeout)
	}
	if cfg.MaxRetries > 0 {
		backend = WithRetry(backend, cfg.MaxRetries, cfg.RetryUnit)
	}
	return backend, nil
}
