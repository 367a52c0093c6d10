package cli

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"codeberg.org/snonux/slotrans/internal/translation"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile      string
	BatchFile    string
	ListModels   bool
	ArchiveCache bool
	Verbosity    int
	LogJSON      bool

	// Translation flags
	Model           string
	AuthFile        string
	OpenAIModel     string
	GeminiModel     string
	Timeout         time.Duration
	MaxRetries      int
	RetryUnit       time.Duration
	BreakerFailures uint32
	BreakerTimeout  time.Duration

	// Cache and statistics
	CacheFile string
	CacheDir  string
	StatsFile string

	// ReviewFile receives unassigned slots and failed phrases as CSV
	ReviewFile string

	// Run flags
	Workers    int
	MinIntents int
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	defaults := translation.DefaultConfig()
	return &Flags{
		Model:           defaults.Model,
		OpenAIModel:     defaults.OpenAIModel,
		GeminiModel:     defaults.GeminiModel,
		Timeout:         defaults.Timeout,
		MaxRetries:      defaults.MaxRetries,
		RetryUnit:       defaults.RetryUnit,
		BreakerFailures: defaults.BreakerFailures,
		BreakerTimeout:  defaults.BreakerTimeout,
		CacheDir:        DefaultCacheDir(),
		Workers:         1,
	}
}

// DefaultCacheDir returns $HOME/.cache/slotrans.
func DefaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".slotrans-cache"
	}
	return filepath.Join(home, ".cache", "slotrans")
}

// Resolve copies the effective values from viper into f, so that config
// file and environment values apply to every flag the user did not set.
func (f *Flags) Resolve() {
	f.Model = viper.GetString("translation.model")
	f.AuthFile = viper.GetString("translation.auth_file")
	f.OpenAIModel = viper.GetString("translation.openai_model")
	f.GeminiModel = viper.GetString("translation.gemini_model")
	f.Timeout = viper.GetDuration("translation.timeout")
	f.MaxRetries = viper.GetInt("translation.max_retries")
	f.RetryUnit = viper.GetDuration("translation.retry_unit")
	f.BreakerFailures = viper.GetUint32("translation.breaker_failures")
	f.BreakerTimeout = viper.GetDuration("translation.breaker_timeout")
	f.CacheFile = viper.GetString("cache.file")
	f.CacheDir = viper.GetString("cache.dir")
	f.StatsFile = viper.GetString("stats.file")
	f.ReviewFile = viper.GetString("review.file")
	f.Workers = viper.GetInt("run.workers")
	f.MinIntents = viper.GetInt("run.min_intents")
}

// BackendConfig builds the translation backend configuration for one
// language pair.
func (f *Flags) BackendConfig(sourceLang, targetLang string) *translation.Config {
	return &translation.Config{
		Model:           f.Model,
		SourceLang:      sourceLang,
		TargetLang:      targetLang,
		AuthFile:        f.AuthFile,
		GoogleKey:       GetGoogleKey(),
		OpenAIKey:       GetOpenAIKey(),
		OpenAIModel:     f.OpenAIModel,
		GeminiKey:       GetGeminiKey(),
		GeminiModel:     f.GeminiModel,
		Timeout:         f.Timeout,
		MaxRetries:      f.MaxRetries,
		RetryUnit:       f.RetryUnit,
		BreakerFailures: f.BreakerFailures,
		BreakerTimeout:  f.BreakerTimeout,
	}
}
