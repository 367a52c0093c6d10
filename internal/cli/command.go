package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/slotrans/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "slotrans <input> <source_language> <target_language> [output]",
		Short: "Translate annotated NLU training datasets",
		Long: `slotrans translates an NLU training dataset into another language and
places every annotated slot on the translated text.

Slot values and full utterances are translated independently through a
cached backend, then realigned by stemmed token matching. Slots that can
not be placed are reported at the end of the run.

Examples:
  slotrans dataset.json en fr                    # writes dataset_fr.json
  slotrans dataset.json en fr out.json -m sn     # Systran neural model
  slotrans --batch jobs.txt en de                # many datasets, one cache
  slotrans roundtrip dataset.json en fr          # en -> fr -> en
  slotrans --list-models`,
		Args:          cobra.MaximumNArgs(4),
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

// CreateRoundTripCommand creates the roundtrip subcommand. Its RunE is set
// by the caller.
func CreateRoundTripCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "roundtrip <input> <source_language> <pivot_language>",
		Short: "Translate a dataset to a pivot language and back",
		Long: `roundtrip translates a dataset from the source to the pivot language and
back again. Each direction has its own cache in the cache directory and its
own time statistics file next to the input.`,
		Args: cobra.ExactArgs(3),
	}
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.slotrans.yaml)")
	pf.CountVarP(&flags.Verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	pf.BoolVar(&flags.LogJSON, "log-json", false, "Log as JSON")

	pf.StringVarP(&flags.Model, "model", "m", flags.Model, "Translation model or alias (see --list-models)")
	pf.StringVar(&flags.AuthFile, "auth-file", "", "Systran auth file (default is $HOME/.systran/auth.json)")
	pf.StringVar(&flags.OpenAIModel, "openai-model", flags.OpenAIModel, "OpenAI chat model for the openai backend")
	pf.StringVar(&flags.GeminiModel, "gemini-model", flags.GeminiModel, "Gemini model for the gemini backend")
	pf.DurationVar(&flags.Timeout, "timeout", flags.Timeout, "Timeout of a single backend request")
	pf.IntVar(&flags.MaxRetries, "max-retries", flags.MaxRetries, "Retries of a transient backend failure (0 disables)")
	pf.DurationVar(&flags.RetryUnit, "retry-unit", flags.RetryUnit, "Backoff unit, retry n waits n units")
	pf.Uint32Var(&flags.BreakerFailures, "breaker-failures", flags.BreakerFailures, "Consecutive failures that open the circuit breaker (0 disables)")
	pf.DurationVar(&flags.BreakerTimeout, "breaker-timeout", flags.BreakerTimeout, "Time the circuit breaker stays open")

	pf.StringVar(&flags.CacheFile, "cache", "", "Cache file (.json, or .db/.sqlite for SQLite)")
	pf.StringVar(&flags.CacheDir, "cache-dir", flags.CacheDir, "Directory for per language pair caches when --cache is not set")
	pf.StringVar(&flags.StatsFile, "stats", "", "Write per phrase translation times to this file")
	pf.StringVar(&flags.ReviewFile, "review", "", "Write unassigned slots and failed phrases to this CSV file")
	pf.BoolVar(&flags.ArchiveCache, "archive-cache", false, "Move an existing cache file to an archive directory before the run")

	pf.IntVarP(&flags.Workers, "workers", "w", flags.Workers, "Utterances translated in parallel")
	pf.IntVar(&flags.MinIntents, "min-intents", 0, "Reject datasets with fewer intents")

	// Local flags
	cmd.Flags().StringVar(&flags.BatchFile, "batch", "", "Translate the datasets listed in this file (args: <source> <target>)")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List translation models and available OpenAI chat models")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	viper.BindPFlag("translation.model", pf.Lookup("model"))
	viper.BindPFlag("translation.auth_file", pf.Lookup("auth-file"))
	viper.BindPFlag("translation.openai_model", pf.Lookup("openai-model"))
	viper.BindPFlag("translation.gemini_model", pf.Lookup("gemini-model"))
	viper.BindPFlag("translation.timeout", pf.Lookup("timeout"))
	viper.BindPFlag("translation.max_retries", pf.Lookup("max-retries"))
	viper.BindPFlag("translation.retry_unit", pf.Lookup("retry-unit"))
	viper.BindPFlag("translation.breaker_failures", pf.Lookup("breaker-failures"))
	viper.BindPFlag("translation.breaker_timeout", pf.Lookup("breaker-timeout"))
	viper.BindPFlag("cache.file", pf.Lookup("cache"))
	viper.BindPFlag("cache.dir", pf.Lookup("cache-dir"))
	viper.BindPFlag("stats.file", pf.Lookup("stats"))
	viper.BindPFlag("review.file", pf.Lookup("review"))
	viper.BindPFlag("run.workers", pf.Lookup("workers"))
	viper.BindPFlag("run.min_intents", pf.Lookup("min-intents"))
}

// envKeyReplacer maps nested keys to variable names:
// translation.max_retries is read from SLOTRANS_TRANSLATION_MAX_RETRIES.
var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".slotrans" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".slotrans")
	}

	// Environment variables
	viper.SetEnvPrefix("SLOTRANS")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	// First check environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("translation.openai_key")
}

// GetGoogleKey retrieves the Google Cloud Translation key from environment or config
func GetGoogleKey() string {
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("translation.google_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("translation.gemini_key")
}
