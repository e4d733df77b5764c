package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roostaq/irasutoya-images-english/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "iie",
		Short: "Irasutoya catalogue enrichment",
		Long: `iie enriches the irasutoya illustration catalogue with English text
and a local mirror of every image, ordered by publication date.

Runs are resumable: progress is checkpointed to the output document, and
records that are already translated and downloaded are skipped on the
next invocation.

Examples:
  iie                             # Translate and download everything pending
  iie --translate                 # Translation only
  iie --download --limit 100      # Download the first 100 pending images
  iie --provider gemini           # Translate with Gemini instead of OpenAI
  iie --dry-run                   # Report pending work without doing it`,
		Args:    cobra.NoArgs,
		Version: internal.Version,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.iie.yaml)")

	// Mode flags
	cmd.Flags().BoolVarP(&flags.Translate, "translate", "t", false, "Translate record fields (default: translate and download)")
	cmd.Flags().BoolVarP(&flags.Download, "download", "d", false, "Download record images (default: translate and download)")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "Report pending work without calling providers or writing files")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List available OpenAI models for the current API key")

	// Path flags
	cmd.Flags().StringVarP(&flags.OutputDir, "output-dir", "o", flags.OutputDir, "Directory for the catalogue, the enriched document and the images")
	cmd.Flags().StringVar(&flags.InputPath, "input", "", "Upstream catalogue path (default: <output-dir>/irasutoya.json)")
	cmd.Flags().StringVar(&flags.OutputPath, "output", "", "Enriched document path (default: <output-dir>/irasutoya_with_en.json)")
	cmd.Flags().StringVar(&flags.CatalogURL, "catalog-url", flags.CatalogURL, "URL to fetch the catalogue from when the input file is missing")

	// Translation flags
	cmd.Flags().StringVar(&flags.Provider, "provider", flags.Provider, "Translation provider: openai or gemini")
	cmd.Flags().StringVar(&flags.Model, "model", "", "Model to use (default depends on provider)")
	cmd.Flags().StringVar(&flags.TargetLang, "target-lang", flags.TargetLang, "Target language code for translations")
	cmd.Flags().Float64Var(&flags.TranslateQPS, "translate-qps", flags.TranslateQPS, "Maximum translation requests per second")
	cmd.Flags().BoolVar(&flags.TranslationCache, "translation-cache", flags.TranslationCache, "Cache translations in a local database")
	cmd.Flags().StringVar(&flags.CachePath, "cache-path", "", "Translation cache path (default: <output-dir>/translations.db)")

	// Run tuning flags
	cmd.Flags().IntVarP(&flags.MaxRetries, "retries", "r", flags.MaxRetries, "Retries per operation after the first attempt")
	cmd.Flags().IntVar(&flags.Workers, "workers", flags.Workers, "Concurrent record workers")
	cmd.Flags().IntVar(&flags.CheckpointEvery, "checkpoint-every", flags.CheckpointEvery, "Save the enriched document after this many processed records")
	cmd.Flags().IntVar(&flags.Limit, "limit", 0, "Process at most this many pending records (0 = no limit)")

	// Logging flags
	cmd.Flags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn or error")
	cmd.Flags().StringVar(&flags.LogFormat, "log-format", flags.LogFormat, "Log format: text or json")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("paths.output_dir", cmd.Flags().Lookup("output-dir"))
	viper.BindPFlag("paths.catalog_url", cmd.Flags().Lookup("catalog-url"))
	viper.BindPFlag("translation.provider", cmd.Flags().Lookup("provider"))
	viper.BindPFlag("translation.model", cmd.Flags().Lookup("model"))
	viper.BindPFlag("translation.target_lang", cmd.Flags().Lookup("target-lang"))
	viper.BindPFlag("translation.qps", cmd.Flags().Lookup("translate-qps"))
	viper.BindPFlag("run.retries", cmd.Flags().Lookup("retries"))
	viper.BindPFlag("run.workers", cmd.Flags().Lookup("workers"))
	viper.BindPFlag("run.checkpoint_every", cmd.Flags().Lookup("checkpoint-every"))
	viper.BindPFlag("log.level", cmd.Flags().Lookup("log-level"))
	viper.BindPFlag("log.format", cmd.Flags().Lookup("log-format"))
}

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

		// Search config in home directory with name ".iie" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".iie")
	}

	// Environment variables
	viper.SetEnvPrefix("IIE")
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

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	// First check environment variable
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("translation.gemini_key")
}
