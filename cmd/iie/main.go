package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roostaq/irasutoya-images-english/internal/catalog"
	"github.com/roostaq/irasutoya-images-english/internal/cli"
	"github.com/roostaq/irasutoya-images-english/internal/image"
	"github.com/roostaq/irasutoya-images-english/internal/logging"
	"github.com/roostaq/irasutoya-images-english/internal/models"
	"github.com/roostaq/irasutoya-images-english/internal/processor"
	"github.com/roostaq/irasutoya-images-english/internal/retry"
	"github.com/roostaq/irasutoya-images-english/internal/translation"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, flags)
	}

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, flags *cli.Flags) error {
	// Use config file values if not overridden by flags
	applyConfigOverrides(cmd, flags)

	// Handle --list-models flag
	if flags.ListModels {
		lister := models.NewLister(cli.GetOpenAIKey())
		return lister.ListAvailableModels()
	}

	logger := logging.New(logging.Options{
		Level:  flags.LogLevel,
		Format: flags.LogFormat,
	})

	// An interrupt stops new work; everything completed so far is saved
	// before the process exits.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	translate := flags.Translate
	download := flags.Download
	if !translate && !download {
		translate = true
		download = true
	}

	store := catalog.NewStore(flags.ResolvedOutputPath(), logger)
	policy := retry.NewPolicy(flags.MaxRetries, logger)

	imageCfg := image.DefaultConfig()
	imageCfg.BaseDir = flags.OutputDir
	fetcher := image.NewFetcher(imageCfg, policy, logger)

	// A dry run never calls the provider, so no API key is needed for it.
	var translator processor.Translator
	if translate && !flags.DryRun {
		worker, closeCache, err := buildTranslator(ctx, flags, policy, logger)
		if err != nil {
			return err
		}
		defer closeCache()
		translator = worker
	}

	proc := processor.New(processor.Config{
		Translate:       flags.Translate,
		Download:        flags.Download,
		InputPath:       flags.ResolvedInputPath(),
		CatalogURL:      flags.CatalogURL,
		Workers:         flags.Workers,
		CheckpointEvery: flags.CheckpointEvery,
		Limit:           flags.Limit,
		DryRun:          flags.DryRun,
	}, store, translator, fetcher, logger)

	summary, runErr := proc.Run(ctx)
	if summary != nil {
		fmt.Println(renderSummary(summary))
	}
	if runErr != nil {
		return runErr
	}

	// Per-record failures do not fail the process; the next run retries them.
	if !summary.Clean() {
		fmt.Fprintf(os.Stderr, "%d of %d records had failures; rerun to retry them\n", summary.Failed, summary.Total)
	}
	return nil
}

func applyConfigOverrides(cmd *cobra.Command, flags *cli.Flags) {
	stringOverrides := []struct {
		flag string
		key  string
		dst  *string
	}{
		{"output-dir", "paths.output_dir", &flags.OutputDir},
		{"catalog-url", "paths.catalog_url", &flags.CatalogURL},
		{"provider", "translation.provider", &flags.Provider},
		{"model", "translation.model", &flags.Model},
		{"target-lang", "translation.target_lang", &flags.TargetLang},
		{"log-level", "log.level", &flags.LogLevel},
		{"log-format", "log.format", &flags.LogFormat},
	}
	for _, o := range stringOverrides {
		if !cmd.Flags().Changed(o.flag) && viper.IsSet(o.key) {
			*o.dst = viper.GetString(o.key)
		}
	}

	intOverrides := []struct {
		flag string
		key  string
		dst  *int
	}{
		{"retries", "run.retries", &flags.MaxRetries},
		{"workers", "run.workers", &flags.Workers},
		{"checkpoint-every", "run.checkpoint_every", &flags.CheckpointEvery},
	}
	for _, o := range intOverrides {
		if !cmd.Flags().Changed(o.flag) && viper.IsSet(o.key) {
			*o.dst = viper.GetInt(o.key)
		}
	}

	if !cmd.Flags().Changed("translate-qps") && viper.IsSet("translation.qps") {
		flags.TranslateQPS = viper.GetFloat64("translation.qps")
	}
}

// buildTranslator wires the provider, the persistent cache and the
// rate-limited worker. The returned closer releases the cache.
func buildTranslator(ctx context.Context, flags *cli.Flags, policy *retry.Policy, logger *slog.Logger) (*translation.Worker, func(), error) {
	cfg := &translation.Config{
		Provider:   flags.Provider,
		Model:      flags.Model,
		TargetLang: flags.TargetLang,
		OpenAIKey:  cli.GetOpenAIKey(),
		GeminiKey:  cli.GetGeminiKey(),
	}

	provider, err := translation.NewProvider(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := provider.IsAvailable(); err != nil {
		return nil, nil, fmt.Errorf("%s provider not available: %w", provider.Name(), err)
	}

	var cache *translation.Cache
	closeCache := func() {}
	if flags.TranslationCache {
		cache, err = translation.OpenCache(flags.ResolvedCachePath())
		if err != nil {
			return nil, nil, fmt.Errorf("open translation cache: %w", err)
		}
		closeCache = func() {
			if err := cache.Close(); err != nil {
				logger.Warn("closing translation cache", "error", err)
			}
		}
	}

	worker := translation.NewWorker(provider, cache, policy, translation.WorkerConfig{
		TargetLang: flags.TargetLang,
		QPS:        flags.TranslateQPS,
	}, logger)

	return worker, closeCache, nil
}

const maxFailureRows = 20

func renderSummary(s *processor.Summary) string {
	label := "Run"
	if s.DryRun {
		label = "Dry run"
	}

	rows := [][]string{
		{"Records", strconv.Itoa(s.Total)},
		{"Translated", strconv.Itoa(s.Translated)},
		{"Downloaded", strconv.Itoa(s.Downloaded)},
		{"Skipped", strconv.Itoa(s.Skipped)},
		{"Failed", strconv.Itoa(s.Failed)},
		{"Elapsed", s.Elapsed.Round(time.Millisecond).String()},
	}

	out := renderTable(
		[]string{label, "Count"},
		rows,
		[]columnAlignment{alignLeft, alignRight},
	)

	if len(s.Failures) > 0 {
		out += "\n" + renderFailures(s.Failures)
	}
	return out
}

// renderFailures shows the first few failures; the log carries the full list.
func renderFailures(failures []processor.Failure) string {
	rows := make([][]string, 0, len(failures))
	for _, f := range failures {
		if len(rows) == maxFailureRows {
			rows = append(rows, []string{"…", "", fmt.Sprintf("and %d more", len(failures)-maxFailureRows)})
			break
		}
		rows = append(rows, []string{f.Key, f.Op, truncate(f.Err, 80)})
	}
	return renderTable(
		[]string{"Record", "Op", "Error"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft},
	)
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
