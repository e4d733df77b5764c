package cli

import (
	"path/filepath"

	"github.com/roostaq/irasutoya-images-english/internal/catalog"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile    string
	Translate  bool
	Download   bool
	DryRun     bool
	ListModels bool

	// Paths
	OutputDir  string
	InputPath  string
	OutputPath string
	CatalogURL string

	// Translation flags
	Provider         string
	Model            string
	TargetLang       string
	TranslateQPS     float64
	TranslationCache bool
	CachePath        string

	// Run tuning
	MaxRetries      int
	Workers         int
	CheckpointEvery int
	Limit           int

	// Logging
	LogLevel  string
	LogFormat string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		OutputDir:        "output",
		CatalogURL:       catalog.DefaultCatalogURL,
		Provider:         "openai",
		TargetLang:       "en",
		TranslateQPS:     0.5,
		TranslationCache: true,
		MaxRetries:       3,
		Workers:          4,
		CheckpointEvery:  10,
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// ResolvedInputPath returns the upstream catalogue path, defaulting to a
// file inside the output directory.
func (f *Flags) ResolvedInputPath() string {
	if f.InputPath != "" {
		return f.InputPath
	}
	return filepath.Join(f.OutputDir, "irasutoya.json")
}

// ResolvedOutputPath returns the enriched document path, defaulting to a
// file inside the output directory.
func (f *Flags) ResolvedOutputPath() string {
	if f.OutputPath != "" {
		return f.OutputPath
	}
	return filepath.Join(f.OutputDir, "irasutoya_with_en.json")
}

// ResolvedCachePath returns the translation cache path, defaulting to a
// file inside the output directory.
func (f *Flags) ResolvedCachePath() string {
	if f.CachePath != "" {
		return f.CachePath
	}
	return filepath.Join(f.OutputDir, "translations.db")
}
