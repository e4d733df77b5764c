package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func TestCreateRootCommand(t *testing.T) {
	flags := NewFlags()
	cmd := CreateRootCommand(flags)

	// Test basic command properties
	if cmd.Use != "iie" {
		t.Errorf("Expected Use to be 'iie', got %s", cmd.Use)
	}

	if !strings.Contains(cmd.Short, "catalogue enrichment") {
		t.Errorf("Expected Short description to contain 'catalogue enrichment'")
	}

	// Test that flags are set up
	flagTests := []struct {
		name     string
		expected bool
	}{
		{"config", true},
		{"translate", true},
		{"download", true},
		{"dry-run", true},
		{"list-models", true},
		{"output-dir", true},
		{"input", true},
		{"output", true},
		{"catalog-url", true},
		{"provider", true},
		{"model", true},
		{"target-lang", true},
		{"translate-qps", true},
		{"translation-cache", true},
		{"cache-path", true},
		{"retries", true},
		{"workers", true},
		{"checkpoint-every", true},
		{"limit", true},
		{"log-level", true},
		{"log-format", true},
	}

	for _, tt := range flagTests {
		t.Run("flag_"+tt.name, func(t *testing.T) {
			var flag *pflag.Flag
			if tt.name == "config" {
				flag = cmd.PersistentFlags().Lookup(tt.name)
			} else {
				flag = cmd.Flags().Lookup(tt.name)
			}
			if flag == nil && tt.expected {
				t.Errorf("Expected flag %s to exist", tt.name)
			}
		})
	}
}

func TestSetupFlags(t *testing.T) {
	cmd := &cobra.Command{}
	flags := NewFlags()

	setupFlags(cmd, flags)

	// Test default values
	tests := []struct {
		name     string
		expected string
	}{
		{"output-dir", "output"},
		{"provider", "openai"},
		{"target-lang", "en"},
		{"translate-qps", "0.5"},
		{"retries", "3"},
		{"workers", "4"},
		{"checkpoint-every", "10"},
		{"log-level", "info"},
		{"log-format", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("%s flag not found", tt.name)
			}
			if flag.DefValue != tt.expected {
				t.Errorf("Expected default %s to be %s, got %s", tt.name, tt.expected, flag.DefValue)
			}
		})
	}
}

func TestInitConfig(t *testing.T) {
	// Save original viper state
	originalConfig := viper.New()
	*originalConfig = *viper.GetViper()
	defer func() {
		*viper.GetViper() = *originalConfig
	}()

	tests := []struct {
		name      string
		cfgFile   string
		setupFunc func(t *testing.T) string
	}{
		{
			name:    "with config file",
			cfgFile: "test-config.yaml",
			setupFunc: func(t *testing.T) string {
				tmpDir := t.TempDir()
				cfgPath := filepath.Join(tmpDir, "test-config.yaml")
				content := `translation:
  provider: gemini
  openai_key: test-key
paths:
  output_dir: /test/output`
				err := os.WriteFile(cfgPath, []byte(content), 0644)
				if err != nil {
					t.Fatalf("Failed to create test config: %v", err)
				}
				return cfgPath
			},
		},
		{
			name:    "without config file",
			cfgFile: "",
			setupFunc: func(t *testing.T) string {
				return ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset viper for each test
			viper.Reset()

			cfgPath := tt.setupFunc(t)
			if tt.cfgFile != "" && cfgPath != "" {
				tt.cfgFile = cfgPath
			}

			InitConfig(tt.cfgFile)

			// Test environment variable prefix
			os.Setenv("IIE_TEST_VAR", "test-value")
			defer os.Unsetenv("IIE_TEST_VAR")

			if viper.GetString("test_var") != "test-value" {
				t.Error("Environment variable not properly loaded")
			}
		})
	}
}

func TestGetOpenAIKey(t *testing.T) {
	// Save original viper state
	originalConfig := viper.New()
	*originalConfig = *viper.GetViper()
	defer func() {
		*viper.GetViper() = *originalConfig
	}()

	tests := []struct {
		name      string
		envKey    string
		configKey string
		expected  string
	}{
		{
			name:      "from environment",
			envKey:    "env-test-key",
			configKey: "config-test-key",
			expected:  "env-test-key",
		},
		{
			name:      "from config when no env",
			envKey:    "",
			configKey: "config-test-key",
			expected:  "config-test-key",
		},
		{
			name:      "empty when neither set",
			envKey:    "",
			configKey: "",
			expected:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset viper
			viper.Reset()

			// Set up environment
			if tt.envKey != "" {
				os.Setenv("OPENAI_API_KEY", tt.envKey)
				defer os.Unsetenv("OPENAI_API_KEY")
			} else {
				os.Unsetenv("OPENAI_API_KEY")
			}

			// Set up config
			if tt.configKey != "" {
				viper.Set("translation.openai_key", tt.configKey)
			}

			got := GetOpenAIKey()
			if got != tt.expected {
				t.Errorf("GetOpenAIKey() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetGeminiKey(t *testing.T) {
	// Save original viper state
	originalConfig := viper.New()
	*originalConfig = *viper.GetViper()
	defer func() {
		*viper.GetViper() = *originalConfig
	}()

	tests := []struct {
		name      string
		envKey    string
		configKey string
		expected  string
	}{
		{
			name:      "from environment",
			envKey:    "env-gemini-key",
			configKey: "config-gemini-key",
			expected:  "env-gemini-key",
		},
		{
			name:      "from config when no env",
			envKey:    "",
			configKey: "config-gemini-key",
			expected:  "config-gemini-key",
		},
		{
			name:      "empty when neither set",
			envKey:    "",
			configKey: "",
			expected:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset viper
			viper.Reset()

			// Set up environment
			if tt.envKey != "" {
				os.Setenv("GEMINI_API_KEY", tt.envKey)
				defer os.Unsetenv("GEMINI_API_KEY")
			} else {
				os.Unsetenv("GEMINI_API_KEY")
			}

			// Set up config
			if tt.configKey != "" {
				viper.Set("translation.gemini_key", tt.configKey)
			}

			got := GetGeminiKey()
			if got != tt.expected {
				t.Errorf("GetGeminiKey() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBindFlagsToViper(t *testing.T) {
	// Save original viper state
	originalConfig := viper.New()
	*originalConfig = *viper.GetViper()
	defer func() {
		*viper.GetViper() = *originalConfig
	}()

	// Reset viper
	viper.Reset()

	cmd := &cobra.Command{}
	flags := NewFlags()
	setupFlags(cmd, flags)

	// Set some flag values
	cmd.Flags().Set("output-dir", "/test/output")
	cmd.Flags().Set("provider", "gemini")
	cmd.Flags().Set("translate-qps", "1.5")

	bindFlagsToViper(cmd)

	// Test that values are bound
	if viper.GetString("paths.output_dir") != "/test/output" {
		t.Errorf("Expected paths.output_dir to be /test/output, got %s", viper.GetString("paths.output_dir"))
	}

	if viper.GetString("translation.provider") != "gemini" {
		t.Errorf("Expected translation.provider to be gemini, got %s", viper.GetString("translation.provider"))
	}

	if viper.GetFloat64("translation.qps") != 1.5 {
		t.Errorf("Expected translation.qps to be 1.5, got %v", viper.GetFloat64("translation.qps"))
	}
}
