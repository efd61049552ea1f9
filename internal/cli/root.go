package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/bot80-alt/certa/internal/model"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "v0.1.0"

var (
	cfgFile string
	envFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "certa",
	Short: "certa - fact-check articles, text, and audio",
	Long: `certa checks the factual claims in a web article, a block of text, or an
audio recording.

Each input is normalized to plain text, searched against the web for
evidence, and scored claim by claim by an LLM. Every claim is labelled
accurate, inaccurate, partially accurate, or unverifiable, and the result is
explained in plain language.

Labels come from an automated check. Read the sources before relying on them.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command; cancelling ctx stops long-running commands
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "certa %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.certa/config.yaml)")
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.String("llm-provider", "", "LLM provider (groq, openai, anthropic, ollama)")
	flags.String("llm-model", "", "LLM model name")
	flags.String("search-provider", "", "search provider (serper, brave)")
	flags.String("renderer", "", "page renderer (http, chromedp)")

	_ = viper.BindPFlag("output.verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("oracle.llm.provider", flags.Lookup("llm-provider"))
	_ = viper.BindPFlag("oracle.llm.model", flags.Lookup("llm-model"))
	_ = viper.BindPFlag("oracle.search.provider", flags.Lookup("search-provider"))
	_ = viper.BindPFlag("content.renderer", flags.Lookup("renderer"))

	rootCmd.AddCommand(versionCmd)
}

// credentialEnv lists the conventional variable names accepted for each
// secret, in addition to the CERTA_* form
var credentialEnv = map[string][]string{
	"oracle.llm.api_key":    {"CERTA_ORACLE_LLM_API_KEY", "GROQ_API_KEY"},
	"oracle.search.api_key": {"CERTA_ORACLE_SEARCH_API_KEY", "SERPER_API_KEY"},
	"audio.api_key":         {"CERTA_AUDIO_API_KEY", "GOOGLE_SPEECH_API_KEY"},
	"server.jwt_secret":     {"CERTA_SERVER_JWT_SECRET", "JWT_SECRET"},
	"oracle.llm.base_url":   {"CERTA_ORACLE_LLM_BASE_URL", "OLLAMA_BASE_URL"},
}

var providerKeyEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"claude":    "ANTHROPIC_API_KEY",
	"brave":     "BRAVE_API_KEY",
}

// initConfig reads in .env, the config file, and CERTA_* variables
func initConfig() {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: could not load %s: %v\n", envFile, err)
		}
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
		} else {
			viper.AddConfigPath(filepath.Join(home, ".certa"))
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	if err := configureViper(viper.GetViper()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// configureViper registers defaults and environment bindings on v
func configureViper(v *viper.Viper) error {
	v.SetEnvPrefix("CERTA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, envs := range credentialEnv {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	if err := setDefaults(v, model.DefaultConfig()); err != nil {
		return fmt.Errorf("register defaults: %w", err)
	}
	return nil
}

// setDefaults registers every field of cfg so AutomaticEnv can override
// nested keys
func setDefaults(v *viper.Viper, cfg *model.Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return fmt.Errorf("unmarshal defaults: %w", err)
	}
	walkDefaults(v, "", tree)
	return nil
}

func walkDefaults(v *viper.Viper, prefix string, tree map[string]any) {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			walkDefaults(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

// loadConfig resolves the effective configuration: defaults, config file,
// environment, then flags
func loadConfig() (*model.Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Provider-specific key names win over the generic binding unless the
	// CERTA_* variable was set explicitly
	if env := providerKeyEnv[strings.ToLower(cfg.Oracle.LLM.Provider)]; env != "" {
		if key := os.Getenv(env); key != "" && os.Getenv("CERTA_ORACLE_LLM_API_KEY") == "" {
			cfg.Oracle.LLM.APIKey = key
		}
	}
	if env := providerKeyEnv[strings.ToLower(cfg.Oracle.Search.Provider)]; env != "" {
		if key := os.Getenv(env); key != "" && os.Getenv("CERTA_ORACLE_SEARCH_API_KEY") == "" {
			cfg.Oracle.Search.APIKey = key
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// logOutput is where component logs go: stderr when verbose, else nowhere
func logOutput() io.Writer {
	if verbose {
		return os.Stderr
	}
	return io.Discard
}
