package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"code-mentor/api/internal/config"
	"code-mentor/api/internal/llm"
	"code-mentor/api/internal/llm/gemini"
	"code-mentor/api/internal/llm/openai"
	"code-mentor/api/internal/logging"
)

var (
	envFile  string
	logLevel string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "code-mentor",
	Short: "Coding-practice mentor: workspace captures and LLM hints",
	Long: `code-mentor watches a coding workspace and asks an LLM for progressive hints.

"serve" runs the HTTP API (sessions, auto-capture, hints).
"hint" asks for hints once for a local file and prints the JSON response.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			cfg = config.Load(envFile)
		} else {
			cfg = config.Load()
		}
		lvl := cfg.LogLevel
		if logLevel != "" {
			lvl = logLevel
		}
		var err error
		logger, err = logging.New(lvl)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to .env (default: ./.env if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(hintCmd)
}

func newEngines(c *config.Config) *llm.Engines {
	return &llm.Engines{
		Gemini:  gemini.New(c.GeminiAPIKey, c.GeminiModel),
		OpenAI:  openai.New(c.OpenAIAPIKey, c.OpenAIModel),
		Default: c.LLMName,
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
