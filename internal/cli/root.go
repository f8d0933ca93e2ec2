// Package cli contains the command-line interface of hai, powered by the
// cobra library. It defines the root command, subcommands, and their flags.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/HelpingAI/helpingai-go/pkg/api"
)

var (
	// Values of the root command's persistent flags, shared by all
	// subcommands in this package.
	rootBaseURL string
	rootModel   string
	rootAPIKey  string
	rootRaw     bool
)

// rootCmd is the base command when hai is called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "hai",
	Short: "Chat with HelpingAI models from the terminal.",
	Long: `Chat with HelpingAI models from the terminal.
This CLI provides subcommands for interactive chat, one-shot questions,
model discovery, and streaming-latency benchmarks.`,
}

// Execute is the entry point of the CLI, called by main.
//
// It creates one root cancellable context wired to OS interruption signals
// (Ctrl+C, SIGTERM) and passes it down to all cobra commands, so the whole
// application shuts down gracefully.
func Execute() error {
	// A .env file may supply HAI_API_KEY and HAI_BASE_URL; absence is fine.
	_ = godotenv.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)

	go func() {
		<-signals
		cancel()
	}()

	return rootCmd.ExecuteContext(ctx)
}

// clientConfig resolves flags and environment variables into the immutable
// client configuration. Flags win over the environment.
func clientConfig() api.Config {
	baseURL := rootBaseURL
	if baseURL == "" {
		baseURL = os.Getenv("HAI_BASE_URL")
	}

	apiKey := rootAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("HAI_API_KEY")
	}

	return api.Config{
		BaseURL:       baseURL,
		APIKey:        apiKey,
		KeepReasoning: rootRaw,
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootBaseURL, "base-url", "u",
		"", "Base URL of the API. Defaults to $HAI_BASE_URL or the hosted endpoint.")

	rootCmd.PersistentFlags().StringVarP(&rootModel, "model", "m",
		"Dhanishtha-2.0-preview", "Name of the model to use.")

	rootCmd.PersistentFlags().StringVarP(&rootAPIKey, "api-key", "k",
		"", "API key. Defaults to $HAI_API_KEY.")

	rootCmd.PersistentFlags().BoolVar(&rootRaw, "raw",
		false, "Keep <think> and <ser> markup in the output.")
}
