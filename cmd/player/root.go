package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/liuzl/gocc"
	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/siren/internal/adapters/apiclient"
)

var (
	verbose bool
	quiet   bool
	apiBase string
)

var rootCmd = &cobra.Command{
	Use:   "player",
	Short: "Browse the siren catalog and play songs with synchronized lyrics",
	Long: `player talks to a running siren API server. It lists and searches albums,
shows album track lists and follows a song's lyrics line by line as it plays.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if quiet {
		level = slog.LevelError
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func newClient() *apiclient.Client {
	return apiclient.NewClient(nil, apiBase)
}

// newT2S returns a Traditional to Simplified Chinese converter. Text that
// fails to convert is returned unchanged.
func newT2S() (func(string) string, error) {
	conv, err := gocc.New("t2s")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenCC converter: %w", err)
	}
	return func(text string) string {
		out, err := conv.Convert(text)
		if err != nil {
			slog.Warn("t2s conversion failed, keeping original text", "error", err)
			return text
		}
		return out
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&apiBase, "api", envOr("API_BASE", apiclient.DefaultBaseURL), "siren API base URL")
}
