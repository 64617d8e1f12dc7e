// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"tubetap/internal/config"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagConfig string
	flagListen string
	flagFormat string
	flagActors []string
	flagJSON   bool
	flagDebug  bool
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "tubetap",
	Short: "Extract audio streams from YouTube videos",
	Long: `Tubetap extracts the audio track of a YouTube video through external
extraction actors, picks the best audio stream, and delivers it as-is or
transcoded to mp3. Run it as an HTTP service or as a one-shot CLI.`,
	PersistentPreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: XDG config dir)")
	rootCmd.PersistentFlags().StringVar(&flagListen, "listen", "", "Listen address for serve (e.g. :8080)")
	rootCmd.PersistentFlags().StringVarP(&flagFormat, "format", "f", "", "Desired audio format (default: mp3)")
	rootCmd.PersistentFlags().StringSliceVar(&flagActors, "actor", nil, "Extraction actor(s), in fallback order")
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "Output extraction metadata as JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < .env < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	var err error
	if flagConfig != "" {
		cfg, err = config.LoadFrom(flagConfig)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagListen != "" {
		cfg.Listen = flagListen
	}
	if flagFormat != "" {
		cfg.Format = flagFormat
	}
	if len(flagActors) > 0 {
		cfg.Actors = flagActors
	}
	if flagDebug {
		cfg.Debug = true
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Debug {
		log.SetOutput(os.Stderr)
		log.SetPrefix("[tubetap] ")
	} else {
		log.SetOutput(os.Stderr)
		log.SetFlags(0)
	}

	return nil
}

// debugf logs a message if debug mode is enabled.
func debugf(format string, args ...interface{}) {
	if cfg != nil && cfg.Debug {
		log.Printf(format, args...)
	}
}
