package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tariqmb/rudud/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "rudud",
	Short: "Dialect-aware customer support response engine",
	Long: `Rudud generates customer support replies for Arabic-speaking businesses.
It detects the customer's regional dialect, extracts intent and sentiment,
retrieves business knowledge, and routes the composed prompt across LLM
providers with automatic failover.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "rudud.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// newLogger builds the process logger from config, with the verbose flag
// forcing debug level.
func newLogger(cfg config.LogConfig) *logrus.Logger {
	log := logrus.New()

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	level := logrus.InfoLevel
	if cfg.Level != "" {
		if parsed, err := logrus.ParseLevel(cfg.Level); err == nil {
			level = parsed
		}
	}
	if verbose {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)

	return log
}
