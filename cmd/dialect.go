package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tariqmb/rudud/internal/config"
	"github.com/tariqmb/rudud/internal/dialect"
)

var dialectCountry string

var dialectCmd = &cobra.Command{
	Use:   "dialect [text]",
	Short: "Classify the Arabic dialect of a message",
	Long:  `Runs the dialect classifier on the given text and prints the result as JSON.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")

		classifier := dialect.NewClassifier(nil, newLogger(config.LogConfig{Level: "warn"}))
		res := classifier.Detect(cmd.Context(), text, dialect.DetectOptions{Country: dialectCountry})

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		return nil
	},
}

func init() {
	dialectCmd.Flags().StringVar(&dialectCountry, "country", "", "ISO-3166 alpha-2 country code for the geo boost")
	rootCmd.AddCommand(dialectCmd)
}
