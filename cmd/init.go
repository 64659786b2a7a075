package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tariqmb/rudud/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long:  `Writes a rudud.yml with the default configuration as a starting point.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(cfgFile); err == nil && !initForce {
			return fmt.Errorf("%s already exists, use --force to overwrite", cfgFile)
		}

		if err := config.DefaultConfig().Save(cfgFile); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
		fmt.Printf("wrote %s\n", cfgFile)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}
