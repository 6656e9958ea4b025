// Package cli implements the courserag command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/0xcro3dile/courserag/internal/infrastructure/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "courserag",
	Short: "Course catalog assistant with retrieval, web fallback and translation",
	Long: `courserag answers questions about the course catalog. Grounded answers come
from the indexed CSV catalog; when the catalog has nothing relevant it falls
back to a web search. Direct questions are answered in the asker's language.

Example usage:
  courserag index                       # Build data/index.db from the CSVs
  courserag index --watch               # Rebuild whenever the CSVs change
  courserag serve                       # Start the HTTP API on :8000
  courserag ask "honey bee course?"     # One-shot question`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "courserag.yaml", "config file")
}

// GetConfig returns the configuration loaded for the running command.
func GetConfig() *config.Config {
	return cfg
}
