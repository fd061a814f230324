package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadscope/lead-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "lead-cli",
	Short: "AI lead analysis pipeline",
	Long:  "Scores social media profiles against a business's ideal customer via tiered Claude models: triage, conditional preprocessing, and a tier-shaped main analysis with cost and credit accounting.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
