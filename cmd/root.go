package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fiscalwatch/countylens/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "countylens",
	Short: "County-level metric extraction from composite fiscal reports",
	Long: "Locates one county's chapter inside a composite budget implementation " +
		"review report, extracts its fiscal metrics through tiered OCR with " +
		"cross-source validation, and emits a confidence-scored result.",
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
