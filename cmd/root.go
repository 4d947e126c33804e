package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cryoscope/snowkit/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "snowkit",
	Short: "Snow survey and lidar raster toolkit",
	Long:  "Inspects, clips, and resamples snow-depth and canopy-height rasters, and loads, queries, and pivots snow-pit survey measurements by site classification.",
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
