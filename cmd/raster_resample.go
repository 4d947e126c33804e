package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cryoscope/snowkit/internal/raster"
)

var (
	resampleRes    float64
	resampleMethod string
)

var rasterResampleCmd = &cobra.Command{
	Use:   "resample SRC DST",
	Short: "Resample a raster to a target resolution",
	Long:  "Warps a raster to a new square pixel size. Methods: bilinear, near, cubic, average.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("raster"); err != nil {
			return err
		}

		method := resampleMethod
		if method == "" {
			method = cfg.Raster.ResampleMethod
		}
		if err := raster.ValidateMethod(method); err != nil {
			return err
		}

		zap.L().Info("resampling raster",
			zap.String("src", args[0]),
			zap.Float64("res", resampleRes),
			zap.String("method", method),
		)

		return raster.Resample(args[0], args[1], resampleRes, method)
	},
}

func init() {
	rasterResampleCmd.Flags().Float64Var(&resampleRes, "res", 0, "target pixel size in CRS units (required)")
	rasterResampleCmd.Flags().StringVar(&resampleMethod, "method", "", "resampling method (default from config)")
	rasterResampleCmd.MarkFlagRequired("res") //nolint:errcheck
	rasterCmd.AddCommand(rasterResampleCmd)
}
