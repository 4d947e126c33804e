package main

import "github.com/spf13/cobra"

var rasterCmd = &cobra.Command{
	Use:   "raster",
	Short: "Inspect and transform lidar rasters",
	Long:  "Inspect, clip, and resample snow-depth and canopy-height GeoTIFFs.",
}

func init() { rootCmd.AddCommand(rasterCmd) }
