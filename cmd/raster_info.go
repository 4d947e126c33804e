package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cryoscope/snowkit/internal/raster"
)

var rasterInfoJSON bool

var rasterInfoCmd = &cobra.Command{
	Use:   "info RASTER",
	Short: "Show raster metadata and band statistics",
	Long:  "Prints raster dimensions, resolution, projection, bounds, and per-band min/max/mean over valid pixels.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := raster.Inspect(args[0])
		if err != nil {
			return err
		}

		if rasterInfoJSON {
			return json.NewEncoder(os.Stdout).Encode(info)
		}

		fmt.Printf("File:       %s\n", info.Path)
		fmt.Printf("Size:       %d x %d\n", info.SizeX, info.SizeY)
		fmt.Printf("Resolution: %.2f x %.2f\n", info.ResX, info.ResY)
		fmt.Printf("Bounds:     [%.2f, %.2f, %.2f, %.2f]\n",
			info.Bounds.MinX, info.Bounds.MinY, info.Bounds.MaxX, info.Bounds.MaxY)
		if info.Projection != "" {
			fmt.Printf("Projection: %s\n", info.Projection)
		}
		for _, b := range info.Bands {
			nodata := "none"
			if b.NoData != nil {
				nodata = fmt.Sprintf("%g", *b.NoData)
			}
			fmt.Printf("Band %d:     %s nodata=%s min=%.2f max=%.2f mean=%.2f valid=%d\n",
				b.Index, b.DataType, nodata, b.Min, b.Max, b.Mean, b.Valid)
		}
		return nil
	},
}

func init() {
	rasterInfoCmd.Flags().BoolVar(&rasterInfoJSON, "json", false, "emit metadata as JSON")
	rasterCmd.AddCommand(rasterInfoCmd)
}
