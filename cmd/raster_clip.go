package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cryoscope/snowkit/internal/aoi"
	"github.com/cryoscope/snowkit/internal/raster"
)

var (
	clipBBox   string
	clipAOI    string
	clipOutDir string
)

var rasterClipCmd = &cobra.Command{
	Use:   "clip RASTER...",
	Short: "Clip rasters to a bounding box or AOI shapefile",
	Long:  "Clips one or more rasters to the extent given by --bbox (minx,miny,maxx,maxy) or by the bounds of an --aoi shapefile. Outputs are written to --out-dir with a _clip suffix.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("raster"); err != nil {
			return err
		}

		bbox, err := clipExtent()
		if err != nil {
			return err
		}

		zap.L().Info("clipping rasters",
			zap.Int("count", len(args)),
			zap.Float64("minx", bbox.MinX),
			zap.Float64("miny", bbox.MinY),
			zap.Float64("maxx", bbox.MaxX),
			zap.Float64("maxy", bbox.MaxY),
		)

		return raster.ClipBatch(ctx, args, clipOutDir, bbox, cfg.Raster.Concurrency)
	},
}

// clipExtent resolves the clip extent from --bbox or --aoi.
func clipExtent() (raster.BBox, error) {
	switch {
	case clipBBox != "" && clipAOI != "":
		return raster.BBox{}, eris.New("raster clip: --bbox and --aoi are mutually exclusive")
	case clipBBox != "":
		return raster.ParseBBox(clipBBox)
	case clipAOI != "":
		return aoi.Bounds(clipAOI)
	default:
		return raster.BBox{}, eris.New("raster clip: either --bbox or --aoi is required")
	}
}

func init() {
	rasterClipCmd.Flags().StringVar(&clipBBox, "bbox", "", "clip extent as minx,miny,maxx,maxy in raster CRS units")
	rasterClipCmd.Flags().StringVar(&clipAOI, "aoi", "", "shapefile whose bounds define the clip extent")
	rasterClipCmd.Flags().StringVar(&clipOutDir, "out-dir", ".", "directory for clipped outputs")
	rasterCmd.AddCommand(rasterClipCmd)
}
