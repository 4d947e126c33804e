package raster

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ClipBatch clips every input raster to the same bbox, writing results into
// outDir with a "_clip" suffix. Files are processed concurrently, bounded by
// concurrency (minimum 1). The first failure cancels the remaining work.
func ClipBatch(ctx context.Context, inputs []string, outDir string, bbox BBox, concurrency int) error {
	if len(inputs) == 0 {
		return eris.New("raster: no input files")
	}
	if concurrency < 1 {
		concurrency = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, in := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return eris.Wrap(err, "raster: clip batch cancelled")
			}
			out := filepath.Join(outDir, clipName(in))
			if err := Clip(in, out, bbox); err != nil {
				return err
			}
			zap.L().Info("clipped raster", zap.String("in", in), zap.String("out", out))
			return nil
		})
	}

	return g.Wait()
}

// clipName derives the output filename for a clipped raster.
func clipName(in string) string {
	base := filepath.Base(in)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "_clip" + ext
}
