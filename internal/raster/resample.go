package raster

import (
	"fmt"

	"github.com/airbusgeo/godal"
	"github.com/rotisserie/eris"
)

// Resampling methods accepted by Resample, keyed by GDAL name.
var validMethods = map[string]bool{
	"bilinear": true,
	"near":     true,
	"cubic":    true,
	"average":  true,
}

// DefaultMethod is used when no resampling method is given. Bilinear matches
// the standard treatment of continuous snow-depth and canopy-height surfaces.
const DefaultMethod = "bilinear"

// ValidateMethod checks a resampling method name.
func ValidateMethod(method string) error {
	if !validMethods[method] {
		return eris.Errorf("raster: unknown resampling method %q (want bilinear, near, cubic, or average)", method)
	}
	return nil
}

// Resample warps src to dst at the target resolution (map units per pixel on
// both axes) using the given method.
func Resample(src, dst string, res float64, method string) error {
	register()

	if res <= 0 {
		return eris.Errorf("raster: target resolution must be positive, got %g", res)
	}
	if method == "" {
		method = DefaultMethod
	}
	if err := ValidateMethod(method); err != nil {
		return err
	}

	ds, err := godal.Open(src)
	if err != nil {
		return eris.Wrapf(err, "raster: open %s", src)
	}
	defer ds.Close()

	switches := []string{
		"-of", "GTiff",
		"-tr", fmt.Sprintf("%g", res), fmt.Sprintf("%g", res),
		"-r", method,
	}
	out, err := ds.Warp(dst, switches)
	if err != nil {
		return eris.Wrapf(err, "raster: resample %s to %gm (%s)", src, res, method)
	}
	return eris.Wrapf(out.Close(), "raster: close %s", dst)
}
