package raster

import (
	"fmt"

	"github.com/airbusgeo/godal"
	"github.com/rotisserie/eris"
)

// Clip extracts the bbox window of src into a new GeoTIFF at dst. The bbox is
// interpreted in the raster's own coordinate system and must intersect its
// extent.
func Clip(src, dst string, bbox BBox) error {
	register()

	if err := bbox.Validate(); err != nil {
		return err
	}

	ds, err := godal.Open(src)
	if err != nil {
		return eris.Wrapf(err, "raster: open %s", src)
	}
	defer ds.Close()

	st := ds.Structure()
	gt, err := ds.GeoTransform()
	if err != nil {
		return eris.Wrapf(err, "raster: geotransform %s", src)
	}

	// Validate the window before handing off to GDAL so that disjoint boxes
	// fail with a useful message instead of an empty output file.
	if _, _, _, _, err := Window(gt, st.SizeX, st.SizeY, bbox); err != nil {
		return err
	}

	// -projwin takes ulx uly lrx lry.
	switches := []string{
		"-of", "GTiff",
		"-projwin",
		fmt.Sprintf("%.10f", bbox.MinX),
		fmt.Sprintf("%.10f", bbox.MaxY),
		fmt.Sprintf("%.10f", bbox.MaxX),
		fmt.Sprintf("%.10f", bbox.MinY),
	}
	out, err := ds.Translate(dst, switches)
	if err != nil {
		return eris.Wrapf(err, "raster: clip %s", src)
	}
	return eris.Wrapf(out.Close(), "raster: close %s", dst)
}
