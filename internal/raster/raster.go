// Package raster inspects, clips, and resamples lidar-derived GeoTIFFs.
// All pixel I/O is delegated to GDAL via godal; this package supplies
// parameter handling and bounding-box math.
package raster

import (
	"math"
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/rotisserie/eris"
)

var registerOnce sync.Once

// register loads GDAL drivers exactly once per process.
func register() {
	registerOnce.Do(godal.RegisterAll)
}

// BandInfo summarizes one raster band.
type BandInfo struct {
	Index    int      `json:"index"`
	DataType string   `json:"data_type"`
	NoData   *float64 `json:"nodata,omitempty"`
	Min      float64  `json:"min"`
	Max      float64  `json:"max"`
	Mean     float64  `json:"mean"`
	Valid    int      `json:"valid_pixels"`
}

// Info summarizes a raster file: geometry, georeferencing, and band stats.
type Info struct {
	Path         string     `json:"path"`
	SizeX        int        `json:"size_x"`
	SizeY        int        `json:"size_y"`
	Bands        []BandInfo `json:"bands"`
	Projection   string     `json:"projection"`
	GeoTransform [6]float64 `json:"geotransform"`
	Bounds       BBox       `json:"bounds"`
	ResX         float64    `json:"res_x"`
	ResY         float64    `json:"res_y"`
}

// Inspect opens a raster and returns its metadata plus per-band statistics
// computed over valid (non-nodata) pixels.
func Inspect(path string) (*Info, error) {
	register()

	ds, err := godal.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "raster: open %s", path)
	}
	defer ds.Close()

	st := ds.Structure()
	gt, err := ds.GeoTransform()
	if err != nil {
		return nil, eris.Wrapf(err, "raster: geotransform %s", path)
	}
	bounds, err := ds.Bounds()
	if err != nil {
		return nil, eris.Wrapf(err, "raster: bounds %s", path)
	}

	info := &Info{
		Path:         path,
		SizeX:        st.SizeX,
		SizeY:        st.SizeY,
		Projection:   ds.Projection(),
		GeoTransform: gt,
		Bounds:       BBox{MinX: bounds[0], MinY: bounds[1], MaxX: bounds[2], MaxY: bounds[3]},
		ResX:         gt[1],
		ResY:         math.Abs(gt[5]),
	}

	for i, band := range ds.Bands() {
		bi := BandInfo{
			Index:    i + 1,
			DataType: band.Structure().DataType.String(),
		}
		if nd, ok := band.NoData(); ok {
			v := nd
			bi.NoData = &v
		}

		buf := make([]float64, st.SizeX*st.SizeY)
		if err := band.Read(0, 0, buf, st.SizeX, st.SizeY); err != nil {
			return nil, eris.Wrapf(err, "raster: read band %d of %s", i+1, path)
		}
		bi.Min, bi.Max, bi.Mean, bi.Valid = bandStats(buf, bi.NoData)
		info.Bands = append(info.Bands, bi)
	}

	return info, nil
}

// bandStats computes min/max/mean over pixels, skipping nodata and NaN.
// Returns zeros with Valid==0 when no valid pixel exists.
func bandStats(buf []float64, nodata *float64) (min, max, mean float64, valid int) {
	min = math.Inf(1)
	max = math.Inf(-1)
	var sum float64
	for _, v := range buf {
		if math.IsNaN(v) {
			continue
		}
		if nodata != nil && v == *nodata {
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
		valid++
	}
	if valid == 0 {
		return 0, 0, 0, 0
	}
	return min, max, sum / float64(valid), valid
}
