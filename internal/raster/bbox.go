package raster

import (
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// BBox is a geographic bounding box in the raster's coordinate system.
type BBox struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// ParseBBox parses "minx,miny,maxx,maxy".
func ParseBBox(s string) (BBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return BBox{}, eris.Errorf("raster: bbox %q: want minx,miny,maxx,maxy", s)
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return BBox{}, eris.Wrapf(err, "raster: bbox component %q", p)
		}
		vals[i] = v
	}
	b := BBox{MinX: vals[0], MinY: vals[1], MaxX: vals[2], MaxY: vals[3]}
	if err := b.Validate(); err != nil {
		return BBox{}, err
	}
	return b, nil
}

// Validate rejects degenerate boxes.
func (b BBox) Validate() error {
	if b.MinX >= b.MaxX || b.MinY >= b.MaxY {
		return eris.Errorf("raster: degenerate bbox [%g %g %g %g]", b.MinX, b.MinY, b.MaxX, b.MaxY)
	}
	return nil
}

// Width returns the horizontal extent.
func (b BBox) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent.
func (b BBox) Height() float64 { return b.MaxY - b.MinY }

// Intersect returns the overlap of two boxes and whether they overlap at all.
func (b BBox) Intersect(o BBox) (BBox, bool) {
	out := BBox{
		MinX: math.Max(b.MinX, o.MinX),
		MinY: math.Max(b.MinY, o.MinY),
		MaxX: math.Min(b.MaxX, o.MaxX),
		MaxY: math.Min(b.MaxY, o.MaxY),
	}
	if out.MinX >= out.MaxX || out.MinY >= out.MaxY {
		return BBox{}, false
	}
	return out, true
}

// Window converts a bounding box to a pixel window for a north-up raster with
// the given geotransform and size. The window is clamped to the raster
// extent; boxes fully outside it are an error.
// Geotransform layout follows GDAL: origin at (gt[0], gt[3]), pixel size
// (gt[1], gt[5]) with gt[5] negative for north-up images.
func Window(gt [6]float64, sizeX, sizeY int, b BBox) (col, row, width, height int, err error) {
	if gt[1] <= 0 || gt[5] >= 0 {
		return 0, 0, 0, 0, eris.Errorf("raster: unsupported geotransform pixel size (%g, %g)", gt[1], gt[5])
	}

	extent := BBox{
		MinX: gt[0],
		MaxX: gt[0] + gt[1]*float64(sizeX),
		MaxY: gt[3],
		MinY: gt[3] + gt[5]*float64(sizeY),
	}
	clipped, ok := b.Intersect(extent)
	if !ok {
		return 0, 0, 0, 0, eris.Errorf("raster: bbox [%g %g %g %g] does not intersect raster extent [%g %g %g %g]",
			b.MinX, b.MinY, b.MaxX, b.MaxY, extent.MinX, extent.MinY, extent.MaxX, extent.MaxY)
	}

	col = int(math.Floor((clipped.MinX - gt[0]) / gt[1]))
	row = int(math.Floor((clipped.MaxY - gt[3]) / gt[5]))
	endCol := int(math.Ceil((clipped.MaxX - gt[0]) / gt[1]))
	endRow := int(math.Ceil((clipped.MinY - gt[3]) / gt[5]))

	if col < 0 {
		col = 0
	}
	if row < 0 {
		row = 0
	}
	if endCol > sizeX {
		endCol = sizeX
	}
	if endRow > sizeY {
		endRow = sizeY
	}

	width = endCol - col
	height = endRow - row
	if width <= 0 || height <= 0 {
		return 0, 0, 0, 0, eris.Errorf("raster: empty pixel window for bbox [%g %g %g %g]", b.MinX, b.MinY, b.MaxX, b.MaxY)
	}
	return col, row, width, height, nil
}
