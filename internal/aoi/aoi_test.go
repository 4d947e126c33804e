package aoi

import (
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePolygonShapefile(t *testing.T, points []shp.Point) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aoi.shp")

	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)

	box := shp.Box{MinX: points[0].X, MinY: points[0].Y, MaxX: points[0].X, MaxY: points[0].Y}
	for _, p := range points {
		if p.X < box.MinX {
			box.MinX = p.X
		}
		if p.Y < box.MinY {
			box.MinY = p.Y
		}
		if p.X > box.MaxX {
			box.MaxX = p.X
		}
		if p.Y > box.MaxY {
			box.MaxY = p.Y
		}
	}
	w.Write(&shp.Polygon{
		Box:       box,
		NumParts:  1,
		NumPoints: int32(len(points)),
		Parts:     []int32{0},
		Points:    points,
	})
	require.NoError(t, w.Close())
	return path
}

func TestBounds_Polygon(t *testing.T) {
	path := writePolygonShapefile(t, []shp.Point{
		{X: 740100, Y: 4322500},
		{X: 740100, Y: 4326000},
		{X: 744800, Y: 4326000},
		{X: 744800, Y: 4322500},
		{X: 740100, Y: 4322500},
	})

	b, err := Bounds(path)
	require.NoError(t, err)
	assert.InDelta(t, 740100, b.MinX, 0.001)
	assert.InDelta(t, 4322500, b.MinY, 0.001)
	assert.InDelta(t, 744800, b.MaxX, 0.001)
	assert.InDelta(t, 4326000, b.MaxY, 0.001)
}

func TestBounds_Points(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sites.shp")
	w, err := shp.Create(path, shp.POINT)
	require.NoError(t, err)
	w.Write(&shp.Point{X: -108.2, Y: 39.0})
	w.Write(&shp.Point{X: -108.0, Y: 39.1})
	require.NoError(t, w.Close())

	b, err := Bounds(path)
	require.NoError(t, err)
	assert.InDelta(t, -108.2, b.MinX, 0.001)
	assert.InDelta(t, 39.1, b.MaxY, 0.001)
}

func TestBounds_MissingFile(t *testing.T) {
	_, err := Bounds(filepath.Join(t.TempDir(), "missing.shp"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open shapefile")
}
