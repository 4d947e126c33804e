package survey

import (
	"math"

	"github.com/cryoscope/snowkit/internal/classify"
)

// Bin aggregates measurements sharing a (vegetation, depth) classification.
type Bin struct {
	Vegetation classify.VegetationClass `json:"vegetation"`
	Depth      classify.DepthClass      `json:"depth"`
	Count      int                      `json:"count"`
	MeanDepth  float64                  `json:"mean_depth_cm"`
	MinDepth   float64                  `json:"min_depth_cm"`
	MaxDepth   float64                  `json:"max_depth_cm"`
}

// PivotResult holds the classification-bin summary for a set of measurements.
// Bins always contains all nine defined class combinations in fixed order;
// measurements whose site ID classifies as undefined on either axis land in
// Unclassified.
type PivotResult struct {
	Bins         []Bin `json:"bins"`
	Unclassified Bin   `json:"unclassified"`
	Total        int   `json:"total"`
}

// vegOrder and depthOrder fix the presentation order of pivot rows.
var (
	vegOrder   = []classify.VegetationClass{classify.VegTreeless, classify.VegSparse, classify.VegDense}
	depthOrder = []classify.DepthClass{classify.DepthShallow, classify.DepthMedium, classify.DepthDeep}
)

// Pivot buckets measurements by the classes encoded in their site IDs and
// computes per-bin depth statistics.
func Pivot(ms []Measurement) PivotResult {
	type key struct {
		veg   classify.VegetationClass
		depth classify.DepthClass
	}

	bins := make(map[key]*Bin)
	for _, veg := range vegOrder {
		for _, depth := range depthOrder {
			bins[key{veg, depth}] = &Bin{
				Vegetation: veg,
				Depth:      depth,
				MinDepth:   math.Inf(1),
				MaxDepth:   math.Inf(-1),
			}
		}
	}
	unclassified := &Bin{MinDepth: math.Inf(1), MaxDepth: math.Inf(-1)}

	for _, m := range ms {
		veg, depth := classify.Site(m.SiteID)
		bin := unclassified
		if veg != classify.VegUnknown && depth != classify.DepthUnknown {
			bin = bins[key{veg, depth}]
		}
		bin.Count++
		bin.MeanDepth += m.DepthCM // running sum, divided below
		if m.DepthCM < bin.MinDepth {
			bin.MinDepth = m.DepthCM
		}
		if m.DepthCM > bin.MaxDepth {
			bin.MaxDepth = m.DepthCM
		}
	}

	result := PivotResult{Total: len(ms)}
	for _, veg := range vegOrder {
		for _, depth := range depthOrder {
			bin := bins[key{veg, depth}]
			finalizeBin(bin)
			result.Bins = append(result.Bins, *bin)
		}
	}
	finalizeBin(unclassified)
	result.Unclassified = *unclassified

	return result
}

// finalizeBin converts the running depth sum to a mean and zeroes the
// sentinel min/max on empty bins.
func finalizeBin(b *Bin) {
	if b.Count == 0 {
		b.MinDepth = 0
		b.MaxDepth = 0
		return
	}
	b.MeanDepth /= float64(b.Count)
}
