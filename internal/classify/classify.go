// Package classify maps snow-pit site identifiers to vegetation and depth classes.
package classify

// VegetationClass buckets a site by canopy density.
type VegetationClass string

// DepthClass buckets a site by expected snow depth.
type DepthClass string

// Vegetation classification constants.
const (
	VegTreeless VegetationClass = "treeless"
	VegSparse   VegetationClass = "sparse"
	VegDense    VegetationClass = "dense"
	VegUnknown  VegetationClass = ""
)

// Depth classification constants.
const (
	DepthShallow DepthClass = "shallow"
	DepthMedium  DepthClass = "medium"
	DepthDeep    DepthClass = "deep"
	DepthUnknown DepthClass = ""
)

// siteClass pairs the two classes encoded by a single leading digit.
type siteClass struct {
	veg   VegetationClass
	depth DepthClass
}

// siteClasses is the fixed digit lookup. Digits 1-9 partition into three
// vegetation groups of three and three depth groups of three; the two axes
// are independent despite sharing the digit space.
var siteClasses = map[byte]siteClass{
	'1': {VegTreeless, DepthShallow},
	'2': {VegTreeless, DepthMedium},
	'3': {VegTreeless, DepthDeep},
	'4': {VegSparse, DepthShallow},
	'5': {VegSparse, DepthMedium},
	'6': {VegSparse, DepthDeep},
	'7': {VegDense, DepthShallow},
	'8': {VegDense, DepthMedium},
	'9': {VegDense, DepthDeep},
}

// Site returns both classes for a site identifier. A non-numeric leading
// character, or digit 0, yields the unknown pair. Never fails: absence of a
// match is a valid result, not an error.
func Site(siteID string) (VegetationClass, DepthClass) {
	if siteID == "" {
		return VegUnknown, DepthUnknown
	}
	sc, ok := siteClasses[siteID[0]]
	if !ok {
		return VegUnknown, DepthUnknown
	}
	return sc.veg, sc.depth
}

// Vegetation returns the vegetation class for a site identifier.
func Vegetation(siteID string) VegetationClass {
	veg, _ := Site(siteID)
	return veg
}

// Depth returns the depth class for a site identifier.
func Depth(siteID string) DepthClass {
	_, depth := Site(siteID)
	return depth
}
