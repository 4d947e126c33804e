// Package survey persists and aggregates snow-survey sites and measurements.
package survey

import "time"

// Site represents a snow-pit survey site. The leading character of the ID
// encodes vegetation and depth classes (see internal/classify).
type Site struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	ElevationM float64 `json:"elevation_m"`
	State      string  `json:"state,omitempty"`
}

// Measurement represents one snow-pit observation at a site.
type Measurement struct {
	ID          string    `json:"id"`
	SiteID      string    `json:"site_id"`
	BatchID     string    `json:"batch_id,omitempty"`
	RecordedAt  time.Time `json:"recorded_at"`
	DepthCM     float64   `json:"depth_cm"`
	SWEMM       *float64  `json:"swe_mm,omitempty"`
	DensityKgM3 *float64  `json:"density_kg_m3,omitempty"`
	Instrument  string    `json:"instrument,omitempty"`
	Observer    string    `json:"observer,omitempty"`
}

// Filter specifies criteria for listing measurements.
type Filter struct {
	SiteID     string     `json:"site_id,omitempty"`
	Instrument string     `json:"instrument,omitempty"`
	From       *time.Time `json:"from,omitempty"`
	To         *time.Time `json:"to,omitempty"`
	Limit      int        `json:"limit,omitempty"`
	Offset     int        `json:"offset,omitempty"`
}

// SiteStat summarizes measurement coverage for one site.
type SiteStat struct {
	SiteID     string    `json:"site_id"`
	Count      int       `json:"count"`
	MeanDepth  float64   `json:"mean_depth_cm"`
	MinDepth   float64   `json:"min_depth_cm"`
	MaxDepth   float64   `json:"max_depth_cm"`
	LastRecord time.Time `json:"last_record"`
}
