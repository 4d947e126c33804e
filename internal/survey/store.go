package survey

import "context"

// Store defines the persistence interface for survey data.
type Store interface {
	// Sites
	UpsertSites(ctx context.Context, sites []Site) (int64, error)
	GetSite(ctx context.Context, siteID string) (*Site, error)
	ListSites(ctx context.Context) ([]Site, error)

	// Measurements
	InsertMeasurements(ctx context.Context, batchID string, ms []Measurement) (int64, error)
	ListMeasurements(ctx context.Context, filter Filter) ([]Measurement, error)
	SiteStats(ctx context.Context) ([]SiteStat, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
