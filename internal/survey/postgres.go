package survey

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/cryoscope/snowkit/internal/db"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"get_site":   `SELECT id, name, latitude, longitude, elevation_m, state FROM sites WHERE id = $1`,
	"list_sites": `SELECT id, name, latitude, longitude, elevation_m, state FROM sites ORDER BY id`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool for use by subsystems that need
// direct query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS sites (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL DEFAULT '',
	latitude    DOUBLE PRECISION NOT NULL,
	longitude   DOUBLE PRECISION NOT NULL,
	elevation_m DOUBLE PRECISION NOT NULL DEFAULT 0,
	state       TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS measurements (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	site_id       TEXT NOT NULL REFERENCES sites(id),
	batch_id      TEXT,
	recorded_at   TIMESTAMPTZ NOT NULL,
	depth_cm      DOUBLE PRECISION NOT NULL,
	swe_mm        DOUBLE PRECISION,
	density_kg_m3 DOUBLE PRECISION,
	instrument    TEXT,
	observer      TEXT,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_measurements_site_id ON measurements(site_id);
CREATE INDEX IF NOT EXISTS idx_measurements_recorded_at ON measurements(recorded_at);
CREATE INDEX IF NOT EXISTS idx_measurements_instrument ON measurements(instrument);
CREATE INDEX IF NOT EXISTS idx_measurements_batch_id ON measurements(batch_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// UpsertSites bulk-upserts sites keyed on id.
func (s *PostgresStore) UpsertSites(ctx context.Context, sites []Site) (int64, error) {
	if len(sites) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(sites))
	for _, site := range sites {
		rows = append(rows, []any{site.ID, site.Name, site.Latitude, site.Longitude, site.ElevationM, nullString(site.State)})
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "sites",
		Columns:      []string{"id", "name", "latitude", "longitude", "elevation_m", "state"},
		ConflictKeys: []string{"id"},
	}, rows)
	return n, eris.Wrap(err, "postgres: upsert sites")
}

func (s *PostgresStore) GetSite(ctx context.Context, siteID string) (*Site, error) {
	var site Site
	var state *string
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, latitude, longitude, elevation_m, state FROM sites WHERE id = $1`,
		siteID,
	).Scan(&site.ID, &site.Name, &site.Latitude, &site.Longitude, &site.ElevationM, &state)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get site %s", siteID)
	}
	if state != nil {
		site.State = *state
	}
	return &site, nil
}

func (s *PostgresStore) ListSites(ctx context.Context) ([]Site, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, latitude, longitude, elevation_m, state FROM sites ORDER BY id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list sites")
	}
	defer rows.Close()

	var sites []Site
	for rows.Next() {
		var site Site
		var state *string
		if err := rows.Scan(&site.ID, &site.Name, &site.Latitude, &site.Longitude, &site.ElevationM, &state); err != nil {
			return nil, eris.Wrap(err, "postgres: scan site")
		}
		if state != nil {
			site.State = *state
		}
		sites = append(sites, site)
	}
	return sites, eris.Wrap(rows.Err(), "postgres: list sites iterate")
}

// InsertMeasurements bulk-inserts measurements via COPY, stamping each row
// with the given batch ID. Rows without an ID get a generated UUID.
func (s *PostgresStore) InsertMeasurements(ctx context.Context, batchID string, ms []Measurement) (int64, error) {
	if len(ms) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(ms))
	for _, m := range ms {
		id := m.ID
		if id == "" {
			id = uuid.New().String()
		}
		rows = append(rows, []any{
			id, m.SiteID, batchID, m.RecordedAt, m.DepthCM,
			m.SWEMM, m.DensityKgM3, nullString(m.Instrument), nullString(m.Observer),
		})
	}

	n, err := db.CopyFrom(ctx, s.pool, "measurements",
		[]string{"id", "site_id", "batch_id", "recorded_at", "depth_cm", "swe_mm", "density_kg_m3", "instrument", "observer"},
		rows,
	)
	return n, eris.Wrap(err, "postgres: insert measurements")
}

func (s *PostgresStore) ListMeasurements(ctx context.Context, filter Filter) ([]Measurement, error) {
	query := `SELECT id, site_id, COALESCE(batch_id, ''), recorded_at, depth_cm, swe_mm, density_kg_m3,
	                 COALESCE(instrument, ''), COALESCE(observer, '')
	          FROM measurements WHERE true`
	args := []any{}
	argIdx := 1

	if filter.SiteID != "" {
		query += fmt.Sprintf(` AND site_id = $%d`, argIdx)
		args = append(args, filter.SiteID)
		argIdx++
	}
	if filter.Instrument != "" {
		query += fmt.Sprintf(` AND instrument = $%d`, argIdx)
		args = append(args, filter.Instrument)
		argIdx++
	}
	if filter.From != nil {
		query += fmt.Sprintf(` AND recorded_at >= $%d`, argIdx)
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil {
		query += fmt.Sprintf(` AND recorded_at < $%d`, argIdx)
		args = append(args, *filter.To)
		argIdx++
	}
	query += ` ORDER BY recorded_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list measurements")
	}
	defer rows.Close()

	var ms []Measurement
	for rows.Next() {
		var m Measurement
		if err := rows.Scan(&m.ID, &m.SiteID, &m.BatchID, &m.RecordedAt, &m.DepthCM,
			&m.SWEMM, &m.DensityKgM3, &m.Instrument, &m.Observer); err != nil {
			return nil, eris.Wrap(err, "postgres: scan measurement")
		}
		ms = append(ms, m)
	}
	return ms, eris.Wrap(rows.Err(), "postgres: list measurements iterate")
}

func (s *PostgresStore) SiteStats(ctx context.Context) ([]SiteStat, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT site_id, COUNT(*), AVG(depth_cm), MIN(depth_cm), MAX(depth_cm), MAX(recorded_at)
		FROM measurements
		GROUP BY site_id
		ORDER BY site_id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: site stats")
	}
	defer rows.Close()

	var stats []SiteStat
	for rows.Next() {
		var st SiteStat
		if err := rows.Scan(&st.SiteID, &st.Count, &st.MeanDepth, &st.MinDepth, &st.MaxDepth, &st.LastRecord); err != nil {
			return nil, eris.Wrap(err, "postgres: scan site stat")
		}
		stats = append(stats, st)
	}
	return stats, eris.Wrap(rows.Err(), "postgres: site stats iterate")
}

// nullString maps empty strings to NULL for optional text columns.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
