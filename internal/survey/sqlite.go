package survey

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// sqliteTimeLayout is the storage layout for timestamps, always UTC. With a
// fixed width and second precision, lexicographic order equals chronological
// order, so range filters and MAX() work directly on the stored text.
// Aggregate expressions lose the column decltype, so timestamps are read back
// as strings and parsed rather than scanned into time.Time.
const sqliteTimeLayout = "2006-01-02 15:04:05"

func sqliteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseSQLiteTime(s string) (time.Time, error) {
	t, err := time.Parse(sqliteTimeLayout, s)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "sqlite: parse timestamp %q", s)
	}
	return t, nil
}

// SQLiteStore implements Store using modernc.org/sqlite. It backs offline
// workshops where no Postgres instance is reachable.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS sites (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL DEFAULT '',
	latitude    REAL NOT NULL,
	longitude   REAL NOT NULL,
	elevation_m REAL NOT NULL DEFAULT 0,
	state       TEXT
);

CREATE TABLE IF NOT EXISTS measurements (
	id            TEXT PRIMARY KEY,
	site_id       TEXT NOT NULL REFERENCES sites(id),
	batch_id      TEXT,
	recorded_at   DATETIME NOT NULL,
	depth_cm      REAL NOT NULL,
	swe_mm        REAL,
	density_kg_m3 REAL,
	instrument    TEXT,
	observer      TEXT
);

CREATE INDEX IF NOT EXISTS idx_measurements_site_id ON measurements(site_id);
CREATE INDEX IF NOT EXISTS idx_measurements_recorded_at ON measurements(recorded_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertSites(ctx context.Context, sites []Site) (int64, error) {
	if len(sites) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: upsert sites: begin tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sites (id, name, latitude, longitude, elevation_m, state)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
		  name = excluded.name, latitude = excluded.latitude, longitude = excluded.longitude,
		  elevation_m = excluded.elevation_m, state = excluded.state`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: upsert sites: prepare")
	}
	defer stmt.Close()

	var n int64
	for _, site := range sites {
		if _, err := stmt.ExecContext(ctx, site.ID, site.Name, site.Latitude, site.Longitude, site.ElevationM, sqlNullString(site.State)); err != nil {
			return n, eris.Wrapf(err, "sqlite: upsert site %s", site.ID)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: upsert sites: commit")
	}
	return n, nil
}

func (s *SQLiteStore) GetSite(ctx context.Context, siteID string) (*Site, error) {
	var site Site
	var state sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, latitude, longitude, elevation_m, state FROM sites WHERE id = ?`,
		siteID,
	).Scan(&site.ID, &site.Name, &site.Latitude, &site.Longitude, &site.ElevationM, &state)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: get site %s", siteID)
	}
	site.State = state.String
	return &site, nil
}

func (s *SQLiteStore) ListSites(ctx context.Context) ([]Site, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, latitude, longitude, elevation_m, state FROM sites ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list sites")
	}
	defer rows.Close()

	var sites []Site
	for rows.Next() {
		var site Site
		var state sql.NullString
		if err := rows.Scan(&site.ID, &site.Name, &site.Latitude, &site.Longitude, &site.ElevationM, &state); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan site")
		}
		site.State = state.String
		sites = append(sites, site)
	}
	return sites, eris.Wrap(rows.Err(), "sqlite: list sites iterate")
}

func (s *SQLiteStore) InsertMeasurements(ctx context.Context, batchID string, ms []Measurement) (int64, error) {
	if len(ms) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: insert measurements: begin tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO measurements (id, site_id, batch_id, recorded_at, depth_cm, swe_mm, density_kg_m3, instrument, observer)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: insert measurements: prepare")
	}
	defer stmt.Close()

	var n int64
	for _, m := range ms {
		id := m.ID
		if id == "" {
			id = uuid.New().String()
		}
		if _, err := stmt.ExecContext(ctx, id, m.SiteID, batchID, sqliteTime(m.RecordedAt), m.DepthCM,
			m.SWEMM, m.DensityKgM3, sqlNullString(m.Instrument), sqlNullString(m.Observer)); err != nil {
			return n, eris.Wrapf(err, "sqlite: insert measurement for site %s", m.SiteID)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: insert measurements: commit")
	}
	return n, nil
}

func (s *SQLiteStore) ListMeasurements(ctx context.Context, filter Filter) ([]Measurement, error) {
	query := `SELECT id, site_id, COALESCE(batch_id, ''), recorded_at, depth_cm, swe_mm, density_kg_m3,
	                 COALESCE(instrument, ''), COALESCE(observer, '')
	          FROM measurements WHERE 1=1`
	args := []any{}

	if filter.SiteID != "" {
		query += ` AND site_id = ?`
		args = append(args, filter.SiteID)
	}
	if filter.Instrument != "" {
		query += ` AND instrument = ?`
		args = append(args, filter.Instrument)
	}
	if filter.From != nil {
		query += ` AND recorded_at >= ?`
		args = append(args, sqliteTime(*filter.From))
	}
	if filter.To != nil {
		query += ` AND recorded_at < ?`
		args = append(args, sqliteTime(*filter.To))
	}
	query += ` ORDER BY recorded_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list measurements")
	}
	defer rows.Close()

	var ms []Measurement
	for rows.Next() {
		var m Measurement
		var recorded string
		var swe, density sql.NullFloat64
		if err := rows.Scan(&m.ID, &m.SiteID, &m.BatchID, &recorded, &m.DepthCM,
			&swe, &density, &m.Instrument, &m.Observer); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan measurement")
		}
		if m.RecordedAt, err = parseSQLiteTime(recorded); err != nil {
			return nil, err
		}
		if swe.Valid {
			v := swe.Float64
			m.SWEMM = &v
		}
		if density.Valid {
			v := density.Float64
			m.DensityKgM3 = &v
		}
		ms = append(ms, m)
	}
	return ms, eris.Wrap(rows.Err(), "sqlite: list measurements iterate")
}

func (s *SQLiteStore) SiteStats(ctx context.Context) ([]SiteStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT site_id, COUNT(*), AVG(depth_cm), MIN(depth_cm), MAX(depth_cm), MAX(recorded_at)
		FROM measurements
		GROUP BY site_id
		ORDER BY site_id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: site stats")
	}
	defer rows.Close()

	var stats []SiteStat
	for rows.Next() {
		var st SiteStat
		var last string
		if err := rows.Scan(&st.SiteID, &st.Count, &st.MeanDepth, &st.MinDepth, &st.MaxDepth, &last); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan site stat")
		}
		if st.LastRecord, err = parseSQLiteTime(last); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, eris.Wrap(rows.Err(), "sqlite: site stats iterate")
}

func sqlNullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
