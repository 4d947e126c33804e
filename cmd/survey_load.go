package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cryoscope/snowkit/internal/fetcher"
	"github.com/cryoscope/snowkit/internal/survey"
)

var (
	loadSitesPath        string
	loadMeasurementsPath string
	loadLatin1           bool
)

var surveyLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load sites and measurements from CSV",
	Long: `Loads site and measurement CSV exports into the survey store.

Site columns:        id,name,latitude,longitude,elevation_m,state
Measurement columns: site_id,recorded_at,depth_cm,swe_mm,density_kg_m3,instrument,observer

recorded_at must be RFC 3339 or YYYY-MM-DD. Empty swe_mm and density_kg_m3
fields are stored as NULL. Each invocation gets a fresh batch ID.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if loadSitesPath == "" && loadMeasurementsPath == "" {
			return eris.New("survey load: at least one of --sites or --measurements is required")
		}

		if err := cfg.Validate("survey"); err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if loadSitesPath != "" {
			n, err := loadSites(ctx, st, loadSitesPath)
			if err != nil {
				return err
			}
			zap.L().Info("sites loaded", zap.Int64("count", n), zap.String("file", loadSitesPath))
		}

		if loadMeasurementsPath != "" {
			batchID := uuid.New().String()
			n, err := loadMeasurements(ctx, st, loadMeasurementsPath, batchID)
			if err != nil {
				return err
			}
			zap.L().Info("measurements loaded",
				zap.Int64("count", n),
				zap.String("batch_id", batchID),
				zap.String("file", loadMeasurementsPath),
			)
		}

		return nil
	},
}

func loadSites(ctx context.Context, st survey.Store, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, eris.Wrap(err, "survey load: open sites file")
	}
	defer f.Close() //nolint:errcheck

	// Cancel on early return so the streaming goroutine is not left blocked
	// sending rows nobody reads.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rowCh, errCh := fetcher.StreamCSV(ctx, f, fetcher.CSVOptions{
		HasHeader: true,
		TrimSpace: true,
		Latin1:    loadLatin1,
	})

	var sites []survey.Site
	for row := range rowCh {
		site, err := parseSiteRow(row)
		if err != nil {
			return 0, err
		}
		sites = append(sites, site)
	}
	if err := <-errCh; err != nil {
		return 0, err
	}

	return st.UpsertSites(ctx, sites)
}

func loadMeasurements(ctx context.Context, st survey.Store, path, batchID string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, eris.Wrap(err, "survey load: open measurements file")
	}
	defer f.Close() //nolint:errcheck

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rowCh, errCh := fetcher.StreamCSV(ctx, f, fetcher.CSVOptions{
		HasHeader: true,
		TrimSpace: true,
		Latin1:    loadLatin1,
	})

	var ms []survey.Measurement
	for row := range rowCh {
		m, err := parseMeasurementRow(row)
		if err != nil {
			return 0, err
		}
		ms = append(ms, m)
	}
	if err := <-errCh; err != nil {
		return 0, err
	}

	return st.InsertMeasurements(ctx, batchID, ms)
}

func parseSiteRow(row []string) (survey.Site, error) {
	if len(row) < 5 {
		return survey.Site{}, eris.Errorf("survey load: site row has %d columns, want at least 5", len(row))
	}

	lat, err := strconv.ParseFloat(row[2], 64)
	if err != nil {
		return survey.Site{}, eris.Wrapf(err, "survey load: latitude for site %s", row[0])
	}
	lon, err := strconv.ParseFloat(row[3], 64)
	if err != nil {
		return survey.Site{}, eris.Wrapf(err, "survey load: longitude for site %s", row[0])
	}
	elev, err := strconv.ParseFloat(row[4], 64)
	if err != nil {
		return survey.Site{}, eris.Wrapf(err, "survey load: elevation for site %s", row[0])
	}

	site := survey.Site{
		ID:         row[0],
		Name:       row[1],
		Latitude:   lat,
		Longitude:  lon,
		ElevationM: elev,
	}
	if len(row) > 5 {
		site.State = row[5]
	}
	return site, nil
}

func parseMeasurementRow(row []string) (survey.Measurement, error) {
	if len(row) < 3 {
		return survey.Measurement{}, eris.Errorf("survey load: measurement row has %d columns, want at least 3", len(row))
	}

	recordedAt, err := parseTimestamp(row[1])
	if err != nil {
		return survey.Measurement{}, eris.Wrapf(err, "survey load: recorded_at for site %s", row[0])
	}
	depth, err := strconv.ParseFloat(row[2], 64)
	if err != nil {
		return survey.Measurement{}, eris.Wrapf(err, "survey load: depth_cm for site %s", row[0])
	}

	m := survey.Measurement{
		SiteID:     row[0],
		RecordedAt: recordedAt,
		DepthCM:    depth,
	}

	if len(row) > 3 && row[3] != "" {
		swe, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return survey.Measurement{}, eris.Wrapf(err, "survey load: swe_mm for site %s", row[0])
		}
		m.SWEMM = &swe
	}
	if len(row) > 4 && row[4] != "" {
		density, err := strconv.ParseFloat(row[4], 64)
		if err != nil {
			return survey.Measurement{}, eris.Wrapf(err, "survey load: density_kg_m3 for site %s", row[0])
		}
		m.DensityKgM3 = &density
	}
	if len(row) > 5 {
		m.Instrument = row[5]
	}
	if len(row) > 6 {
		m.Observer = row[6]
	}

	return m, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func init() {
	surveyLoadCmd.Flags().StringVar(&loadSitesPath, "sites", "", "sites CSV file")
	surveyLoadCmd.Flags().StringVar(&loadMeasurementsPath, "measurements", "", "measurements CSV file")
	surveyLoadCmd.Flags().BoolVar(&loadLatin1, "latin1", false, "decode CSV input as ISO-8859-1")
	surveyCmd.AddCommand(surveyLoadCmd)
}
