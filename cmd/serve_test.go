package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryoscope/snowkit/internal/survey"
)

func newTestStore(t *testing.T) survey.Store {
	t.Helper()
	st, err := survey.NewSQLite(filepath.Join(t.TempDir(), "serve_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(t.Context()))
	return st
}

func TestServeHealth(t *testing.T) {
	router := newRouter(newTestStore(t))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServeSiteClasses(t *testing.T) {
	router := newRouter(newTestStore(t))

	req := httptest.NewRequest(http.MethodGet, "/sites/703/classes", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "703", resp["site_id"])
	assert.Equal(t, true, resp["classified"])
	assert.Equal(t, "dense", resp["vegetation"])
	assert.Equal(t, "shallow", resp["depth"])
}

func TestServeSiteClasses_Undefined(t *testing.T) {
	router := newRouter(newTestStore(t))

	req := httptest.NewRequest(http.MethodGet, "/sites/TS01/classes", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["classified"])
	assert.NotContains(t, resp, "vegetation")
	assert.NotContains(t, resp, "depth")
}

func TestServePivot(t *testing.T) {
	st := newTestStore(t)
	ctx := t.Context()

	_, err := st.UpsertSites(ctx, []survey.Site{
		{ID: "101", Name: "Open Flat", Latitude: 43.9, Longitude: -114.2},
		{ID: "909", Name: "Forest Deep", Latitude: 43.8, Longitude: -114.3},
		{ID: "TS01", Name: "Legacy Tower", Latitude: 43.7, Longitude: -114.4},
	})
	require.NoError(t, err)

	ts := time.Date(2020, 2, 12, 0, 0, 0, 0, time.UTC)
	_, err = st.InsertMeasurements(ctx, "batch-1", []survey.Measurement{
		{SiteID: "101", RecordedAt: ts, DepthCM: 40},
		{SiteID: "909", RecordedAt: ts, DepthCM: 260},
		{SiteID: "TS01", RecordedAt: ts, DepthCM: 10},
	})
	require.NoError(t, err)

	router := newRouter(st)
	req := httptest.NewRequest(http.MethodGet, "/pivot", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var res survey.PivotResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 3, res.Total)
	assert.Len(t, res.Bins, 9)
	assert.Equal(t, 1, res.Unclassified.Count)
}

func TestServePivot_BadDate(t *testing.T) {
	router := newRouter(newTestStore(t))

	req := httptest.NewRequest(http.MethodGet, "/pivot?from=yesterday", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServeSites_Empty(t *testing.T) {
	router := newRouter(newTestStore(t))

	req := httptest.NewRequest(http.MethodGet, "/sites", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestParseTimestamp(t *testing.T) {
	got, err := parseTimestamp("2020-02-12")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 2, 12, 0, 0, 0, 0, time.UTC), got)

	got, err = parseTimestamp("2020-02-12T08:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 8, got.Hour())

	_, err = parseTimestamp("not-a-date")
	assert.Error(t, err)
}

func TestParseSiteRow(t *testing.T) {
	site, err := parseSiteRow([]string{"703", "Ridge North", "43.95", "-114.25", "2510", "ID"})
	require.NoError(t, err)
	assert.Equal(t, "703", site.ID)
	assert.Equal(t, "Ridge North", site.Name)
	assert.InDelta(t, 43.95, site.Latitude, 0.001)
	assert.Equal(t, "ID", site.State)

	_, err = parseSiteRow([]string{"703", "Ridge North"})
	assert.Error(t, err)

	_, err = parseSiteRow([]string{"703", "Ridge North", "bad", "-114.25", "2510"})
	assert.Error(t, err)
}

func TestParseMeasurementRow(t *testing.T) {
	m, err := parseMeasurementRow([]string{"101", "2020-02-12", "42.5", "120.0", "", "magnaprobe", "team-a"})
	require.NoError(t, err)
	assert.Equal(t, "101", m.SiteID)
	assert.InDelta(t, 42.5, m.DepthCM, 0.001)
	require.NotNil(t, m.SWEMM)
	assert.InDelta(t, 120.0, *m.SWEMM, 0.001)
	assert.Nil(t, m.DensityKgM3)
	assert.Equal(t, "magnaprobe", m.Instrument)
	assert.Equal(t, "team-a", m.Observer)

	_, err = parseMeasurementRow([]string{"101"})
	assert.Error(t, err)

	_, err = parseMeasurementRow([]string{"101", "2020-02-12", "not-a-depth"})
	assert.Error(t, err)
}
