package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSites_BadRowStopsStream(t *testing.T) {
	st := newTestStore(t)

	// A bad row up front followed by enough valid rows to overflow the
	// stream buffer. Without cancellation the reader goroutine would stay
	// blocked on the row channel after the early return.
	var b strings.Builder
	b.WriteString("id,name,lat,lon,elev\n")
	b.WriteString("101,Banner Summit,44.3,-115.2,not-a-number\n")
	for i := range 200 {
		fmt.Fprintf(&b, "4A%03d,Filler %d,44.0,-115.0,2000\n", i, i)
	}
	path := filepath.Join(t.TempDir(), "sites.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))

	before := runtime.NumGoroutine()
	_, err := loadSites(context.Background(), st, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "elevation")

	require.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, 2*time.Second, 10*time.Millisecond, "csv stream goroutine should exit after load error")
}

func TestLoadMeasurements_BadRowStopsStream(t *testing.T) {
	st := newTestStore(t)

	var b strings.Builder
	b.WriteString("site_id,recorded_at,depth_cm\n")
	b.WriteString("101,2020-02-04,not-a-depth\n")
	for i := range 200 {
		fmt.Fprintf(&b, "101,2020-02-04,%d\n", i)
	}
	path := filepath.Join(t.TempDir(), "measurements.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))

	before := runtime.NumGoroutine()
	_, err := loadMeasurements(context.Background(), st, path, "batch-test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "depth_cm")

	require.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, 2*time.Second, 10*time.Millisecond, "csv stream goroutine should exit after load error")
}
