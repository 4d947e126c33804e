// Package report renders pivot summaries and measurement listings to CSV and
// XLSX files.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/cryoscope/snowkit/internal/survey"
)

var pivotHeader = []string{"vegetation", "depth_class", "count", "mean_depth_cm", "min_depth_cm", "max_depth_cm"}

// WritePivotCSV writes a pivot summary as CSV. Empty bins are written with
// zero statistics so the output always has the same shape.
func WritePivotCSV(w io.Writer, res survey.PivotResult) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(pivotHeader); err != nil {
		return eris.Wrap(err, "report: write header")
	}

	for _, bin := range res.Bins {
		if err := cw.Write(pivotRow(bin, string(bin.Vegetation), string(bin.Depth))); err != nil {
			return eris.Wrap(err, "report: write row")
		}
	}
	if res.Unclassified.Count > 0 {
		if err := cw.Write(pivotRow(res.Unclassified, "unclassified", "unclassified")); err != nil {
			return eris.Wrap(err, "report: write row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "report: flush csv")
	}
	return nil
}

func pivotRow(bin survey.Bin, veg, depth string) []string {
	return []string{
		veg,
		depth,
		strconv.Itoa(bin.Count),
		formatDepth(bin.MeanDepth),
		formatDepth(bin.MinDepth),
		formatDepth(bin.MaxDepth),
	}
}

func formatDepth(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// WritePivotXLSX writes a pivot summary as a single-sheet XLSX workbook.
func WritePivotXLSX(path string, res survey.PivotResult) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Pivot")
	if err != nil {
		return eris.Wrap(err, "report: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range pivotHeader {
		header.AddCell().SetString(col)
	}

	addBin := func(bin survey.Bin, veg, depth string) {
		row := sheet.AddRow()
		row.AddCell().SetString(veg)
		row.AddCell().SetString(depth)
		row.AddCell().SetInt(bin.Count)
		row.AddCell().SetFloatWithFormat(bin.MeanDepth, "0.0")
		row.AddCell().SetFloatWithFormat(bin.MinDepth, "0.0")
		row.AddCell().SetFloatWithFormat(bin.MaxDepth, "0.0")
	}

	for _, bin := range res.Bins {
		addBin(bin, string(bin.Vegetation), string(bin.Depth))
	}
	if res.Unclassified.Count > 0 {
		addBin(res.Unclassified, "unclassified", "unclassified")
	}

	totals := sheet.AddRow()
	totals.AddCell().SetString("total")
	totals.AddCell().SetString("")
	totals.AddCell().SetInt(res.Total)

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "report: save xlsx")
	}
	return nil
}

// WriteMeasurementsCSV writes raw measurements as CSV, one row per record.
func WriteMeasurementsCSV(w io.Writer, ms []survey.Measurement) error {
	cw := csv.NewWriter(w)

	header := []string{"id", "site_id", "recorded_at", "depth_cm", "swe_mm", "density_kg_m3", "instrument", "observer"}
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "report: write header")
	}

	for _, m := range ms {
		row := []string{
			m.ID,
			m.SiteID,
			m.RecordedAt.UTC().Format(time.RFC3339),
			formatDepth(m.DepthCM),
			formatOptional(m.SWEMM),
			formatOptional(m.DensityKgM3),
			m.Instrument,
			m.Observer,
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "report: write row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "report: flush csv")
	}
	return nil
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.1f", *v)
}
