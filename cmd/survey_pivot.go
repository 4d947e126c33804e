package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cryoscope/snowkit/internal/report"
	"github.com/cryoscope/snowkit/internal/survey"
)

var (
	pivotCSV  bool
	pivotXLSX string
)

var surveyPivotCmd = &cobra.Command{
	Use:   "pivot",
	Short: "Pivot measurements into classification bins",
	Long:  "Buckets measurements by the vegetation and depth classes encoded in their site IDs and prints per-bin depth statistics. Accepts the same filter flags as query.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("survey"); err != nil {
			return err
		}

		filter, err := buildFilter()
		if err != nil {
			return err
		}
		// Pivot wants the full matching set unless the caller caps it.
		if filter.Limit == 0 {
			filter.Limit = 1_000_000
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		ms, err := st.ListMeasurements(ctx, filter)
		if err != nil {
			return err
		}

		res := survey.Pivot(ms)

		if pivotXLSX != "" {
			if err := report.WritePivotXLSX(pivotXLSX, res); err != nil {
				return err
			}
			zap.L().Info("pivot written", zap.String("file", pivotXLSX), zap.Int("total", res.Total))
			return nil
		}
		if pivotCSV {
			return report.WritePivotCSV(os.Stdout, res)
		}

		fmt.Printf("%-10s %-8s %6s %10s %10s %10s\n", "vegetation", "depth", "count", "mean_cm", "min_cm", "max_cm")
		for _, bin := range res.Bins {
			fmt.Printf("%-10s %-8s %6d %10.1f %10.1f %10.1f\n",
				bin.Vegetation, bin.Depth, bin.Count, bin.MeanDepth, bin.MinDepth, bin.MaxDepth)
		}
		if res.Unclassified.Count > 0 {
			u := res.Unclassified
			fmt.Printf("%-19s %6d %10.1f %10.1f %10.1f\n", "unclassified", u.Count, u.MeanDepth, u.MinDepth, u.MaxDepth)
		}
		fmt.Printf("total: %d\n", res.Total)
		return nil
	},
}

func init() {
	surveyPivotCmd.Flags().StringVar(&querySiteID, "site", "", "filter by site ID")
	surveyPivotCmd.Flags().StringVar(&queryInstrument, "instrument", "", "filter by instrument")
	surveyPivotCmd.Flags().StringVar(&queryFrom, "from", "", "earliest recording date (YYYY-MM-DD)")
	surveyPivotCmd.Flags().StringVar(&queryTo, "to", "", "latest recording date (YYYY-MM-DD)")
	surveyPivotCmd.Flags().IntVar(&queryLimit, "limit", 0, "cap the measurement set")
	surveyPivotCmd.Flags().BoolVar(&pivotCSV, "csv", false, "emit CSV instead of a table")
	surveyPivotCmd.Flags().StringVar(&pivotXLSX, "xlsx", "", "write an XLSX workbook to this path")
	surveyCmd.AddCommand(surveyPivotCmd)
}
