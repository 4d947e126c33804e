package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/cryoscope/snowkit/internal/report"
	"github.com/cryoscope/snowkit/internal/survey"
)

var (
	querySiteID     string
	queryInstrument string
	queryFrom       string
	queryTo         string
	queryLimit      int
	queryOffset     int
	queryCSV        bool
)

var surveyQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "List measurements matching a filter",
	Long:  "Lists measurements filtered by site, instrument, and recording date range, newest first.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("survey"); err != nil {
			return err
		}

		filter, err := buildFilter()
		if err != nil {
			return err
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

		if queryCSV {
			return report.WriteMeasurementsCSV(os.Stdout, ms)
		}

		for _, m := range ms {
			swe := "-"
			if m.SWEMM != nil {
				swe = fmt.Sprintf("%.1f", *m.SWEMM)
			}
			fmt.Printf("%s  site=%-10s depth=%6.1fcm swe=%-8s %s\n",
				m.RecordedAt.UTC().Format("2006-01-02"), m.SiteID, m.DepthCM, swe, m.Instrument)
		}
		fmt.Printf("%d measurements\n", len(ms))
		return nil
	},
}

// buildFilter assembles a survey.Filter from the query flags.
func buildFilter() (survey.Filter, error) {
	filter := survey.Filter{
		SiteID:     querySiteID,
		Instrument: queryInstrument,
		Limit:      queryLimit,
		Offset:     queryOffset,
	}

	if queryFrom != "" {
		t, err := parseTimestamp(queryFrom)
		if err != nil {
			return survey.Filter{}, eris.Wrap(err, "survey query: parse --from")
		}
		filter.From = &t
	}
	if queryTo != "" {
		t, err := parseTimestamp(queryTo)
		if err != nil {
			return survey.Filter{}, eris.Wrap(err, "survey query: parse --to")
		}
		// Make --to inclusive of the named day.
		t = t.Add(24*time.Hour - time.Nanosecond)
		filter.To = &t
	}

	return filter, nil
}

func init() {
	surveyQueryCmd.Flags().StringVar(&querySiteID, "site", "", "filter by site ID")
	surveyQueryCmd.Flags().StringVar(&queryInstrument, "instrument", "", "filter by instrument")
	surveyQueryCmd.Flags().StringVar(&queryFrom, "from", "", "earliest recording date (YYYY-MM-DD)")
	surveyQueryCmd.Flags().StringVar(&queryTo, "to", "", "latest recording date (YYYY-MM-DD)")
	surveyQueryCmd.Flags().IntVar(&queryLimit, "limit", 0, "max rows (default 1000)")
	surveyQueryCmd.Flags().IntVar(&queryOffset, "offset", 0, "rows to skip")
	surveyQueryCmd.Flags().BoolVar(&queryCSV, "csv", false, "emit CSV instead of a table")
	surveyCmd.AddCommand(surveyQueryCmd)
}
