package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/cryoscope/snowkit/internal/classify"
)

var surveyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show per-site measurement coverage",
	Long:  "Displays measurement counts, depth ranges, and classification for every site with data.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("survey"); err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		stats, err := st.SiteStats(ctx)
		if err != nil {
			return eris.Wrap(err, "survey status")
		}

		fmt.Println("=== Survey Status ===")
		fmt.Printf("%-10s %-9s %-8s %6s %10s %10s %12s\n",
			"site", "veg", "depth", "count", "mean_cm", "max_cm", "last_record")

		total := 0
		for _, s := range stats {
			veg, depth := classify.Site(s.SiteID)
			vegLabel, depthLabel := string(veg), string(depth)
			if veg == classify.VegUnknown {
				vegLabel = "-"
			}
			if depth == classify.DepthUnknown {
				depthLabel = "-"
			}
			fmt.Printf("%-10s %-9s %-8s %6d %10.1f %10.1f %12s\n",
				s.SiteID, vegLabel, depthLabel, s.Count, s.MeanDepth, s.MaxDepth,
				s.LastRecord.UTC().Format("2006-01-02"))
			total += s.Count
		}

		fmt.Printf("\n%d sites, %d measurements\n", len(stats), total)
		return nil
	},
}

func init() {
	surveyCmd.AddCommand(surveyStatusCmd)
}
