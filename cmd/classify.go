package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cryoscope/snowkit/internal/classify"
)

var classifyCmd = &cobra.Command{
	Use:   "classify SITE_ID...",
	Short: "Classify site IDs by vegetation and depth",
	Long:  "Decodes the leading digit of each site ID into its vegetation class (treeless, sparse, dense) and depth class (shallow, medium, deep).",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, id := range args {
			veg, depth := classify.Site(id)
			if veg == classify.VegUnknown || depth == classify.DepthUnknown {
				fmt.Printf("%-12s unclassified\n", id)
				continue
			}
			fmt.Printf("%-12s vegetation=%s depth=%s\n", id, veg, depth)
		}
		return nil
	},
}

func init() { rootCmd.AddCommand(classifyCmd) }
