package main

import "github.com/spf13/cobra"

var surveyCmd = &cobra.Command{
	Use:   "survey",
	Short: "Load and query snow-pit survey data",
	Long:  "Manages the snow-survey database: schema migration, CSV loading, measurement queries, and classification pivots.",
}

func init() { rootCmd.AddCommand(surveyCmd) }
