package cmd

import (
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var Version = "dev"

func init() {
	if Version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "(devel)" {
			Version = info.Main.Version
		}
	}
	rootCmd.Version = Version
}

var rootCmd = &cobra.Command{
	Use:          "sqlplan",
	SilenceUsage: true,
	Short:        "Analyze and compare SQL Server execution plans",
	Long: `sqlplan is a CLI tool for analyzing SQL Server execution plans (ShowPlan XML).

It parses a plan into an operator tree with per-operator cost attribution,
flags common performance anti-patterns, and diffs two plans.`,
	Example: `  # Analyze a saved plan
  sqlplan analyze slow-query.sqlplan

  # Render the operator tree with cost percentages
  sqlplan show slow-query.sqlplan

  # Compare two plans
  sqlplan compare before.sqlplan after.sqlplan`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
