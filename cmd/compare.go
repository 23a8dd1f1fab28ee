package cmd

import (
	"fmt"
	"os"

	"github.com/sqlplan/sqlplan/internal/comparator"
	"github.com/sqlplan/sqlplan/internal/config"
	"github.com/sqlplan/sqlplan/internal/output"
	"github.com/sqlplan/sqlplan/internal/showplan"

	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare [old] [new]",
	Short: "Compare two execution plans",
	Long: `Compare two execution plans operator by operator.

Inputs are ShowPlan XML files. Either file (but not both) can be "-" to read
from stdin. Comparison covers the first statement of each plan.`,
	Example: `  # Before/after an index change
  sqlplan compare before.sqlplan after.sqlplan

  # Read one plan from stdin
  cat before.xml | sqlplan compare - after.sqlplan`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := resolveFormat(cmd)
		if err != nil {
			return err
		}
		if args[0] == "-" && args[1] == "-" {
			return fmt.Errorf("only one input can read from stdin")
		}

		threshold, _ := cmd.Flags().GetFloat64("threshold")
		if !cmd.Flags().Changed("threshold") {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			threshold = cfg.CompareThresholdPct
		}

		oldPlan, err := showplan.Resolve(args[0], "first ")
		if err != nil {
			return err
		}
		newPlan, err := showplan.Resolve(args[1], "second ")
		if err != nil {
			return err
		}

		oldStmts := oldPlan.Statements()
		newStmts := newPlan.Statements()
		if len(oldStmts) == 0 || len(newStmts) == 0 {
			return fmt.Errorf("both inputs must contain at least one statement")
		}

		c := &comparator.Comparator{ThresholdPct: threshold}
		result := c.Compare(oldStmts[0], newStmts[0])

		switch format {
		case "json":
			return output.RenderJSON(os.Stdout, result)
		default:
			return output.RenderComparisonText(os.Stdout, result)
		}
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().StringP("format", "f", "", "Output format: text, json")
	compareCmd.Flags().Float64P("threshold", "t", comparator.SignificanceThresholdPct, "Significance threshold in percent")
}
