package cmd

import (
	"fmt"
	"os"

	"github.com/sqlplan/sqlplan/internal/analyzer"
	"github.com/sqlplan/sqlplan/internal/config"
	"github.com/sqlplan/sqlplan/internal/output"
	"github.com/sqlplan/sqlplan/internal/showplan"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze an execution plan",
	Long: `Analyze a SQL Server execution plan and report performance findings.

Input is ShowPlan XML: a .sqlplan file saved from SSMS, the XML returned by
sys.dm_exec_query_plan, or an actual-execution plan captured by a monitoring
tool. Use "-" to read from stdin. If no file is provided, enters interactive
mode.`,
	Example: `  # Analyze from file
  sqlplan analyze slow-query.sqlplan

  # Read from stdin
  cat plan.xml | sqlplan analyze -

  # JSON report for tooling
  sqlplan analyze slow-query.sqlplan --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := resolveFormat(cmd)
		if err != nil {
			return err
		}

		var file string
		if len(args) > 0 {
			file = args[0]
		}

		p, err := showplan.Resolve(file, "")
		if err != nil {
			return err
		}

		analyzer.Analyze(p)
		rep := output.BuildReport(p)

		switch format {
		case "json":
			return output.RenderJSON(os.Stdout, rep)
		default:
			return output.RenderAnalysisText(os.Stdout, rep)
		}
	},
}

// resolveFormat applies the --format flag over the configured default.
func resolveFormat(cmd *cobra.Command) (string, error) {
	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		cfg, err := config.Load()
		if err != nil {
			return "", err
		}
		format = cfg.Format
	}
	if format != "text" && format != "json" {
		return "", fmt.Errorf("invalid output format %q: must be \"text\" or \"json\"", format)
	}
	return format, nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringP("format", "f", "", "Output format: text, json")
}
