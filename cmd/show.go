package cmd

import (
	"os"

	"github.com/sqlplan/sqlplan/internal/analyzer"
	"github.com/sqlplan/sqlplan/internal/output"
	"github.com/sqlplan/sqlplan/internal/showplan"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "Render the operator tree",
	Long: `Render an execution plan's operator tree with per-operator cost percentage,
row counts and warning markers.

Use "-" to read from stdin. If no file is provided, enters interactive mode.`,
	Example: `  sqlplan show slow-query.sqlplan

  # Tree as JSON (the full parsed structure)
  sqlplan show slow-query.sqlplan --format json`,
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

		switch format {
		case "json":
			return output.RenderJSON(os.Stdout, p)
		default:
			return output.RenderTree(os.Stdout, p)
		}
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringP("format", "f", "", "Output format: text, json")
}
