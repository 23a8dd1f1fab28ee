package cmd

import (
	"fmt"

	"github.com/sqlplan/sqlplan/internal/config"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config file with example template",
	Long: `Create the sqlplan config file with a commented template.

The config stores the default output format and the comparison significance
threshold. An existing config file is not overwritten unless --force is set.`,
	Example: `  # Create default config
  sqlplan init

  # Overwrite existing config
  sqlplan init --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		path, err := config.Init(force)
		if err != nil {
			return err
		}

		fmt.Printf("Config written to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolP("force", "f", false, "Overwrite existing config file")
}
