package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/automator/internal/extract"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the parameter schema of the " + extract.FunctionName + " function",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		data, err := extract.SchemaJSON()
		if err != nil {
			return fmt.Errorf("encoding schema: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
