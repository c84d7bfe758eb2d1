package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/automator/internal/automator"
	"github.com/zjrosen/automator/internal/workflow"
)

var createOutput string

// errCreateFailed is returned after the user-facing message has been
// printed, so Execute only sets the exit status.
var errCreateFailed = errors.New("automation not created")

var createCmd = &cobra.Command{
	Use:   "create <prompt>",
	Short: "Build one automation from a request and print it",
	Long: `Send a plain-language request to the configured language service and
print the resulting automation.

Examples:
  automator create "When I get an email from my boss, send a Slack message"

  # YAML output
  automator create "Save new GitHub PRs to a Google Sheet" --output yaml

  # Parse specific fields with jq
  automator create "Every Monday, post the weekly report" | jq '.action.details'`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringVarP(&createOutput, "output", "o", "json", "output format: json or yaml")
}

func runCreate(cmd *cobra.Command, args []string) error {
	if createOutput != "json" && createOutput != "yaml" {
		return fmt.Errorf("unknown output format %q (want json or yaml)", createOutput)
	}

	cleanup, err := initLogging()
	if err != nil {
		return err
	}
	defer cleanup()

	rt, err := buildRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.shutdown()

	entry, err := rt.service.CreateAutomation(cmd.Context(), args[0])
	if err != nil {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), automator.ErrorMessage(err))
		return errCreateFailed
	}
	return writeAutomation(cmd.OutOrStdout(), entry.Automation, createOutput)
}

func writeAutomation(w io.Writer, a workflow.Automation, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(a); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(a); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		return nil
	}
}
