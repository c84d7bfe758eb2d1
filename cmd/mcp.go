package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/automator/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve automations as MCP tools over stdio",
	Long: `Run an MCP server on stdin/stdout exposing create_automation,
list_automations, update_automation and delete_automation, plus the
automations list and the function schema as resources.

Automations live in memory for the lifetime of the process. Logs never go
to stdout; use --debug to write them to debug.log.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(_ *cobra.Command, _ []string) error {
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

	srv, err := mcpserver.New(rt.service, rt.tracer.Tracer(), version)
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}
	return srv.ServeStdio()
}
