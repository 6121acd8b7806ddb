package commands

import (
	"github.com/spf13/cobra"

	"github.com/erraggy/oascontract/internal/mcpserver"
)

func newMCPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve contract tools to an MCP client over stdio",
		Long: `Start a Model Context Protocol server on stdin/stdout exposing the route,
list_operations, validate_request and validate_response tools. Defaults are
read from OASCONTRACT_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return mcpserver.Run(cmd.Context())
		},
	}
}
