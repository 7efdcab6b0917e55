// Package mcpcmd implements the `contacts mcp` command.
package mcpcmd

import (
	"github.com/spf13/cobra"

	"github.com/go-ports/addressbook/cmd/contacts/shared"
	internalmcp "github.com/go-ports/addressbook/internal/mcp"
)

// Command implements `contacts mcp`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the mcp command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "mcp",
		Short: "Start the address book MCP server (stdio transport)",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, _ []string) error {
	backend, err := c.ctx.OpenBackend()
	if err != nil {
		return err
	}
	defer backend.Close()

	return internalmcp.Serve(cmd.Context(), backend, internalmcp.Options{
		Window: c.ctx.Config.Reminders.WindowDays,
	})
}
