// Package listcmd implements the `contacts list` command.
package listcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ports/addressbook/cmd/contacts/shared"
)

// Command implements `contacts list`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the list command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "list",
		Short: "Print all contacts and exit",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, _ []string) error {
	b, backend, err := c.ctx.OpenBook(cmd.Context())
	if err != nil {
		return err
	}
	defer backend.Close()

	out := cmd.OutOrStdout()
	lines := b.Lines()
	if len(lines) == 0 {
		fmt.Fprintln(out, "No contacts saved.")
		return nil
	}
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
	return nil
}
