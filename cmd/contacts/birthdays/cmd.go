// Package birthdayscmd implements the `contacts birthdays` command.
package birthdayscmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-ports/addressbook/cmd/contacts/shared"
	"github.com/go-ports/addressbook/internal/repl"
)

// Command implements `contacts birthdays`.
type Command struct {
	ctx  *shared.Context
	cmd  *cobra.Command
	days int
}

// New creates the birthdays command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "birthdays",
		Short: "Print upcoming birthdays grouped by weekday and exit",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	c.cmd.Flags().IntVar(&c.days, "days", 0, "Look-ahead window in days (default: reminders.window_days)")
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

	days := c.days
	if days <= 0 {
		days = c.ctx.Config.Reminders.WindowDays
	}
	fmt.Fprintln(cmd.OutOrStdout(), repl.FormatUpcoming(b.Upcoming(time.Now(), days)))
	return nil
}
