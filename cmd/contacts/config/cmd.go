// Package configcmd implements the `contacts config` command group.
package configcmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/go-ports/addressbook/cmd/contacts/shared"
	"github.com/go-ports/addressbook/internal/config"
)

const configTemplate = `# Address book configuration

# Where contacts are stored. Relative paths are resolved against the
# working directory. Files ending in .db, .sqlite or .sqlite3 use SQLite.
book:
  path: address_book.json
  backend: auto                 # auto | json | sqlite

# Look-ahead of the birthdays command, today included.
reminders:
  window_days: 7

# Diagnostics go to stderr unless a file is set. /dev/null silences them.
log:
  level: warn                   # debug | info | warn | error
  file: ""
  format: text                  # text | json
`

// Command implements `contacts config`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the config command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE:  c.runShow,
	}
	c.cmd.AddCommand(newConfigInit(ctx))
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) runShow(cmd *cobra.Command, _ []string) error {
	b, err := config.Marshal(c.ctx.Config)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if path := c.ctx.ConfigFile(); path != "" {
		fmt.Fprintf(out, "# %s\n", path)
	}
	fmt.Fprint(out, string(b))
	return nil
}

// ---------------------------------------------------------------------------
// config init
// ---------------------------------------------------------------------------

func newConfigInit(ctx *shared.Context) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a starter config.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath := ctx.ConfigFile()
			if cfgPath == "" {
				return errors.New("config init: cannot determine the user config directory, use --config")
			}
			out := cmd.OutOrStdout()
			if _, err := os.Stat(cfgPath); err == nil && !force {
				fmt.Fprintf(out, "Config already exists at %s\n", cfgPath)
				fmt.Fprintln(out, "Use --force to overwrite.")
				return nil
			}
			if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(cfgPath, []byte(configTemplate), 0o600); err != nil {
				return err
			}
			fmt.Fprintf(out, "Created %s\n", cfgPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing config")
	return cmd
}
