// Package rootcmd wires the root cobra.Command for the contacts CLI binary.
// Run without a subcommand it starts the interactive assistant.
package rootcmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	birthdayscmd "github.com/go-ports/addressbook/cmd/contacts/birthdays"
	configcmd "github.com/go-ports/addressbook/cmd/contacts/config"
	listcmd "github.com/go-ports/addressbook/cmd/contacts/list"
	mcpcmd "github.com/go-ports/addressbook/cmd/contacts/mcp"
	"github.com/go-ports/addressbook/cmd/contacts/shared"
	"github.com/go-ports/addressbook/internal/book"
	"github.com/go-ports/addressbook/internal/buildinfo"
	"github.com/go-ports/addressbook/internal/logger"
	"github.com/go-ports/addressbook/internal/repl"
)

// New creates and returns the root cobra.Command for the contacts CLI.
func New() *cobra.Command {
	ctx := &shared.Context{}

	root := &cobra.Command{
		Use:           "contacts",
		Short:         "Console address book with birthday reminders",
		Version:       buildinfo.Summary(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if err := ctx.LoadConfig(); err != nil {
				return err
			}
			slog.SetDefault(logger.New(&ctx.Config.Log))
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAssistant(cmd, ctx)
		},
	}

	root.PersistentFlags().StringVar(
		&ctx.ConfigPath, "config", "",
		"Config file (default: <user config dir>/addressbook/config.yaml)",
	)
	root.PersistentFlags().StringVar(
		&ctx.BookPath, "book", "",
		"Address book file, overrides book.path (.db/.sqlite/.sqlite3 select SQLite)",
	)

	root.AddCommand(
		listcmd.New(ctx).Cmd(),
		birthdayscmd.New(ctx).Cmd(),
		configcmd.New(ctx).Cmd(),
		mcpcmd.New(ctx).Cmd(),
	)

	return root
}

func runAssistant(cmd *cobra.Command, ctx *shared.Context) error {
	backend, err := ctx.OpenBackend()
	if err != nil {
		return err
	}
	defer backend.Close()

	loop := repl.New(book.New(), backend, cmd.InOrStdin(), cmd.OutOrStdout(), repl.Options{
		Window: ctx.Config.Reminders.WindowDays,
	})
	return loop.Run(cmd.Context())
}
