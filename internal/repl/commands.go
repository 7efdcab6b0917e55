package repl

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-ports/addressbook/internal/book"
)

// command is one entry of the command table. nargs is the exact number of
// arguments required; commands with nargs < 0 ignore their arguments.
type command struct {
	name  string
	nargs int
	usage string
	help  string
	run   func(ctx context.Context, l *Loop, args []string) (string, error)
}

// commands is the command table in help order. exit and close share a handler.
var commands = []command{
	{name: "hello", nargs: -1, help: "hello - Greet the assistant", run: runHello},
	{name: "help", nargs: -1, help: "help - Show this list of commands", run: runHelp},
	{
		name: "add", nargs: 2, usage: "Please provide both a name and a phone number!",
		help: "add <name> <phone> - Add a new contact", run: runAdd,
	},
	{
		name: "update", nargs: 2, usage: "Please provide both a name and a phone number!",
		help: "update <name> <phone> - Change the phone number of a contact", run: runUpdate,
	},
	{
		name: "update-name", nargs: 2, usage: "Please provide both the old and new names!",
		help: "update-name <old> <new> - Rename a contact", run: runRename,
	},
	{
		name: "show", nargs: 1, usage: "Please provide the name of the contact.",
		help: "show <name> - Show the phone number of a contact", run: runShow,
	},
	{name: "all", nargs: -1, help: "all - Show all contacts", run: runAll},
	{
		name: "delete", nargs: 1, usage: "Please provide the name of the contact.",
		help: "delete <name> - Delete a contact", run: runDelete,
	},
	{name: "clear_all", nargs: -1, help: "clear_all - Delete all contacts (asks for confirmation)", run: runClearAll},
	{
		name: "add-birthday", nargs: 2, usage: "Please provide both name and birthday in DD/MM/YYYY format.",
		help: "add-birthday <name> <DD/MM/YYYY> - Set the birthday of a contact", run: runAddBirthday,
	},
	{
		name: "show-birthday", nargs: 1, usage: "Please provide the name of the contact.",
		help: "show-birthday <name> - Show the birthday of a contact", run: runShowBirthday,
	},
	{name: "birthdays", nargs: -1, help: "birthdays - Show birthdays in the next week", run: runBirthdays},
	{name: "exit", nargs: -1, help: "exit, close - Leave the assistant (asks to save changes)", run: runExit},
	{name: "close", nargs: -1, run: runExit},
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

func runHello(context.Context, *Loop, []string) (string, error) {
	return "Hi, how can I help you today?", nil
}

func runHelp(_ context.Context, l *Loop, _ []string) (string, error) {
	return l.help, nil
}

func helpText() string {
	var sb strings.Builder
	sb.WriteString("Please use one of the commands below:")
	for _, c := range commands {
		if c.help == "" {
			continue
		}
		sb.WriteString("\n  ")
		sb.WriteString(c.help)
	}
	return sb.String()
}

func runAdd(_ context.Context, l *Loop, args []string) (string, error) {
	name, phone := args[0], args[1]
	err := l.book.Add(name, phone)
	if errors.Is(err, book.ErrExists) {
		return fmt.Sprintf("Contact \"%s\" already exists!", name), nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Contact \"%s\" added successfully!", name), nil
}

func runUpdate(_ context.Context, l *Loop, args []string) (string, error) {
	name, phone := args[0], args[1]
	if err := l.book.Update(name, phone); err != nil {
		return "", err
	}
	return fmt.Sprintf("Contact \"%s\" successfully updated!", name), nil
}

func runRename(_ context.Context, l *Loop, args []string) (string, error) {
	oldName, newName := args[0], args[1]
	err := l.book.Rename(oldName, newName)
	if errors.Is(err, book.ErrExists) {
		return fmt.Sprintf("Contact \"%s\" already exists, choose another name!", newName), nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Contact name updated from \"%s\" to \"%s\" successfully!", oldName, newName), nil
}

func runShow(_ context.Context, l *Loop, args []string) (string, error) {
	phone, err := l.book.Phone(args[0])
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Phone number for \"%s\": %s", args[0], phone), nil
}

func runAll(_ context.Context, l *Loop, _ []string) (string, error) {
	lines := l.book.Lines()
	if len(lines) == 0 {
		return "No contacts saved.", nil
	}
	return strings.Join(lines, "\n"), nil
}

func runDelete(_ context.Context, l *Loop, args []string) (string, error) {
	if !l.book.Delete(args[0]) {
		return fmt.Sprintf("Contact \"%s\" does not exist!", args[0]), nil
	}
	return fmt.Sprintf("Contact \"%s\" deleted successfully!", args[0]), nil
}

func runClearAll(ctx context.Context, l *Loop, _ []string) (string, error) {
	if !l.confirm(ctx, clearAsk) {
		return "No contacts were deleted.", nil
	}
	l.book.Clear()
	return "All contacts deleted successfully!", nil
}

func runAddBirthday(_ context.Context, l *Loop, args []string) (string, error) {
	name := args[0]
	if err := l.book.SetBirthday(name, args[1]); err != nil {
		return "", err
	}
	return fmt.Sprintf("Birthday successfully added for contact \"%s\"!", name), nil
}

func runShowBirthday(_ context.Context, l *Loop, args []string) (string, error) {
	name := args[0]
	d, ok, err := l.book.Birthday(name)
	if err != nil {
		return "", err
	}
	if !ok {
		return fmt.Sprintf("No birthday found for contact \"%s\"!", name), nil
	}
	return fmt.Sprintf("Birthday for contact \"%s\": %s", name, d), nil
}

func runBirthdays(_ context.Context, l *Loop, _ []string) (string, error) {
	return FormatUpcoming(l.book.Upcoming(l.now(), l.window)), nil
}

// FormatUpcoming renders birthday groups as "Weekday: A, B" lines.
func FormatUpcoming(groups []book.WeekdayGroup) string {
	if len(groups) == 0 {
		return "No birthdays in the next week."
	}
	lines := make([]string, 0, len(groups))
	for _, g := range groups {
		lines = append(lines, g.Day.String()+": "+strings.Join(g.Names, ", "))
	}
	return strings.Join(lines, "\n")
}

// runExit offers to save pending changes and stops the loop. A failed save
// keeps the loop running so the changes are not lost.
func runExit(ctx context.Context, l *Loop, _ []string) (string, error) {
	if l.book.Modified() && l.confirm(ctx, saveAsk) {
		if err := l.book.Save(ctx, l.backend); err != nil {
			return "", fmt.Errorf("could not save the address book: %w", err)
		}
		l.println("Address book saved.")
	}
	l.running = false
	return farewell, nil
}
