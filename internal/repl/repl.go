// Package repl implements the interactive command loop of the address book.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-ports/addressbook/internal/book"
	"github.com/go-ports/addressbook/internal/models"
	"github.com/go-ports/addressbook/internal/storage"
)

const (
	welcome   = "Welcome to your assistant bot!\nIf you need help with the commands, please type \"help\"."
	prompt    = "\nEnter a command: "
	farewell  = "Goodbye!"
	noData    = "No previous data found. Starting with an empty address book."
	saveAsk   = "Do you want to save changes to the address book before exiting? (yes/no): "
	clearAsk  = "Are you sure you want to delete all contacts? (yes/no): "
	invalid   = "Invalid command.\nPlease try again!"
	genericKO = "Something went wrong, please try again."
)

// Options tunes a Loop. Zero values select the defaults.
type Options struct {
	// Window is the number of days the birthdays command looks ahead.
	Window int
	// Now returns the current time; time.Now when nil.
	Now func() time.Time
}

// Loop reads commands line by line, applies them to a book and writes the
// results. It owns the book for its whole lifetime.
type Loop struct {
	book    *book.Book
	backend storage.Backend
	in      io.Reader
	out     io.Writer
	window  int
	now     func() time.Time
	help    string

	lines   <-chan string
	running bool
}

// New returns a loop over b, persisting through backend, reading from in and
// writing to out.
func New(b *book.Book, backend storage.Backend, in io.Reader, out io.Writer, opts Options) *Loop {
	l := &Loop{
		book:    b,
		backend: backend,
		in:      in,
		out:     out,
		window:  opts.Window,
		now:     opts.Now,
		help:    helpText(),
	}
	if l.window <= 0 {
		l.window = book.DefaultWindow
	}
	if l.now == nil {
		l.now = time.Now
	}
	return l
}

// Run loads the book, then processes commands until exit, end of input or
// ctx cancellation. Cancellation and end of input never save. Run only
// returns an error when the initial load fails for a reason other than a
// missing file.
func (l *Loop) Run(ctx context.Context) error {
	switch err := l.book.Load(ctx, l.backend); {
	case errors.Is(err, book.ErrNoData):
		l.println(noData)
	case err != nil:
		return err
	}

	done := make(chan struct{})
	defer close(done)
	l.lines = readLines(l.in, done)
	l.running = true
	l.println(welcome)

	for l.running {
		l.print(prompt)
		line, ok := l.readLine(ctx)
		if !ok {
			l.stop(ctx)
			break
		}
		l.dispatch(ctx, line)
	}
	return nil
}

// stop terminates the loop after end of input or cancellation.
func (l *Loop) stop(ctx context.Context) {
	l.println("")
	if l.book.Modified() {
		l.println("Unsaved changes were discarded.")
	}
	if ctx.Err() != nil {
		slog.Info("command loop interrupted", "modified", l.book.Modified())
	}
	l.println(farewell)
	l.running = false
}

// ---------------------------------------------------------------------------
// Dispatch
// ---------------------------------------------------------------------------

// dispatch runs one input line. Errors and panics from the command are
// reported to the user and never stop the loop.
func (l *Loop) dispatch(ctx context.Context, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	cmd, ok := lookup(name)
	if !ok {
		l.println(invalid)
		return
	}

	defer func() {
		if v := recover(); v != nil {
			slog.Error("command panicked", "command", name, "recovered", v)
			l.println(genericKO)
		}
	}()

	if cmd.nargs >= 0 && len(args) != cmd.nargs {
		l.println(cmd.usage)
		return
	}

	msg, err := cmd.run(ctx, l, args)
	if err != nil {
		l.println(explain(err))
		return
	}
	if msg != "" {
		l.println(msg)
	}
}

// explain turns a command error into a user-facing message.
func explain(err error) string {
	switch {
	case errors.Is(err, models.ErrPhoneFormat):
		return "Phone number must consist of 10 digits!"
	case errors.Is(err, models.ErrDateFormat):
		return "Birthday must be a valid date in DD/MM/YYYY format!"
	case errors.Is(err, book.ErrNotFound):
		return "Contact not found or not existing!"
	case errors.Is(err, book.ErrExists):
		return "A contact with that name already exists!"
	default:
		slog.Error("command failed", "err", err)
		return "Error: " + err.Error()
	}
}

// ---------------------------------------------------------------------------
// Input
// ---------------------------------------------------------------------------

// readLines feeds lines from r into the returned channel, closing it at EOF
// or once done is closed. A reader blocked inside r returns after its next
// line.
func readLines(r io.Reader, done <-chan struct{}) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case ch <- scanner.Text():
			case <-done:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			slog.Warn("reading input", "err", err)
		}
	}()
	return ch
}

// readLine blocks for the next line; ok is false on end of input or cancellation.
func (l *Loop) readLine(ctx context.Context) (string, bool) {
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-l.lines:
		return line, ok
	}
}

// confirm prints question and reports whether the answer is yes.
// End of input or cancellation counts as no.
func (l *Loop) confirm(ctx context.Context, question string) bool {
	l.print(question)
	answer, ok := l.readLine(ctx)
	if !ok {
		l.println("")
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "yes", "y":
		return true
	default:
		return false
	}
}

func (l *Loop) print(s string) { fmt.Fprint(l.out, s) }

func (l *Loop) println(s string) { fmt.Fprintln(l.out, s) }
