package repl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/go-ports/addressbook/internal/book"
	"github.com/go-ports/addressbook/internal/models"
	"github.com/go-ports/addressbook/internal/storage"
)

// repeatLines is an input that never ends.
type repeatLines string

func (r repeatLines) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		n += copy(p[n:], r)
	}
	return n, nil
}

// closedWithin drains ch and reports whether it was closed before d elapsed.
func closedWithin(ch <-chan string, d time.Duration) bool {
	timeout := time.After(d)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return true
			}
		case <-timeout:
			return false
		}
	}
}

func TestDispatch_RecoversFromPanic(t *testing.T) {
	c := qt.New(t)

	var out bytes.Buffer
	// A loop without a book makes every contact command panic.
	l := &Loop{out: &out, running: true}
	l.dispatch(context.Background(), "all")

	c.Assert(out.String(), qt.Equals, genericKO+"\n")
	c.Assert(l.running, qt.IsTrue)
}

func TestExplain(t *testing.T) {
	c := qt.New(t)

	cases := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("%w: %w", book.ErrInvalid, models.ErrPhoneFormat), "Phone number must consist of 10 digits!"},
		{fmt.Errorf("%w: %w", book.ErrInvalid, models.ErrDateFormat), "Birthday must be a valid date in DD/MM/YYYY format!"},
		{fmt.Errorf("%w: Bob", book.ErrNotFound), "Contact not found or not existing!"},
		{fmt.Errorf("%w: Bob", book.ErrExists), "A contact with that name already exists!"},
		{errors.New("boom"), "Error: boom"},
	}

	for _, tc := range cases {
		c.Run(tc.err.Error(), func(c *qt.C) {
			c.Assert(explain(tc.err), qt.Equals, tc.want)
		})
	}
}

func TestLookup(t *testing.T) {
	c := qt.New(t)

	for _, cmd := range commands {
		got, ok := lookup(cmd.name)
		c.Assert(ok, qt.IsTrue, qt.Commentf("command %q", cmd.name))
		c.Assert(got.name, qt.Equals, cmd.name)
		if cmd.nargs > 0 {
			c.Assert(cmd.usage, qt.Not(qt.Equals), "", qt.Commentf("command %q has no usage", cmd.name))
		}
	}

	_, ok := lookup("ADD")
	c.Assert(ok, qt.IsFalse)
}

func TestReadLines_StopsWhenDone(t *testing.T) {
	c := qt.New(t)

	done := make(chan struct{})
	lines := readLines(repeatLines("all\n"), done)
	c.Assert(<-lines, qt.Equals, "all")

	close(done)
	c.Assert(closedWithin(lines, 5*time.Second), qt.IsTrue)
}

func TestRun_ReleasesInputReader(t *testing.T) {
	c := qt.New(t)

	in := io.MultiReader(strings.NewReader("exit\n"), repeatLines("all\n"))
	l := New(book.New(), storage.NewJSONFile(filepath.Join(t.TempDir(), "address_book.json")), in, io.Discard, Options{})
	c.Assert(l.Run(context.Background()), qt.IsNil)

	c.Assert(closedWithin(l.lines, 5*time.Second), qt.IsTrue)
}
