package book_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/go-ports/addressbook/internal/book"
	"github.com/go-ports/addressbook/internal/models"
	"github.com/go-ports/addressbook/internal/storage"
)

// newBook returns a book holding the given name/phone pairs, with the dirty
// flag cleared.
func newBook(c *qt.C, pairs ...string) *book.Book {
	c.TB.Helper()
	b := book.New()
	for i := 0; i+1 < len(pairs); i += 2 {
		c.Assert(b.Add(pairs[i], pairs[i+1]), qt.IsNil)
	}
	c.Assert(b.Save(context.Background(), storage.NewJSONFile(filepath.Join(c.TB.TempDir(), "seed.json"))), qt.IsNil)
	return b
}

// names returns the names of every contact in iteration order.
func names(b *book.Book) []string {
	out := make([]string, 0, b.Len())
	for _, ct := range b.All() {
		out = append(out, ct.Name)
	}
	return out
}

// ---------------------------------------------------------------------------
// Scenario
// ---------------------------------------------------------------------------

func TestBook_Scenario(t *testing.T) {
	c := qt.New(t)
	b := book.New()

	c.Assert(b.Add("Alice", "0123456789"), qt.IsNil)
	phone, err := b.Phone("Alice")
	c.Assert(err, qt.IsNil)
	c.Assert(phone, qt.Equals, "0123456789")

	c.Assert(b.Add("Alice", "0123456789"), qt.ErrorIs, book.ErrExists)

	c.Assert(b.Update("Alice", "9876543210"), qt.IsNil)
	phone, err = b.Phone("Alice")
	c.Assert(err, qt.IsNil)
	c.Assert(phone, qt.Equals, "9876543210")

	c.Assert(b.Delete("Alice"), qt.IsTrue)
	c.Assert(b.Lines(), qt.HasLen, 0)

	c.Assert(b.SetBirthday("Nobody", "01/01/2000"), qt.ErrorIs, book.ErrNotFound)
}

// ---------------------------------------------------------------------------
// Add
// ---------------------------------------------------------------------------

func TestAdd_HappyPath(t *testing.T) {
	c := qt.New(t)

	for _, phone := range []string{"0123456789", "0000000000", "9999999999"} {
		c.Run(phone, func(c *qt.C) {
			b := book.New()
			c.Assert(b.Add("Alice", phone), qt.IsNil)
			got, err := b.Phone("Alice")
			c.Assert(err, qt.IsNil)
			c.Assert(got, qt.Equals, phone)
			c.Assert(b.Modified(), qt.IsTrue)

			_, ok, err := b.Birthday("Alice")
			c.Assert(err, qt.IsNil)
			c.Assert(ok, qt.IsFalse)
		})
	}
}

func TestAdd_FailurePath(t *testing.T) {
	c := qt.New(t)

	c.Run("malformed phone", func(c *qt.C) {
		b := newBook(c)
		for _, phone := range []string{"123", "01234567890", "abcdefghij", ""} {
			err := b.Add("Alice", phone)
			c.Assert(err, qt.ErrorIs, book.ErrInvalid)
			c.Assert(err, qt.ErrorIs, models.ErrPhoneFormat)
		}
		c.Assert(b.Len(), qt.Equals, 0)
		c.Assert(b.Modified(), qt.IsFalse)
	})

	c.Run("duplicate never mutates", func(c *qt.C) {
		b := newBook(c, "Alice", "0123456789")
		c.Assert(b.Add("Alice", "9876543210"), qt.ErrorIs, book.ErrExists)
		phone, err := b.Phone("Alice")
		c.Assert(err, qt.IsNil)
		c.Assert(phone, qt.Equals, "0123456789")
		c.Assert(b.Len(), qt.Equals, 1)
		c.Assert(b.Modified(), qt.IsFalse)
	})

	c.Run("names are case-sensitive", func(c *qt.C) {
		b := newBook(c, "Alice", "0123456789")
		c.Assert(b.Add("alice", "0123456789"), qt.IsNil)
		c.Assert(b.Len(), qt.Equals, 2)
	})
}

// ---------------------------------------------------------------------------
// Update / Rename
// ---------------------------------------------------------------------------

func TestUpdate_FailurePath(t *testing.T) {
	c := qt.New(t)
	b := newBook(c, "Alice", "0123456789")

	c.Assert(b.Update("Alice", "12"), qt.ErrorIs, book.ErrInvalid)
	c.Assert(b.Update("Bob", "9876543210"), qt.ErrorIs, book.ErrNotFound)
	c.Assert(b.Modified(), qt.IsFalse)
}

func TestRename_HappyPath(t *testing.T) {
	c := qt.New(t)

	c.Run("moves record and keeps order", func(c *qt.C) {
		b := newBook(c, "Alice", "0123456789", "Carol", "5555555555")
		c.Assert(b.SetBirthday("Carol", "03/04/1985"), qt.IsNil)

		c.Assert(b.Rename("Carol", "Bob"), qt.IsNil)
		c.Assert(names(b), qt.DeepEquals, []string{"Alice", "Bob"})

		phone, err := b.Phone("Bob")
		c.Assert(err, qt.IsNil)
		c.Assert(phone, qt.Equals, "5555555555")
		bd, ok, err := b.Birthday("Bob")
		c.Assert(err, qt.IsNil)
		c.Assert(ok, qt.IsTrue)
		c.Assert(bd.String(), qt.Equals, "03/04/1985")

		_, err = b.Phone("Carol")
		c.Assert(err, qt.ErrorIs, book.ErrNotFound)
	})

	c.Run("same name is a no-op", func(c *qt.C) {
		b := newBook(c, "Alice", "0123456789")
		c.Assert(b.Rename("Alice", "Alice"), qt.IsNil)
		c.Assert(b.Modified(), qt.IsFalse)
	})
}

func TestRename_FailurePath(t *testing.T) {
	c := qt.New(t)
	b := newBook(c, "Alice", "0123456789", "Bob", "9876543210")

	c.Assert(b.Rename("Nobody", "X"), qt.ErrorIs, book.ErrNotFound)
	c.Assert(b.Rename("Alice", "Bob"), qt.ErrorIs, book.ErrExists)

	phone, err := b.Phone("Bob")
	c.Assert(err, qt.IsNil)
	c.Assert(phone, qt.Equals, "9876543210")
	c.Assert(b.Len(), qt.Equals, 2)
	c.Assert(b.Modified(), qt.IsFalse)
}

// ---------------------------------------------------------------------------
// Delete / Clear
// ---------------------------------------------------------------------------

func TestDelete_AbsentNameIsNoop(t *testing.T) {
	c := qt.New(t)
	b := newBook(c, "Alice", "0123456789")

	c.Assert(b.Delete("Bob"), qt.IsFalse)
	c.Assert(b.Len(), qt.Equals, 1)
	c.Assert(b.Modified(), qt.IsFalse)
}

func TestClear(t *testing.T) {
	c := qt.New(t)
	b := newBook(c, "Alice", "0123456789", "Bob", "9876543210")

	b.Clear()
	c.Assert(b.Len(), qt.Equals, 0)
	c.Assert(b.Lines(), qt.HasLen, 0)
	c.Assert(b.Modified(), qt.IsTrue)

	c.Assert(b.Add("Alice", "0123456789"), qt.IsNil)
	c.Assert(names(b), qt.DeepEquals, []string{"Alice"})
}

// ---------------------------------------------------------------------------
// Birthdays
// ---------------------------------------------------------------------------

func TestSetBirthday(t *testing.T) {
	c := qt.New(t)
	b := newBook(c, "Alice", "0123456789")

	c.Assert(b.SetBirthday("Alice", "2023-01-01"), qt.ErrorIs, book.ErrInvalid)
	c.Assert(b.SetBirthday("Alice", "31/02/2000"), qt.ErrorIs, book.ErrInvalid)
	c.Assert(b.Modified(), qt.IsFalse)

	c.Assert(b.SetBirthday("Alice", "1/2/1990"), qt.IsNil)
	c.Assert(b.Modified(), qt.IsTrue)
	bd, ok, err := b.Birthday("Alice")
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
	c.Assert(bd, qt.Equals, models.Date{Year: 1990, Month: time.February, Day: 1})
	c.Assert(b.Lines(), qt.DeepEquals, []string{"Alice: 0123456789, Birthday: 01/02/1990"})

	_, _, err = b.Birthday("Bob")
	c.Assert(err, qt.ErrorIs, book.ErrNotFound)
}

// ---------------------------------------------------------------------------
// Ordering
// ---------------------------------------------------------------------------

func TestLines_AlwaysSortedByName(t *testing.T) {
	c := qt.New(t)

	rng := rand.New(rand.NewPCG(1, 2))
	pool := []string{"delta", "Alpha", "charlie", "Bravo", "echo", "Zulu", "alpha", "mike", "Oscar", "kilo"}
	b := book.New()

	for i := range 500 {
		name := pool[rng.IntN(len(pool))]
		other := pool[rng.IntN(len(pool))]
		phone := fmt.Sprintf("%010d", rng.IntN(1_000_000_000))
		switch rng.IntN(4) {
		case 0:
			_ = b.Add(name, phone)
		case 1:
			_ = b.Update(name, phone)
		case 2:
			_ = b.Rename(name, other)
		case 3:
			b.Delete(name)
		}

		got := names(b)
		c.Assert(slices.IsSorted(got), qt.IsTrue, qt.Commentf("step %d: %v", i, got))
		c.Assert(b.Lines(), qt.HasLen, len(got))
	}
}

// ---------------------------------------------------------------------------
// Load / Save
// ---------------------------------------------------------------------------

func TestLoadSave_RoundTrip(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	for _, file := range []string{"address_book.json", "address_book.db"} {
		c.Run(file, func(c *qt.C) {
			backend, err := storage.Open(filepath.Join(t.TempDir(), file), storage.KindAuto)
			c.Assert(err, qt.IsNil)
			defer backend.Close()

			b := book.New()
			c.Assert(b.Add("Bob", "9876543210"), qt.IsNil)
			c.Assert(b.Add("Alice", "0123456789"), qt.IsNil)
			c.Assert(b.SetBirthday("Alice", "29/02/2000"), qt.IsNil)
			c.Assert(b.Save(ctx, backend), qt.IsNil)
			c.Assert(b.Modified(), qt.IsFalse)

			fresh := book.New()
			c.Assert(fresh.Load(ctx, backend), qt.IsNil)
			c.Assert(fresh.All(), qt.DeepEquals, b.All())
			c.Assert(fresh.Modified(), qt.IsFalse)
		})
	}
}

func TestLoad_MissingFileIsInformational(t *testing.T) {
	c := qt.New(t)

	b := book.New()
	err := b.Load(context.Background(), storage.NewJSONFile(filepath.Join(t.TempDir(), "missing.json")))
	c.Assert(err, qt.ErrorIs, book.ErrNoData)
	c.Assert(b.Len(), qt.Equals, 0)
	c.Assert(b.Modified(), qt.IsFalse)
}

func TestLoad_LenientOnPhones(t *testing.T) {
	c := qt.New(t)

	path := filepath.Join(t.TempDir(), "book.json")
	content := `{"zed": {"phone": "12", "birthday": null}, "Amy": {"phone": "0123456789", "birthday": "05/06/1970"}}`
	c.Assert(os.WriteFile(path, []byte(content), 0o600), qt.IsNil)

	b := book.New()
	c.Assert(b.Load(context.Background(), storage.NewJSONFile(path)), qt.IsNil)
	c.Assert(b.Lines(), qt.DeepEquals, []string{
		"Amy: 0123456789, Birthday: 05/06/1970",
		"zed: 12",
	})
}

func TestLoad_FailurePath(t *testing.T) {
	c := qt.New(t)

	path := filepath.Join(t.TempDir(), "book.json")
	c.Assert(os.WriteFile(path, []byte("{broken"), 0o600), qt.IsNil)

	b := newBook(c, "Alice", "0123456789")
	err := b.Load(context.Background(), storage.NewJSONFile(path))
	c.Assert(err, qt.ErrorMatches, `book.Load: storage: decode .*`)
	// A failed load leaves the current content untouched.
	c.Assert(b.Len(), qt.Equals, 1)
}

func TestSave_FailureKeepsDirtyFlag(t *testing.T) {
	c := qt.New(t)

	dir := t.TempDir()
	// A directory where the file should be makes the rename fail.
	target := filepath.Join(dir, "book.json")
	c.Assert(os.MkdirAll(filepath.Join(target, "occupied"), 0o755), qt.IsNil)

	b := book.New()
	c.Assert(b.Add("Alice", "0123456789"), qt.IsNil)
	c.Assert(b.Save(context.Background(), storage.NewJSONFile(target)), qt.IsNotNil)
	c.Assert(b.Modified(), qt.IsTrue)
}

func TestAll_ReturnsCopies(t *testing.T) {
	c := qt.New(t)
	b := newBook(c, "Alice", "0123456789")

	all := b.All()
	all[0].Phone = "0000000000"
	phone, err := b.Phone("Alice")
	c.Assert(err, qt.IsNil)
	c.Assert(phone, qt.Equals, "0123456789")
}
