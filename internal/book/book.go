// Package book implements the in-memory address book: a name-keyed set of
// contacts kept in alphabetical order, with a dirty flag tracking unsaved
// mutations and load/save through a storage backend.
package book

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/go-ports/addressbook/internal/models"
	"github.com/go-ports/addressbook/internal/storage"
)

var (
	// ErrInvalid is returned for a malformed phone, date or argument.
	ErrInvalid = errors.New("invalid input")
	// ErrNotFound is returned when an operation names a missing contact.
	ErrNotFound = errors.New("contact not found")
	// ErrExists is returned when a name is already taken.
	ErrExists = errors.New("contact already exists")
	// ErrNoData is returned by Load when nothing was persisted yet. The book
	// is left empty; callers treat it as informational.
	ErrNoData = errors.New("no previous data found")
)

// Book is an address book. It is not safe for concurrent use.
type Book struct {
	contacts map[string]*models.Contact
	names    []string // sorted keys of contacts
	modified bool
}

// New returns an empty address book.
func New() *Book {
	return &Book{contacts: make(map[string]*models.Contact)}
}

// Len returns the number of contacts.
func (b *Book) Len() int { return len(b.names) }

// Modified reports whether there are mutations since the last load or save.
func (b *Book) Modified() bool { return b.modified }

// ---------------------------------------------------------------------------
// Mutations
// ---------------------------------------------------------------------------

// Add creates a contact with no birthday.
func (b *Book) Add(name, phone string) error {
	if err := models.ValidatePhone(phone); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, ok := b.contacts[name]; ok {
		return fmt.Errorf("%w: %q", ErrExists, name)
	}
	b.insert(&models.Contact{Name: name, Phone: phone})
	b.modified = true
	return nil
}

// Update replaces the phone of an existing contact.
func (b *Book) Update(name, phone string) error {
	if err := models.ValidatePhone(phone); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	c, ok := b.contacts[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	c.Phone = phone
	b.modified = true
	return nil
}

// Rename moves a contact to a new name. Renaming onto a name held by another
// contact fails with ErrExists; renaming a contact to its own name is a no-op.
func (b *Book) Rename(oldName, newName string) error {
	c, ok := b.contacts[oldName]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, oldName)
	}
	if oldName == newName {
		return nil
	}
	if _, taken := b.contacts[newName]; taken {
		return fmt.Errorf("%w: %q", ErrExists, newName)
	}
	b.remove(oldName)
	c.Name = newName
	b.insert(c)
	b.modified = true
	return nil
}

// Delete removes a contact. It reports false, with no error, when the name
// does not exist.
func (b *Book) Delete(name string) bool {
	if _, ok := b.contacts[name]; !ok {
		return false
	}
	b.remove(name)
	b.modified = true
	return true
}

// Clear removes every contact.
func (b *Book) Clear() {
	clear(b.contacts)
	b.names = b.names[:0]
	b.modified = true
}

// SetBirthday parses dateStr as DD/MM/YYYY and stores it on the contact.
func (b *Book) SetBirthday(name, dateStr string) error {
	c, ok := b.contacts[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	d, err := models.ParseDate(dateStr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	c.Birthday = &d
	b.modified = true
	return nil
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// Phone returns the phone of the named contact.
func (b *Book) Phone(name string) (string, error) {
	c, ok := b.contacts[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return c.Phone, nil
}

// Birthday returns the birthday of the named contact; ok is false when none is set.
func (b *Book) Birthday(name string) (d models.Date, ok bool, err error) {
	c, found := b.contacts[name]
	if !found {
		return models.Date{}, false, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if c.Birthday == nil {
		return models.Date{}, false, nil
	}
	return *c.Birthday, true, nil
}

// Get returns a copy of the named contact.
func (b *Book) Get(name string) (*models.Contact, error) {
	c, ok := b.contacts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return c.Clone(), nil
}

// All returns copies of every contact in name order.
func (b *Book) All() []*models.Contact {
	out := make([]*models.Contact, 0, len(b.names))
	for _, name := range b.names {
		out = append(out, b.contacts[name].Clone())
	}
	return out
}

// Lines renders every contact as "name: phone[, Birthday: DD/MM/YYYY]" in name order.
func (b *Book) Lines() []string {
	out := make([]string, 0, len(b.names))
	for _, name := range b.names {
		out = append(out, b.contacts[name].Line())
	}
	return out
}

// ---------------------------------------------------------------------------
// Persistence
// ---------------------------------------------------------------------------

// Load replaces the book's content with what backend holds and clears the
// dirty flag. When nothing was persisted it returns ErrNoData and leaves the
// book empty. Phones are not re-validated; non-conforming ones are logged.
func (b *Book) Load(ctx context.Context, backend storage.Backend) error {
	contacts, err := backend.Load(ctx)
	if errors.Is(err, storage.ErrNotExist) {
		b.reset()
		return ErrNoData
	}
	if err != nil {
		return fmt.Errorf("book.Load: %w", err)
	}

	b.reset()
	for _, c := range contacts {
		if err := models.ValidatePhone(c.Phone); err != nil {
			slog.Warn("loaded contact has a malformed phone", "name", c.Name, "err", err)
		}
		if _, dup := b.contacts[c.Name]; dup {
			slog.Warn("duplicate contact in storage, keeping the last one", "name", c.Name)
			b.remove(c.Name)
		}
		b.insert(c.Clone())
	}
	slog.Debug("address book loaded", "count", b.Len())
	return nil
}

// Save writes the whole book to backend and clears the dirty flag on success.
func (b *Book) Save(ctx context.Context, backend storage.Backend) error {
	if err := backend.Save(ctx, b.All()); err != nil {
		return fmt.Errorf("book.Save: %w", err)
	}
	b.modified = false
	slog.Debug("address book saved", "count", b.Len())
	return nil
}

// ---------------------------------------------------------------------------
// Index helpers
// ---------------------------------------------------------------------------

func (b *Book) reset() {
	b.contacts = make(map[string]*models.Contact)
	b.names = nil
	b.modified = false
}

// insert adds c and keeps names sorted. c.Name must not be present.
func (b *Book) insert(c *models.Contact) {
	b.contacts[c.Name] = c
	i, _ := slices.BinarySearch(b.names, c.Name)
	b.names = slices.Insert(b.names, i, c.Name)
}

func (b *Book) remove(name string) {
	delete(b.contacts, name)
	if i, ok := slices.BinarySearch(b.names, name); ok {
		b.names = slices.Delete(b.names, i, i+1)
	}
}
