package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-ports/addressbook/internal/models"
)

// record is the on-disk shape of one contact; the name is the object key.
// The birthday is kept as text and parsed per contact.
type record struct {
	Phone    string  `json:"phone"`
	Birthday *string `json:"birthday"`
}

// JSONFile stores contacts as a single JSON object keyed by contact name.
type JSONFile struct {
	path string
}

var _ Backend = (*JSONFile)(nil)

// NewJSONFile returns a backend reading and writing path.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Path returns the file the backend reads and writes.
func (f *JSONFile) Path() string { return f.path }

// Load reads the file. A missing file yields ErrNotExist.
func (f *JSONFile) Load(_ context.Context) ([]*models.Contact, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", f.path, err)
	}

	var raw map[string]record
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("storage: decode %s: %w", f.path, err)
	}

	contacts := make([]*models.Contact, 0, len(raw))
	for name, r := range raw {
		c := &models.Contact{Name: name, Phone: r.Phone}
		if r.Birthday != nil {
			c.Birthday = birthdayOf(name, *r.Birthday)
		}
		contacts = append(contacts, c)
	}
	return contacts, nil
}

// Save writes all contacts to a temp file next to the target and renames it
// into place, so an interrupted save never leaves a truncated file.
func (f *JSONFile) Save(_ context.Context, contacts []*models.Contact) error {
	raw := make(map[string]record, len(contacts))
	for _, c := range contacts {
		r := record{Phone: c.Phone}
		if c.Birthday != nil {
			s := c.Birthday.String()
			r.Birthday = &s
		}
		raw[c.Name] = r
	}
	// encoding/json writes map keys sorted, so the file is ordered by name.
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("storage: create directory: %w", err)
		}
	}

	tmpPath := f.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage: write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage: rename temp file: %w", err)
	}
	return nil
}

// Close is a no-op; the file is only open during Load and Save.
func (*JSONFile) Close() error { return nil }
