// Package storage persists address book contacts to a JSON file or a SQLite database.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/go-ports/addressbook/internal/models"
)

// ErrNotExist is returned by Load when nothing has been persisted yet.
var ErrNotExist = errors.New("storage: no persisted contacts")

// Backend loads and saves the full set of contacts.
type Backend interface {
	// Load returns every persisted contact. The order is unspecified.
	Load(ctx context.Context) ([]*models.Contact, error)
	// Save replaces all persisted contacts with contacts.
	Save(ctx context.Context, contacts []*models.Contact) error
	Close() error
}

// Kind names a backend implementation.
type Kind string

const (
	KindAuto   Kind = "auto"
	KindJSON   Kind = "json"
	KindSQLite Kind = "sqlite"
)

// Open returns the backend of the given kind for path.
// KindAuto (or "") picks SQLite for .db, .sqlite and .sqlite3 files and JSON otherwise.
func Open(path string, kind Kind) (Backend, error) {
	if kind == "" || kind == KindAuto {
		kind = detect(path)
	}
	switch kind {
	case KindJSON:
		return NewJSONFile(path), nil
	case KindSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("storage.Open: unknown backend %q", kind)
	}
}

func detect(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return KindSQLite
	default:
		return KindJSON
	}
}

// birthdayOf parses a persisted birthday. A blank value means none; a value
// that does not parse is dropped with a warning so the rest of the book
// still loads.
func birthdayOf(name, raw string) *models.Date {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		slog.Warn("dropping malformed birthday", "name", name, "birthday", raw, "err", err)
		return nil
	}
	return &d
}
