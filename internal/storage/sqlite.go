package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver with database/sql

	"github.com/go-ports/addressbook/internal/models"
)

// SQLite stores contacts in a single table of a SQLite database.
type SQLite struct {
	db   *sql.DB
	path string
}

var _ Backend = (*SQLite)(nil)

// OpenSQLite prepares a connection to the database at path. The schema, and
// the file itself, are created on the first Save.
func OpenSQLite(path string) (*SQLite, error) {
	sqldb, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("storage.OpenSQLite: %w", err)
	}
	return &SQLite{db: sqldb, path: path}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// Schema
// ---------------------------------------------------------------------------

func (s *SQLite) createSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS contacts (
			name     TEXT PRIMARY KEY,
			phone    TEXT NOT NULL,
			birthday TEXT
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("createSchema exec: %w\nSQL: %s", err, stmt)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Load / Save
// ---------------------------------------------------------------------------

// Load returns all stored contacts. A database file that does not exist yet
// yields ErrNotExist without creating it.
func (s *SQLite) Load(ctx context.Context) ([]*models.Contact, error) {
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotExist
	}
	if err := s.createSchema(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT name, phone, birthday FROM contacts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("storage: query contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*models.Contact
	for rows.Next() {
		var (
			name, phone string
			birthday    sql.NullString
		)
		if err := rows.Scan(&name, &phone, &birthday); err != nil {
			return nil, err
		}
		c := &models.Contact{Name: name, Phone: phone}
		if birthday.Valid {
			c.Birthday = birthdayOf(name, birthday.String)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	slog.Debug("loaded contacts from sqlite", "path", s.path, "count", len(contacts))
	return contacts, nil
}

// Save replaces every row inside one transaction.
func (s *SQLite) Save(ctx context.Context, contacts []*models.Contact) (err error) {
	if err := s.createSchema(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM contacts`); err != nil {
		return fmt.Errorf("storage: clear contacts: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO contacts (name, phone, birthday) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range contacts {
		var birthday sql.NullString
		if c.Birthday != nil {
			birthday = sql.NullString{String: c.Birthday.String(), Valid: true}
		}
		if _, err = stmt.ExecContext(ctx, c.Name, c.Phone, birthday); err != nil {
			return fmt.Errorf("storage: insert %q: %w", c.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit: %w", err)
	}
	return nil
}
