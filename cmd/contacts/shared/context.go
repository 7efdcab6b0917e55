// Package shared holds the context passed to all CLI commands.
package shared

import (
	"context"
	"errors"

	"github.com/go-ports/addressbook/internal/book"
	"github.com/go-ports/addressbook/internal/config"
	"github.com/go-ports/addressbook/internal/storage"
)

// Context carries global CLI state (flags set on the root command) and the
// configuration resolved from them.
type Context struct {
	// ConfigPath overrides the config file location.
	// When empty, config.DefaultPath() is used.
	ConfigPath string
	// BookPath overrides book.path from the config file.
	BookPath string

	// Config is populated by the root command before any subcommand runs.
	Config *config.Config
}

// ConfigFile returns the config file in effect.
func (c *Context) ConfigFile() string {
	if c.ConfigPath != "" {
		return c.ConfigPath
	}
	return config.DefaultPath()
}

// LoadConfig reads the config file and applies flag overrides.
func (c *Context) LoadConfig() error {
	cfg := config.Default()
	if path := c.ConfigFile(); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return err
		}
	}
	if c.BookPath != "" {
		cfg.Book.Path = c.BookPath
	}
	c.Config = cfg
	return nil
}

// OpenBackend opens the configured address book storage.
func (c *Context) OpenBackend() (storage.Backend, error) {
	return storage.Open(c.Config.Book.Path, storage.Kind(c.Config.Book.Backend))
}

// OpenBook opens the configured storage and loads the book from it. A book
// that was never saved loads empty. The caller closes the backend.
func (c *Context) OpenBook(ctx context.Context) (*book.Book, storage.Backend, error) {
	backend, err := c.OpenBackend()
	if err != nil {
		return nil, nil, err
	}
	b := book.New()
	if err := b.Load(ctx, backend); err != nil && !errors.Is(err, book.ErrNoData) {
		_ = backend.Close()
		return nil, nil, err
	}
	return b, backend, nil
}
