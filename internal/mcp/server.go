// Package mcp provides the stdio MCP server exposing address book tools to
// agents.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/go-ports/addressbook/internal/book"
	"github.com/go-ports/addressbook/internal/buildinfo"
	"github.com/go-ports/addressbook/internal/models"
	"github.com/go-ports/addressbook/internal/storage"
)

const listDescription = `List every contact in the address book, sorted by name. Call this before adding a contact to avoid duplicates.`

const birthdaysDescription = `List contacts whose birthday falls within the next days (default 7, today included), grouped by the weekday they are celebrated on. Weekend birthdays are celebrated on the following Monday.` //nolint:lll

// Options tunes the tools. Zero values select the defaults.
type Options struct {
	// Window is the default look-ahead of contacts_birthdays in days.
	Window int
	// Now returns the current time; time.Now when nil.
	Now func() time.Time
}

// store serialises tool access to the book. Every mutation is persisted
// before the tool returns.
type store struct {
	mu      sync.Mutex
	book    *book.Book
	backend storage.Backend
	window  int
	now     func() time.Time
}

// NewServer creates and registers all contact tools on a new MCP server.
// The book must already be loaded from backend.
func NewServer(b *book.Book, backend storage.Backend, opts Options) *mcpserver.MCPServer {
	st := &store{book: b, backend: backend, window: opts.Window, now: opts.Now}
	if st.window <= 0 {
		st.window = book.DefaultWindow
	}
	if st.now == nil {
		st.now = time.Now
	}

	s := mcpserver.NewMCPServer("addressbook", buildinfo.Version)
	registerTools(s, st)
	return s
}

// Serve loads the book and serves the tools over stdio, blocking until
// stdin closes.
func Serve(ctx context.Context, backend storage.Backend, opts Options) error {
	b := book.New()
	if err := b.Load(ctx, backend); err != nil && !errors.Is(err, book.ErrNoData) {
		return fmt.Errorf("mcp: %w", err)
	}
	return mcpserver.ServeStdio(NewServer(b, backend, opts))
}

func registerTools(s *mcpserver.MCPServer, st *store) {
	name := mcp.WithString("name",
		mcp.Description("Contact name, a single word as typed in the address book."),
		mcp.Required(),
	)
	phone := mcp.WithString("phone",
		mcp.Description("Phone number of exactly 10 digits."),
		mcp.Required(),
	)

	s.AddTool(mcp.NewTool("contacts_add",
		mcp.WithDescription("Add a new contact. Fails if the name is already taken."),
		name, phone,
	), st.handleAdd)

	s.AddTool(mcp.NewTool("contacts_update",
		mcp.WithDescription("Replace the phone number of an existing contact."),
		name, phone,
	), st.handleUpdate)

	s.AddTool(mcp.NewTool("contacts_rename",
		mcp.WithDescription("Rename a contact, keeping its phone number and birthday."),
		mcp.WithString("old_name",
			mcp.Description("Current contact name."),
			mcp.Required(),
		),
		mcp.WithString("new_name",
			mcp.Description("New contact name. Must not belong to another contact."),
			mcp.Required(),
		),
	), st.handleRename)

	s.AddTool(mcp.NewTool("contacts_show",
		mcp.WithDescription("Show one contact with its phone number and birthday."),
		name,
	), st.handleShow)

	s.AddTool(mcp.NewTool("contacts_list",
		mcp.WithDescription(listDescription),
	), st.handleList)

	s.AddTool(mcp.NewTool("contacts_delete",
		mcp.WithDescription("Delete a contact. The action is not_found when no such contact exists."),
		name,
	), st.handleDelete)

	s.AddTool(mcp.NewTool("contacts_set_birthday",
		mcp.WithDescription("Set or replace the birthday of a contact."),
		name,
		mcp.WithString("birthday",
			mcp.Description("Birthday in DD/MM/YYYY format."),
			mcp.Required(),
		),
	), st.handleSetBirthday)

	s.AddTool(mcp.NewTool("contacts_show_birthday",
		mcp.WithDescription("Show the birthday of a contact; null when none is recorded."),
		name,
	), st.handleShowBirthday)

	s.AddTool(mcp.NewTool("contacts_birthdays",
		mcp.WithDescription(birthdaysDescription),
		mcp.WithNumber("days",
			mcp.Description("Look-ahead window in days."),
		),
	), st.handleBirthdays)
}

// ---------------------------------------------------------------------------
// Tool handlers
// ---------------------------------------------------------------------------

func (st *store) handleAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, res := requireStrings(req, "name", "phone")
	if res != nil {
		return res, nil
	}
	return st.mutate(ctx, func(b *book.Book) (any, error) {
		if err := b.Add(args[0], args[1]); err != nil {
			return nil, err
		}
		return map[string]any{"name": args[0], "phone": args[1], "action": "added"}, nil
	})
}

func (st *store) handleUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, res := requireStrings(req, "name", "phone")
	if res != nil {
		return res, nil
	}
	return st.mutate(ctx, func(b *book.Book) (any, error) {
		if err := b.Update(args[0], args[1]); err != nil {
			return nil, err
		}
		return map[string]any{"name": args[0], "phone": args[1], "action": "updated"}, nil
	})
}

func (st *store) handleRename(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, res := requireStrings(req, "old_name", "new_name")
	if res != nil {
		return res, nil
	}
	return st.mutate(ctx, func(b *book.Book) (any, error) {
		if err := b.Rename(args[0], args[1]); err != nil {
			return nil, err
		}
		return map[string]any{"old_name": args[0], "new_name": args[1], "action": "renamed"}, nil
	})
}

func (st *store) handleShow(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, res := requireStrings(req, "name")
	if res != nil {
		return res, nil
	}
	return st.read(func(b *book.Book) (any, error) {
		c, err := b.Get(args[0])
		if err != nil {
			return nil, err
		}
		return viewOf(c), nil
	})
}

func (st *store) handleList(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return st.read(func(b *book.Book) (any, error) {
		all := b.All()
		contacts := make([]contactView, 0, len(all))
		for _, c := range all {
			contacts = append(contacts, viewOf(c))
		}
		return map[string]any{"total": len(contacts), "contacts": contacts}, nil
	})
}

func (st *store) handleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, res := requireStrings(req, "name")
	if res != nil {
		return res, nil
	}
	return st.mutate(ctx, func(b *book.Book) (any, error) {
		if !b.Delete(args[0]) {
			return map[string]any{"name": args[0], "action": "not_found"}, nil
		}
		return map[string]any{"name": args[0], "action": "deleted"}, nil
	})
}

func (st *store) handleSetBirthday(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, res := requireStrings(req, "name", "birthday")
	if res != nil {
		return res, nil
	}
	return st.mutate(ctx, func(b *book.Book) (any, error) {
		if err := b.SetBirthday(args[0], args[1]); err != nil {
			return nil, err
		}
		d, _, _ := b.Birthday(args[0])
		return map[string]any{"name": args[0], "birthday": d, "action": "birthday_set"}, nil
	})
}

func (st *store) handleShowBirthday(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, res := requireStrings(req, "name")
	if res != nil {
		return res, nil
	}
	return st.read(func(b *book.Book) (any, error) {
		c, err := b.Get(args[0])
		if err != nil {
			return nil, err
		}
		return map[string]any{"name": c.Name, "birthday": c.Birthday}, nil
	})
}

func (st *store) handleBirthdays(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days := req.GetInt("days", st.window)
	if days <= 0 {
		days = st.window
	}
	return st.read(func(b *book.Book) (any, error) {
		groups := b.Upcoming(st.now(), days)
		out := make([]map[string]any, 0, len(groups))
		for _, g := range groups {
			out = append(out, map[string]any{
				"weekday": g.Day.String(),
				"date":    models.DateOf(g.Date),
				"names":   g.Names,
			})
		}
		return map[string]any{"days": days, "groups": out}, nil
	})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// contactView is the JSON shape of a contact in tool results.
type contactView struct {
	Name     string       `json:"name"`
	Phone    string       `json:"phone"`
	Birthday *models.Date `json:"birthday"`
}

func viewOf(c *models.Contact) contactView {
	return contactView{Name: c.Name, Phone: c.Phone, Birthday: c.Birthday}
}

// mutate applies fn under the lock and persists the book when it succeeds
// and left unsaved changes.
func (st *store) mutate(ctx context.Context, fn func(*book.Book) (any, error)) (*mcp.CallToolResult, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	v, err := fn(st.book)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !st.book.Modified() {
		return jsonResult(v)
	}
	if saveErr := st.book.Save(ctx, st.backend); saveErr != nil {
		return mcp.NewToolResultError(saveErr.Error()), nil
	}
	return jsonResult(v)
}

func (st *store) read(fn func(*book.Book) (any, error)) (*mcp.CallToolResult, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	v, err := fn(st.book)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(v)
}

// requireStrings returns the named arguments in order, or an error result
// naming the first one that is missing or not a single word. Values must be
// single words so that the interactive loop can address them too.
func requireStrings(req mcp.CallToolRequest, keys ...string) ([]string, *mcp.CallToolResult) {
	vals := make([]string, 0, len(keys))
	for _, k := range keys {
		fields := strings.Fields(req.GetString(k, ""))
		switch len(fields) {
		case 0:
			return nil, mcp.NewToolResultError(fmt.Sprintf("%s: missing required argument %q", book.ErrInvalid, k))
		case 1:
			vals = append(vals, fields[0])
		default:
			return nil, mcp.NewToolResultError(fmt.Sprintf("%s: argument %q must be a single word", book.ErrInvalid, k))
		}
	}
	return vals, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
