package store

import (
	"context"
	"time"
)

// TimestampLayout is the wire and on-disk form of created_at (UTC, millisecond precision).
// Fixed width keeps lexical order equal to chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Style holds the cosmetic attributes attached to a message.
type Style struct {
	BgColor    string // empty when no palette colour was chosen
	FontFamily string
	TextSize   string
}

// Message represents a persisted board message.
type Message struct {
	ID        int64
	Location  string
	Text      string
	CreatedAt time.Time
	Style     Style
}

// Page is one slice of a location's history plus the location's full row count.
type Page struct {
	Items []*Message
	Total int64
}

// MessageStore handles message persistence.
// Ordering is always newest first by (created_at, id).
type MessageStore interface {
	// Insert appends msg and sets msg.ID.
	Insert(ctx context.Context, msg *Message) error

	// Latest returns the newest message for location, or nil when there is none.
	Latest(ctx context.Context, location string) (*Message, error)

	// ListPage returns up to limit messages starting at offset (page-1)*limit.
	ListPage(ctx context.Context, location string, page, limit int) (*Page, error)

	// DeleteByID removes a message and reports how many rows went away (0 or 1).
	DeleteByID(ctx context.Context, id int64) (int64, error)
}

// Store aggregates the storage interfaces with lifecycle and maintenance operations.
type Store interface {
	MessageStore

	// Migrate creates the schema and adds any missing style columns.
	Migrate(ctx context.Context) error

	// Clear removes every message and resets the id sequence, returning the number removed.
	Clear(ctx context.Context) (int64, error)

	// Close closes the underlying database connection.
	Close() error
}
