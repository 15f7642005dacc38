package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vovakirdan/board-server/internal/store"
	"github.com/vovakirdan/board-server/internal/validation"
)

const schema = `
	CREATE TABLE IF NOT EXISTS messages (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		location    TEXT NOT NULL,
		message     TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		bg_color    TEXT,
		font_family TEXT,
		text_size   TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_messages_location_created_at
		ON messages (location, created_at DESC);
`

// styleColumns are the columns added after the first release; older databases may lack them.
var styleColumns = []string{"bg_color", "font_family", "text_size"}

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteStore)(nil)

// New creates a new SQLite store.
// dbPath is the path to the SQLite database file; its directory is created when missing.
func New(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	return NewWithSetup(dbPath, nil)
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to seed a legacy schema before migrating.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with single connection; also keeps :memory: databases alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== Maintenance ====

// Migrate creates the messages table and index if needed, then adds any style
// column an older table is missing. Safe to run repeatedly.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	existing, err := s.columns(ctx, "messages")
	if err != nil {
		return err
	}

	for _, col := range styleColumns {
		if existing[col] {
			continue
		}
		if _, err := s.db.ExecContext(ctx, "ALTER TABLE messages ADD COLUMN "+col+" TEXT"); err != nil {
			return fmt.Errorf("add column %s: %w", col, err)
		}
	}

	return nil
}

func (s *SQLiteStore) columns(ctx context.Context, table string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, "PRAGMA table_info("+table+")")
	if err != nil {
		return nil, fmt.Errorf("table info: %w", err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid     int
			name    string
			colType string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scan table info: %w", err)
		}
		cols[name] = true
	}

	return cols, rows.Err()
}

// Clear deletes every message and resets the AUTOINCREMENT counter so ids start from 1 again.
func (s *SQLiteStore) Clear(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin clear: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `DELETE FROM messages`)
	if err != nil {
		return 0, fmt.Errorf("delete messages: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	// sqlite_sequence only exists once an AUTOINCREMENT table has been written to.
	var seqTables int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'sqlite_sequence'`,
	).Scan(&seqTables)
	if err != nil {
		return 0, fmt.Errorf("lookup sqlite_sequence: %w", err)
	}
	if seqTables > 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sqlite_sequence WHERE name = 'messages'`); err != nil {
			return 0, fmt.Errorf("reset sequence: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit clear: %w", err)
	}
	return removed, nil
}

// ==== MessageStore implementation ====

// Insert persists a message and sets its ID.
func (s *SQLiteStore) Insert(ctx context.Context, msg *store.Message) error {
	query := `
		INSERT INTO messages (location, message, created_at, bg_color, font_family, text_size)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		msg.Location,
		msg.Text,
		msg.CreatedAt.UTC().Format(store.TimestampLayout),
		nullString(msg.Style.BgColor),
		nullString(msg.Style.FontFamily),
		nullString(msg.Style.TextSize),
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	msg.ID = id
	return nil
}

// Latest returns the newest message for location, or nil if the location has none.
func (s *SQLiteStore) Latest(ctx context.Context, location string) (*store.Message, error) {
	query := `
		SELECT id, location, message, created_at, bg_color, font_family, text_size
		FROM messages
		WHERE location = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`
	msg, err := scanMessage(s.db.QueryRowContext(ctx, query, location))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query latest message: %w", err)
	}

	return msg, nil
}

// ListPage retrieves one page of a location's messages, newest first, with the total row count.
func (s *SQLiteStore) ListPage(ctx context.Context, location string, page, limit int) (*store.Page, error) {
	if page < 1 || limit < 1 {
		return nil, fmt.Errorf("invalid page %d or limit %d", page, limit)
	}

	items := make([]*store.Message, 0)
	// An offset past MaxInt64 cannot address any row.
	if int64(page-1) <= math.MaxInt64/int64(limit) {
		var err error
		items, err = s.pageRows(ctx, location, limit, int64(page-1)*int64(limit))
		if err != nil {
			return nil, err
		}
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE location = ?`, location).Scan(&total); err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}

	return &store.Page{Items: items, Total: total}, nil
}

func (s *SQLiteStore) pageRows(ctx context.Context, location string, limit int, offset int64) ([]*store.Message, error) {
	query := `
		SELECT id, location, message, created_at, bg_color, font_family, text_size
		FROM messages
		WHERE location = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`
	rows, err := s.db.QueryContext(ctx, query, location, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	items := make([]*store.Message, 0, limit)
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		items = append(items, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return items, nil
}

// DeleteByID removes the message with the given id. A missing id is not an error.
func (s *SQLiteStore) DeleteByID(ctx context.Context, id int64) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("delete message: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*store.Message, error) {
	var (
		msg        store.Message
		createdAt  string
		bgColor    sql.NullString
		fontFamily sql.NullString
		textSize   sql.NullString
	)
	if err := row.Scan(&msg.ID, &msg.Location, &msg.Text, &createdAt, &bgColor, &fontFamily, &textSize); err != nil {
		return nil, err
	}

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	msg.CreatedAt = ts.UTC()

	// Rows written before the style columns existed read back with the defaults.
	msg.Style = store.Style{
		BgColor:    bgColor.String,
		FontFamily: validation.DefaultFont,
		TextSize:   validation.DefaultTextSize,
	}
	if fontFamily.Valid && fontFamily.String != "" {
		msg.Style.FontFamily = fontFamily.String
	}
	if textSize.Valid && textSize.String != "" {
		msg.Style.TextSize = textSize.String
	}

	return &msg, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
