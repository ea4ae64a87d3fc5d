package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mfreitas/crisischat-server/internal/access"
	"github.com/mfreitas/crisischat-server/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	username      TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	access_level  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS messages (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	room       TEXT NOT NULL,
	body       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_messages_room ON messages(room, id);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Set connection pool limits
	db.SetMaxOpenConns(1) // SQLite works best with single connection
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// NewWithSetup creates a new SQLite store and runs a setup function instead
// of the default schema. Useful for tests.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

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

// ==== CredentialStore implementation ====

// GetUser retrieves a credential record by username.
func (s *SQLiteStore) GetUser(ctx context.Context, username string) (*store.User, error) {
	query := `
		SELECT username, password_hash, access_level
		FROM users
		WHERE username = ?
	`
	var (
		user      store.User
		levelName string
	)
	err := s.db.QueryRowContext(ctx, query, username).Scan(
		&user.Name,
		&user.PasswordHash,
		&levelName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	level, err := access.ParseLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("credential record for %q: %w", username, err)
	}
	user.Level = level

	return &user, nil
}

// CreateUser persists a new credential record.
func (s *SQLiteStore) CreateUser(ctx context.Context, username, passwordHash string, level access.Level) error {
	query := `
		INSERT INTO users (username, password_hash, access_level)
		VALUES (?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, username, passwordHash, level.String()); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return store.ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// ==== RoomLog implementation ====

// Append adds one line to the room's history.
func (s *SQLiteStore) Append(ctx context.Context, room, line string) error {
	query := `
		INSERT INTO messages (room, body)
		VALUES (?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, room, line); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// Tail returns up to n of the newest history lines, oldest first.
func (s *SQLiteStore) Tail(ctx context.Context, room string, n int) ([]string, error) {
	query := `
		SELECT body FROM messages
		WHERE room = ?
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, room, n)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		lines = append(lines, body)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	// Newest-first from the query; history replays oldest first.
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return lines, nil
}
