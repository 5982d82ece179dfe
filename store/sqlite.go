package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/colincmac/openai-plugins-serverless/core"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS chat_sessions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	title TEXT NOT NULL,
	created_on DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS chat_messages (
	id TEXT PRIMARY KEY,
	chat_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	user_name TEXT NOT NULL,
	content TEXT NOT NULL,
	prompt TEXT NOT NULL,
	author_role INTEGER NOT NULL,
	type INTEGER NOT NULL,
	timestamp DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chat_messages_chat_id ON chat_messages(chat_id);
`

// SQLiteStore persists chat sessions and messages in a single SQLite
// database. It implements both core.MessageStore and core.SessionStore.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if necessary) the database at path and applies
// the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Create implements core.MessageStore.
func (s *SQLiteStore) Create(ctx context.Context, msg *core.ChatMessage) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (id, chat_id, user_id, user_name, content, prompt, author_role, type, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.ChatID, msg.UserID, msg.UserName, msg.Content, msg.Prompt,
		int(msg.AuthorRole), int(msg.Type), msg.Timestamp.UTC())
	return err
}

// FindByChatID implements core.MessageStore.
func (s *SQLiteStore) FindByChatID(ctx context.Context, chatID string) ([]*core.ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, chat_id, user_id, user_name, content, prompt, author_role, type, timestamp
		 FROM chat_messages WHERE chat_id = ? ORDER BY timestamp`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*core.ChatMessage
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

// FindByID implements core.MessageStore.
func (s *SQLiteStore) FindByID(ctx context.Context, id string) (*core.ChatMessage, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, chat_id, user_id, user_name, content, prompt, author_role, type, timestamp
		 FROM chat_messages WHERE id = ?`, id)
	msg, err := scanMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	return msg, err
}

// Upsert implements core.MessageStore. Last write wins.
func (s *SQLiteStore) Upsert(ctx context.Context, msg *core.ChatMessage) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (id, chat_id, user_id, user_name, content, prompt, author_role, type, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			prompt = excluded.prompt,
			type = excluded.type`,
		msg.ID, msg.ChatID, msg.UserID, msg.UserName, msg.Content, msg.Prompt,
		int(msg.AuthorRole), int(msg.Type), msg.Timestamp.UTC())
	return err
}

// CreateSession implements core.SessionStore's Create. The method name
// differs from the message path because SQLiteStore serves both interfaces;
// use the Sessions() view when a plain core.SessionStore is required.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *core.ChatSession) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_sessions (id, user_id, title, created_on) VALUES (?, ?, ?, ?)`,
		session.ID, session.UserID, session.Title, session.CreatedOn.UTC())
	return err
}

// FindSessionByID looks up a session by id, ErrNotFound when absent.
func (s *SQLiteStore) FindSessionByID(ctx context.Context, id string) (*core.ChatSession, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, created_on FROM chat_sessions WHERE id = ?`, id)
	var session core.ChatSession
	var createdOn time.Time
	if err := row.Scan(&session.ID, &session.UserID, &session.Title, &createdOn); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	session.CreatedOn = createdOn
	return &session, nil
}

// Sessions returns the store viewed as a core.SessionStore.
func (s *SQLiteStore) Sessions() core.SessionStore { return sqliteSessions{s} }

type sqliteSessions struct{ store *SQLiteStore }

func (v sqliteSessions) Create(ctx context.Context, session *core.ChatSession) error {
	return v.store.CreateSession(ctx, session)
}

func (v sqliteSessions) FindByID(ctx context.Context, id string) (*core.ChatSession, error) {
	return v.store.FindSessionByID(ctx, id)
}

func (v sqliteSessions) TryFindByID(ctx context.Context, id string) (*core.ChatSession, bool, error) {
	session, err := v.store.FindSessionByID(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return session, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*core.ChatMessage, error) {
	var msg core.ChatMessage
	var role, msgType int
	var ts time.Time
	err := row.Scan(&msg.ID, &msg.ChatID, &msg.UserID, &msg.UserName, &msg.Content,
		&msg.Prompt, &role, &msgType, &ts)
	if err != nil {
		return nil, err
	}
	msg.AuthorRole = core.AuthorRole(role)
	msg.Type = core.MessageType(msgType)
	msg.Timestamp = ts
	return &msg, nil
}
