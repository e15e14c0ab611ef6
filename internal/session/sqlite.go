// ABOUTME: SQLite conversation store for multi-conversation querying
// ABOUTME: Single messages table; append order preserved by rowid

package session

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/litigantportal/agentkit/internal/config"
	"github.com/litigantportal/agentkit/pkg/llm"
)

// SQLiteStore keeps all conversations in one database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the default database.
func NewSQLiteStore() (*SQLiteStore, error) {
	return NewSQLiteStoreAt(config.DatabaseFile())
}

// NewSQLiteStoreAt opens (or creates) a database at dbPath.
func NewSQLiteStoreAt(dbPath string) (*SQLiteStore, error) {
	if err := config.EnsureDir(filepath.Dir(dbPath)); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open store db: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS messages (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			conversation_id TEXT NOT NULL,
			created_at      TEXT NOT NULL,
			data            TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_messages_conversation
			ON messages (conversation_id, id);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create messages table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(conversationID string, msg llm.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling message: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO messages (conversation_id, created_at, data) VALUES (?, ?, ?)`,
		conversationID, time.Now().UTC().Format(time.RFC3339), string(data),
	)
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(conversationID string) ([]llm.Message, error) {
	rows, err := s.db.Query(
		`SELECT data FROM messages WHERE conversation_id = ? ORDER BY id ASC`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying conversation: %w", err)
	}
	defer rows.Close()

	var msgs []llm.Message
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var msg llm.Message
		if err := json.Unmarshal([]byte(data), &msg); err != nil {
			continue
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, ErrNotFound
	}
	return msgs, nil
}

func (s *SQLiteStore) List() ([]Info, error) {
	rows, err := s.db.Query(`
		SELECT conversation_id, MIN(created_at), COUNT(*)
		FROM messages
		GROUP BY conversation_id
		ORDER BY MIN(created_at) DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	defer rows.Close()

	var infos []Info
	for rows.Next() {
		var (
			info    Info
			started string
		)
		if err := rows.Scan(&info.ID, &started, &info.Messages); err != nil {
			return nil, err
		}
		if ts, err := time.Parse(time.RFC3339, started); err == nil {
			info.Started = ts
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
