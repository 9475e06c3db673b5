// Package archive keeps a local SQLite copy of completed chat
// exchanges so past conversations stay browsable without the backend.
package archive

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ggokuldas06/LegalAI/internal/chat"
)

const schema = `
CREATE TABLE IF NOT EXISTS exchanges (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	mode        TEXT NOT NULL,
	prompt      TEXT NOT NULL,
	response    TEXT NOT NULL,
	tokens_in   INTEGER NOT NULL DEFAULT 0,
	tokens_out  INTEGER NOT NULL DEFAULT 0,
	latency_ms  INTEGER NOT NULL DEFAULT 0,
	chat_log_id INTEGER NOT NULL DEFAULT 0,
	created_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_exchanges_created ON exchanges(created_at);
CREATE INDEX IF NOT EXISTS idx_exchanges_mode ON exchanges(mode);
`

// Archive is a file-backed exchange log. It implements chat.Recorder.
type Archive struct {
	db *sql.DB
}

// DefaultPath returns the archive location under the user's home
// directory (~/.legalai/archive.db).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".legalai", "archive.db"), nil
}

// Open creates or opens the archive database at path.
func Open(path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	// Single writer; WAL keeps reads cheap while the chat is recording.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("archive pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("archive pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("archive schema: %w", err)
	}
	return &Archive{db: db}, nil
}

// Close releases the database handle.
func (a *Archive) Close() error { return a.db.Close() }

// Record stores one exchange.
func (a *Archive) Record(ex chat.Exchange) error {
	created := ex.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := a.db.Exec(
		`INSERT INTO exchanges (mode, prompt, response, tokens_in, tokens_out, latency_ms, chat_log_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(ex.Mode), ex.Prompt, ex.Response, ex.TokensIn, ex.TokensOut, ex.LatencyMS, ex.ChatLogID, created,
	)
	if err != nil {
		return fmt.Errorf("record exchange: %w", err)
	}
	return nil
}

// StoredExchange is one archived row.
type StoredExchange struct {
	ID        int64
	Mode      string
	Prompt    string
	Response  string
	TokensIn  int
	TokensOut int
	LatencyMS int
	ChatLogID int64
	CreatedAt time.Time
}

// Recent returns up to limit exchanges, newest first. mode narrows the
// result when non-empty.
func (a *Archive) Recent(mode string, limit int) ([]StoredExchange, error) {
	if limit <= 0 {
		limit = 50
	}

	var (
		rows *sql.Rows
		err  error
	)
	if mode != "" {
		rows, err = a.db.Query(
			`SELECT id, mode, prompt, response, tokens_in, tokens_out, latency_ms, chat_log_id, created_at
			 FROM exchanges WHERE mode = ? ORDER BY created_at DESC, id DESC LIMIT ?`, mode, limit)
	} else {
		rows, err = a.db.Query(
			`SELECT id, mode, prompt, response, tokens_in, tokens_out, latency_ms, chat_log_id, created_at
			 FROM exchanges ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("query archive: %w", err)
	}
	defer rows.Close()

	var out []StoredExchange
	for rows.Next() {
		var ex StoredExchange
		if err := rows.Scan(&ex.ID, &ex.Mode, &ex.Prompt, &ex.Response,
			&ex.TokensIn, &ex.TokensOut, &ex.LatencyMS, &ex.ChatLogID, &ex.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan archive row: %w", err)
		}
		out = append(out, ex)
	}
	return out, rows.Err()
}

// Delete removes one archived exchange.
func (a *Archive) Delete(id int64) error {
	_, err := a.db.Exec("DELETE FROM exchanges WHERE id = ?", id)
	return err
}

// Clear wipes the whole archive.
func (a *Archive) Clear() error {
	_, err := a.db.Exec("DELETE FROM exchanges")
	return err
}
