// Package persistence provides SQLite-based storage for saved fortresses and
// the narration history of past runs.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/agentik/internal/engine"
)

// ErrNotFound is returned when a named fortress does not exist.
var ErrNotFound = errors.New("not found")

// DB wraps a SQLite connection.
type DB struct {
	conn *sqlx.DB
}

// FortressInfo describes a saved fortress without its payload.
type FortressInfo struct {
	Name    string `db:"name" json:"name"`
	RunID   string `db:"run_id" json:"run_id"`
	Width   int    `db:"width" json:"width"`
	Height  int    `db:"height" json:"height"`
	Agents  int    `db:"agents" json:"agents"`
	Tick    uint64 `db:"tick" json:"step"`
	Size    int    `db:"size" json:"size"`
	SavedAt int64  `db:"saved_at" json:"saved_at"`
}

// LogLine is one narration line recorded during a run.
type LogLine struct {
	RunID string `db:"run_id" json:"run_id"`
	Tick  uint64 `db:"tick" json:"step"`
	Line  string `db:"line" json:"line"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS fortresses (
		name TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		agents INTEGER NOT NULL,
		tick INTEGER NOT NULL,
		payload BLOB NOT NULL,
		saved_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS step_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		line TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_step_logs_run ON step_logs(run_id, tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveFortress stores w under name, replacing any fortress of the same name.
func (db *DB) SaveFortress(name, runID string, w *engine.World) error {
	payload, err := encodeWorld(w)
	if err != nil {
		return fmt.Errorf("encode fortress %s: %w", name, err)
	}

	_, err = db.conn.Exec(`INSERT OR REPLACE INTO fortresses
		(name, run_id, width, height, agents, tick, payload, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		name, runID, w.Width, w.Height, len(w.Agents), w.Tick, payload, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("save fortress %s: %w", name, err)
	}

	slog.Info("fortress saved", "name", name, "run", runID, "step", w.Tick,
		"agents", len(w.Agents), "size", humanize.Bytes(uint64(len(payload))))
	return nil
}

// LoadFortress reads the named fortress back into a normalized world.
func (db *DB) LoadFortress(name string) (*engine.World, error) {
	var payload []byte
	err := db.conn.Get(&payload, "SELECT payload FROM fortresses WHERE name = ?", name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("fortress %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load fortress %s: %w", name, err)
	}

	w, err := decodeWorld(payload)
	if err != nil {
		return nil, fmt.Errorf("decode fortress %s: %w", name, err)
	}
	return w, nil
}

// ListFortresses returns every saved fortress, newest first.
func (db *DB) ListFortresses() ([]FortressInfo, error) {
	infos := []FortressInfo{}
	err := db.conn.Select(&infos, `SELECT name, run_id, width, height, agents, tick,
		length(payload) AS size, saved_at
		FROM fortresses ORDER BY saved_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("list fortresses: %w", err)
	}
	return infos, nil
}

// DeleteFortress removes the named fortress.
func (db *DB) DeleteFortress(name string) error {
	res, err := db.conn.Exec("DELETE FROM fortresses WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("delete fortress %s: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("fortress %s: %w", name, ErrNotFound)
	}
	return nil
}

// SaveLogs appends one step's narration lines for a run.
func (db *DB) SaveLogs(runID string, tick uint64, lines []string) error {
	if len(lines) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, line := range lines {
		_, err := tx.Exec(
			"INSERT INTO step_logs (run_id, tick, line) VALUES (?, ?, ?)",
			runID, tick, line,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RecentLogs returns the most recent N narration lines across runs, newest first.
func (db *DB) RecentLogs(limit int) ([]LogLine, error) {
	lines := []LogLine{}
	err := db.conn.Select(&lines,
		"SELECT run_id, tick, line FROM step_logs ORDER BY id DESC LIMIT ?",
		limit,
	)
	return lines, err
}

// SaveMeta stores a key-value pair.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value. Missing keys yield ErrNotFound.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("meta %s: %w", key, ErrNotFound)
	}
	return value, err
}
