// Package sqlite implements the persistence gateway over a local
// SQLite database. One row per player name holds the JSON save payload.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/hylla/samla/internal/domain"
	"github.com/hylla/samla/internal/engine"
)

const driverName = "sqlite"

// Gateway persists player saves in a SQLite database.
type Gateway struct {
	db    *sql.DB
	idGen func() string
	clock func() time.Time
}

// Open opens (creating if needed) the save database at path.
func Open(path string) (*Gateway, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return newGateway(db)
}

// OpenInMemory opens a throwaway in-memory save database.
func OpenInMemory() (*Gateway, error) {
	db, err := sql.Open(driverName, "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	return newGateway(db)
}

func newGateway(db *sql.DB) (*Gateway, error) {
	gw := &Gateway{db: db, idGen: uuid.NewString, clock: time.Now}
	if err := gw.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return gw, nil
}

// Close closes the underlying database.
func (g *Gateway) Close() error {
	return g.db.Close()
}

func (g *Gateway) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS saves (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			payload_json TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_saves_name ON saves(name);`,
	}
	for _, stmt := range stmts {
		if _, err := g.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// ListSaves returns every stored save name. Order carries no meaning;
// names sort lexically so listings stay stable.
func (g *Gateway) ListSaves(ctx context.Context) ([]string, error) {
	rows, err := g.db.QueryContext(ctx, `SELECT name FROM saves ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// Save upserts the player's payload under its name key, overwriting any
// previous save for that name.
func (g *Gateway) Save(ctx context.Context, player *domain.PlayerState) error {
	payload, err := engine.EncodeSave(player)
	if err != nil {
		return fmt.Errorf("encode save payload: %w", err)
	}
	now := ts(g.clock())
	_, err = g.db.ExecContext(ctx, `
		INSERT INTO saves(id, name, payload_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET payload_json = excluded.payload_json, updated_at = excluded.updated_at
	`, g.idGen(), player.Name, string(payload), now, now)
	if err != nil {
		return fmt.Errorf("write save: %w", err)
	}
	return nil
}

// Load reads one save by name. A missing row maps to engine.ErrNotFound;
// an undecodable payload surfaces engine.ErrCorruptSave.
func (g *Gateway) Load(ctx context.Context, name string) (*domain.PlayerState, error) {
	var payload string
	err := g.db.QueryRowContext(ctx, `SELECT payload_json FROM saves WHERE name = ?`, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engine.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read save: %w", err)
	}
	return engine.DecodeSave([]byte(payload))
}

func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
