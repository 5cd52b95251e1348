// Package persistence provides SQLite-based profile storage.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/ritmxoid/internal/roster"
)

// ErrNotFound is returned when a profile or meta key does not exist.
var ErrNotFound = errors.New("not found")

// DB wraps a SQLite connection for profile persistence.
type DB struct {
	conn *sqlx.DB
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
	CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		birth TEXT NOT NULL,
		is_master INTEGER NOT NULL DEFAULT 0,
		team TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_profiles_team ON profiles(team);
	`
	_, err := db.conn.Exec(schema)
	return err
}

type profileRow struct {
	ID       string `db:"id"`
	Name     string `db:"name"`
	Birth    string `db:"birth"`
	IsMaster bool   `db:"is_master"`
	Team     string `db:"team"`
}

func (r profileRow) profile() roster.Profile {
	return roster.Profile{ID: r.ID, Name: r.Name, Birth: r.Birth, IsMaster: r.IsMaster, Team: r.Team}
}

const upsertProfile = `INSERT OR REPLACE INTO profiles
	(id, name, birth, is_master, team) VALUES (?, ?, ?, ?, ?)`

// SaveProfile inserts or replaces a profile. Only one profile may be the
// master; saving a master clears the flag on every other profile.
func (db *DB) SaveProfile(p roster.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if p.IsMaster {
		if _, err := tx.Exec("UPDATE profiles SET is_master = 0 WHERE id != ?", p.ID); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(upsertProfile, p.ID, p.Name, p.Birth, p.IsMaster, p.Team); err != nil {
		return fmt.Errorf("save profile %s: %w", p.ID, err)
	}
	return tx.Commit()
}

// DeleteProfile removes a profile by ID.
func (db *DB) DeleteProfile(id string) error {
	res, err := db.conn.Exec("DELETE FROM profiles WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("profile %s: %w", id, ErrNotFound)
	}
	return nil
}

// Profile loads a single profile.
func (db *DB) Profile(id string) (roster.Profile, error) {
	var row profileRow
	err := db.conn.Get(&row, "SELECT id, name, birth, is_master, team FROM profiles WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return roster.Profile{}, fmt.Errorf("profile %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return roster.Profile{}, err
	}
	return row.profile(), nil
}

// Profiles returns every profile ordered by name.
func (db *DB) Profiles() ([]roster.Profile, error) {
	var rows []profileRow
	if err := db.conn.Select(&rows, "SELECT id, name, birth, is_master, team FROM profiles ORDER BY name, id"); err != nil {
		return nil, err
	}
	out := make([]roster.Profile, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.profile())
	}
	return out, nil
}

// Master returns the master profile.
func (db *DB) Master() (roster.Profile, error) {
	var row profileRow
	err := db.conn.Get(&row, "SELECT id, name, birth, is_master, team FROM profiles WHERE is_master = 1 LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return roster.Profile{}, fmt.Errorf("master profile: %w", ErrNotFound)
	}
	if err != nil {
		return roster.Profile{}, err
	}
	return row.profile(), nil
}

// ImportJSON reads a JSON array of profiles and saves each one in a single
// transaction. Profiles without an ID get a fresh one. When the file flags any
// master, the last one flagged becomes the only master. Returns the number of
// profiles imported.
func (db *DB) ImportJSON(r io.Reader) (int, error) {
	var profiles []roster.Profile
	if err := json.NewDecoder(r).Decode(&profiles); err != nil {
		return 0, fmt.Errorf("decode profiles: %w", err)
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(upsertProfile)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	var master string
	for i, p := range profiles {
		if p.ID == "" {
			fresh, err := roster.NewProfile(p.Name, p.Birth, p.Team)
			if err != nil {
				return 0, fmt.Errorf("profile %d: %w", i, err)
			}
			fresh.IsMaster = p.IsMaster
			p = fresh
		}
		if err := p.Validate(); err != nil {
			return 0, fmt.Errorf("profile %d (%s): %w", i, p.ID, err)
		}
		if _, err := stmt.Exec(p.ID, p.Name, p.Birth, p.IsMaster, p.Team); err != nil {
			return 0, fmt.Errorf("insert profile %s: %w", p.ID, err)
		}
		if p.IsMaster {
			master = p.ID
		}
	}
	if master != "" {
		if _, err := tx.Exec("UPDATE profiles SET is_master = 0 WHERE id != ?", master); err != nil {
			return 0, fmt.Errorf("clear master: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	slog.Info("profiles imported", "count", len(profiles))
	return len(profiles), nil
}

// ExportJSON writes every profile as an indented JSON array.
func (db *DB) ExportJSON(w io.Writer) error {
	profiles, err := db.Profiles()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(profiles)
}

// SetMeta stores a key-value pair.
func (db *DB) SetMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// Meta retrieves a metadata value.
func (db *DB) Meta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("meta %s: %w", key, ErrNotFound)
	}
	return value, err
}
