// Package cache is the client-side durable mirror: a key/value store where
// each key holds the full JSON value of one domain collection. Writes always
// replace the whole value; there are no partial-key updates.
package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/doraapp/dora/internal/database"
)

// Well-known mirror keys.
const (
	KeyApplications   = "visaApplications"
	KeyCountries      = "countries"
	KeyUsers          = "users"
	KeyPosts          = "communityPosts"
	KeyServices       = "integrationServices"
	KeyUserLocation   = "userLocation"
	KeyAuthToken      = "authToken"
	KeyWizardProgress = "wizardProgress"
)

type Cache struct {
	db *sql.DB
}

// Open opens (or creates) the mirror database at the given path. Use
// ":memory:" for tests.
func Open(path string) (*Cache, error) {
	db, err := database.Connect(path)
	if err != nil {
		return nil, fmt.Errorf("open mirror db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS mirror (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create mirror table: %w", err)
	}

	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Get decodes the value stored under key into v. The second return reports
// whether the key was present; an absent key is not an error.
func (c *Cache) Get(key string, v any) (bool, error) {
	var raw string
	err := c.db.QueryRow(`SELECT value FROM mirror WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %q: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("decode %q: %w", key, err)
	}
	return true, nil
}

// Set encodes v as JSON and replaces whatever was stored under key.
func (c *Cache) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	_, err = c.db.Exec(
		`INSERT INTO mirror (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(raw), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Delete removes a key. Deleting an absent key is a no-op.
func (c *Cache) Delete(key string) error {
	_, err := c.db.Exec(`DELETE FROM mirror WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// GetString reads a plain string value such as the auth token. Missing keys
// yield the empty string.
func (c *Cache) GetString(key string) string {
	var s string
	if ok, err := c.Get(key, &s); !ok || err != nil {
		return ""
	}
	return s
}

// SetString stores a plain string value.
func (c *Cache) SetString(key, value string) error {
	return c.Set(key, value)
}
