// Package db provides PostgreSQL access for persisted viewer preferences.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultProfile is the profile used when the caller does not name one.
const DefaultProfile = "default"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS preferences (
	id         UUID PRIMARY KEY,
	profile    TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (profile, key)
)`

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Preference is one stored key/value pair.
type Preference struct {
	ID        uuid.UUID `json:"id"`
	Profile   string    `json:"profile"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the preferences table when it is missing.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create preferences table: %w", err)
	}
	return nil
}

// GetPreference returns the value stored under key. The boolean is false when
// no row exists.
func (db *DB) GetPreference(ctx context.Context, profile, key string) (string, bool, error) {
	var value string
	err := db.pool.QueryRow(ctx,
		`SELECT value FROM preferences WHERE profile = $1 AND key = $2`,
		profileOrDefault(profile), key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get preference %s: %w", key, err)
	}
	return value, true, nil
}

// SetPreference upserts the value stored under key.
func (db *DB) SetPreference(ctx context.Context, profile, key, value string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO preferences (id, profile, key, value)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (profile, key) DO UPDATE SET value = $4, updated_at = NOW()`,
		uuid.New(), profileOrDefault(profile), key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to save preference %s: %w", key, err)
	}
	return nil
}

// DeletePreference removes key. Deleting a missing key is not an error.
func (db *DB) DeletePreference(ctx context.Context, profile, key string) error {
	_, err := db.pool.Exec(ctx,
		`DELETE FROM preferences WHERE profile = $1 AND key = $2`,
		profileOrDefault(profile), key,
	)
	if err != nil {
		return fmt.Errorf("failed to delete preference %s: %w", key, err)
	}
	return nil
}

// ListPreferences returns every preference of a profile ordered by key.
func (db *DB) ListPreferences(ctx context.Context, profile string) ([]Preference, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, profile, key, value, updated_at
		 FROM preferences WHERE profile = $1 ORDER BY key`,
		profileOrDefault(profile),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list preferences: %w", err)
	}
	defer rows.Close()

	var prefs []Preference
	for rows.Next() {
		var p Preference
		if err := rows.Scan(&p.ID, &p.Profile, &p.Key, &p.Value, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}

func profileOrDefault(profile string) string {
	if profile == "" {
		return DefaultProfile
	}
	return profile
}
