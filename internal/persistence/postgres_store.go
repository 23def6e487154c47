package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresStore persists poses in a PostgreSQL table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects, pings and creates the schema if needed.
func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (ps *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS poses (
		username TEXT PRIMARY KEY,
		map_name TEXT NOT NULL,
		x DOUBLE PRECISION NOT NULL,
		y DOUBLE PRECISION NOT NULL,
		heading DOUBLE PRECISION NOT NULL,
		textures BOOLEAN NOT NULL DEFAULT TRUE,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);
	`
	_, err := ps.db.Exec(schema)
	return err
}

// SavePose upserts the pose for username.
func (ps *PostgresStore) SavePose(username string, rec Record) error {
	query := `
	INSERT INTO poses (username, map_name, x, y, heading, textures, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (username)
	DO UPDATE SET
		map_name = $2, x = $3, y = $4, heading = $5, textures = $6,
		updated_at = $7
	`
	updated := rec.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	_, err := ps.db.Exec(query, username, rec.Map, rec.X, rec.Y, rec.Heading, rec.Textures, updated)
	if err != nil {
		return fmt.Errorf("save pose for %s: %w", username, err)
	}
	return nil
}

// LoadPose returns the pose saved for username.
func (ps *PostgresStore) LoadPose(username string) (Record, error) {
	query := `SELECT map_name, x, y, heading, textures, updated_at FROM poses WHERE username = $1`

	var rec Record
	err := ps.db.QueryRow(query, username).Scan(&rec.Map, &rec.X, &rec.Y, &rec.Heading, &rec.Textures, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%s: %w", username, ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("load pose for %s: %w", username, err)
	}
	return rec, nil
}

// Close closes the database connection.
func (ps *PostgresStore) Close() error {
	log.Println("Closing database connection...")
	return ps.db.Close()
}
