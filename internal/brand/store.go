package brand

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no profile exists under the requested name.
var ErrNotFound = errors.New("brand: profile not found")

// DefaultProfileName is used when the caller does not name a profile.
const DefaultProfileName = "default"

// Store persists brand profiles in a SQLite database.
type Store struct {
	db *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("brand: open store: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS brand_profiles (
		name TEXT PRIMARY KEY,
		profile TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("brand: migrate: %w", err)
	}
	return nil
}

// Save upserts a profile under its name, defaulting the name when empty.
func (s *Store) Save(profile *Profile) error {
	if profile.Name == "" {
		profile.Name = DefaultProfileName
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("brand: encode profile: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO brand_profiles (name, profile, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET profile = excluded.profile, updated_at = excluded.updated_at`,
		profile.Name, string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("brand: save profile: %w", err)
	}
	return nil
}

// Load fetches a profile by name.
func (s *Store) Load(name string) (*Profile, error) {
	if name == "" {
		name = DefaultProfileName
	}
	row := s.db.QueryRow(`SELECT profile FROM brand_profiles WHERE name = ?`, name)

	var data string
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("brand: load profile: %w", err)
	}

	var profile Profile
	if err := json.Unmarshal([]byte(data), &profile); err != nil {
		return nil, fmt.Errorf("brand: decode profile: %w", err)
	}
	return &profile, nil
}

// List returns the stored profile names, most recently updated first.
func (s *Store) List() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM brand_profiles ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("brand: list profiles: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Delete removes a profile by name. Deleting a missing profile is not an error.
func (s *Store) Delete(name string) error {
	if name == "" {
		name = DefaultProfileName
	}
	_, err := s.db.Exec(`DELETE FROM brand_profiles WHERE name = ?`, name)
	return err
}
