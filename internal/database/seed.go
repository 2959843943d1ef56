package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// defaultTags are the tags a fresh development database starts with.
var defaultTags = []struct {
	Name string
	Slug string
}{
	{"Завтрак", "breakfast"},
	{"Обед", "lunch"},
	{"Ужин", "dinner"},
}

// Seed populates the database with initial development data.
// It inserts the default tags if the tag table is empty.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM tags").Scan(&count); err != nil {
		return fmt.Errorf("seed check tags: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	for _, t := range defaultTags {
		if _, err := tx.Exec(
			`INSERT INTO tags (name, slug) VALUES ($1, $2) ON CONFLICT (slug) DO NOTHING`,
			t.Name, t.Slug,
		); err != nil {
			return fmt.Errorf("seed insert tag %s: %w", t.Slug, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with default tags", "count", len(defaultTags))
	return nil
}
