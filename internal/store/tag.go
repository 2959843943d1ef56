// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"foodgram/internal/models"
)

// TagStore manages tags in the database.
type TagStore struct {
	db *sql.DB
}

// NewTagStore returns a new TagStore.
func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

// List returns all tags ordered by name.
func (s *TagStore) List(ctx context.Context) ([]models.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, slug FROM tags ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return collectTags(rows)
}

// FindByID retrieves a tag by ID. Returns nil if not found.
func (s *TagStore) FindByID(ctx context.Context, id int64) (*models.Tag, error) {
	var t models.Tag
	err := s.db.QueryRowContext(ctx, `SELECT id, name, slug FROM tags WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Slug)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tag by id: %w", err)
	}
	return &t, nil
}

// FindByIDs returns the tags whose IDs are in ids, ordered by name.
// Unknown IDs are silently absent from the result.
func (s *TagStore) FindByIDs(ctx context.Context, ids []int64) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, slug FROM tags WHERE id = ANY($1) ORDER BY name, id`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("find tags by ids: %w", err)
	}
	return collectTags(rows)
}

// ForRecipes returns the tags attached to each of the given recipes.
func (s *TagStore) ForRecipes(ctx context.Context, recipeIDs []int64) (map[int64][]models.Tag, error) {
	result := make(map[int64][]models.Tag, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return result, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT rt.recipe_id, t.id, t.name, t.slug
		FROM recipe_tags rt
		JOIN tags t ON t.id = rt.tag_id
		WHERE rt.recipe_id = ANY($1)
		ORDER BY t.name, t.id
	`, pq.Array(recipeIDs))
	if err != nil {
		return nil, fmt.Errorf("tags for recipes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recipeID int64
		var t models.Tag
		if err := rows.Scan(&recipeID, &t.ID, &t.Name, &t.Slug); err != nil {
			return nil, fmt.Errorf("scan recipe tag: %w", err)
		}
		result[recipeID] = append(result[recipeID], t)
	}
	return result, rows.Err()
}

// Import inserts tags, skipping any whose slug already exists. Returns the
// number of rows actually inserted.
func (s *TagStore) Import(ctx context.Context, tags []models.Tag) (int, error) {
	inserted := 0
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, t := range tags {
			res, err := tx.ExecContext(ctx,
				`INSERT INTO tags (name, slug) VALUES ($1, $2) ON CONFLICT (slug) DO NOTHING`,
				t.Name, t.Slug)
			if err != nil {
				return fmt.Errorf("import tag %s: %w", t.Slug, err)
			}
			n, _ := res.RowsAffected()
			inserted += int(n)
		}
		return nil
	})
	return inserted, err
}

func collectTags(rows *sql.Rows) ([]models.Tag, error) {
	defer rows.Close()
	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
