// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"foodgram/internal/models"
)

// IngredientStore manages ingredient reference data.
type IngredientStore struct {
	db *sql.DB
}

// NewIngredientStore returns a new IngredientStore.
func NewIngredientStore(db *sql.DB) *IngredientStore {
	return &IngredientStore{db: db}
}

// likeEscaper escapes LIKE wildcards so user input matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search returns ingredients whose name starts with prefix, compared
// case-insensitively. An empty prefix lists every ingredient.
func (s *IngredientStore) Search(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	pattern := likeEscaper.Replace(strings.ToLower(prefix)) + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, measurement_unit FROM ingredients
		WHERE LOWER(name) LIKE $1
		ORDER BY name, id
	`, pattern)
	if err != nil {
		return nil, fmt.Errorf("search ingredients: %w", err)
	}
	return collectIngredients(rows)
}

// FindByID retrieves an ingredient by ID. Returns nil if not found.
func (s *IngredientStore) FindByID(ctx context.Context, id int64) (*models.Ingredient, error) {
	var i models.Ingredient
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, measurement_unit FROM ingredients WHERE id = $1`, id,
	).Scan(&i.ID, &i.Name, &i.MeasurementUnit)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find ingredient by id: %w", err)
	}
	return &i, nil
}

// FindByIDs returns the ingredients whose IDs are in ids, ordered by name.
func (s *IngredientStore) FindByIDs(ctx context.Context, ids []int64) ([]models.Ingredient, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, measurement_unit FROM ingredients
		WHERE id = ANY($1) ORDER BY name, id
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("find ingredients by ids: %w", err)
	}
	return collectIngredients(rows)
}

// Import get-or-creates each (name, unit) pair. Returns the number of new rows.
func (s *IngredientStore) Import(ctx context.Context, items []models.Ingredient) (int, error) {
	inserted := 0
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, it := range items {
			res, err := tx.ExecContext(ctx, `
				INSERT INTO ingredients (name, measurement_unit) VALUES ($1, $2)
				ON CONFLICT (name, measurement_unit) DO NOTHING
			`, it.Name, it.MeasurementUnit)
			if err != nil {
				return fmt.Errorf("import ingredient %q: %w", it.Name, err)
			}
			n, _ := res.RowsAffected()
			inserted += int(n)
		}
		return nil
	})
	return inserted, err
}

func collectIngredients(rows *sql.Rows) ([]models.Ingredient, error) {
	defer rows.Close()
	var items []models.Ingredient
	for rows.Next() {
		var i models.Ingredient
		if err := rows.Scan(&i.ID, &i.Name, &i.MeasurementUnit); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
