// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"foodgram/internal/models"
)

// ShoppingStore reads the raw material of a user's shopping list.
type ShoppingStore struct {
	db *sqlx.DB
}

// NewShoppingStore wraps db for struct scanning. driverName is the name the
// connection was opened with ("pgx").
func NewShoppingStore(db *sql.DB, driverName string) *ShoppingStore {
	return &ShoppingStore{db: sqlx.NewDb(db, driverName)}
}

// Cart returns every product line of every recipe in the user's cart and
// the cart's recipes ordered by name, then id. Both reads share one
// read-only snapshot so the lines and the names always agree.
func (s *ShoppingStore) Cart(ctx context.Context, userID int64) ([]models.CartLine, []CartRecipe, error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, nil, fmt.Errorf("cart begin: %w", err)
	}
	defer tx.Rollback()

	lines, err := cartLines(ctx, tx, userID)
	if err != nil {
		return nil, nil, err
	}
	recipes, err := cartRecipes(ctx, tx, userID)
	if err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("cart commit: %w", err)
	}
	return lines, recipes, nil
}

func cartLines(ctx context.Context, q sqlx.QueryerContext, userID int64) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := sqlx.SelectContext(ctx, q, &lines, `
		SELECT pl.recipe_id, i.name, i.measurement_unit, pl.amount
		FROM shopping_cart sc
		JOIN product_lines pl ON pl.recipe_id = sc.recipe_id
		JOIN ingredients i ON i.id = pl.ingredient_id
		WHERE sc.user_id = $1
		ORDER BY pl.id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("cart lines: %w", err)
	}
	return lines, nil
}

// CartRecipe is a recipe name in the cart, keyed by id for stable ordering.
type CartRecipe struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

func cartRecipes(ctx context.Context, q sqlx.QueryerContext, userID int64) ([]CartRecipe, error) {
	var recipes []CartRecipe
	err := sqlx.SelectContext(ctx, q, &recipes, `
		SELECT r.id, r.name
		FROM shopping_cart sc
		JOIN recipes r ON r.id = sc.recipe_id
		WHERE sc.user_id = $1
		ORDER BY r.name, r.id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("cart recipes: %w", err)
	}
	return recipes, nil
}
