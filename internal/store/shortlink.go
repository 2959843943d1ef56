// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"foodgram/internal/models"
)

// Constraints on short_links that the codec reacts to.
const (
	ConstraintShortLinkRecipe = "short_links_pkey"
	ConstraintShortLinkCode   = "short_links_short_code_key"
)

// ShortLinkStore persists recipe short codes.
type ShortLinkStore struct {
	db *sql.DB
}

// NewShortLinkStore returns a new ShortLinkStore.
func NewShortLinkStore(db *sql.DB) *ShortLinkStore {
	return &ShortLinkStore{db: db}
}

func (s *ShortLinkStore) findOne(ctx context.Context, where string, arg any) (*models.ShortLink, error) {
	var l models.ShortLink
	err := s.db.QueryRowContext(ctx,
		`SELECT recipe_id, short_code, created_at FROM short_links WHERE `+where+` = $1`, arg,
	).Scan(&l.RecipeID, &l.ShortCode, &l.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// FindByRecipe returns the recipe's short link, or nil if none was made yet.
func (s *ShortLinkStore) FindByRecipe(ctx context.Context, recipeID int64) (*models.ShortLink, error) {
	l, err := s.findOne(ctx, "recipe_id", recipeID)
	if err != nil {
		return nil, fmt.Errorf("find short link by recipe: %w", err)
	}
	return l, nil
}

// FindByCode returns the link for code, or nil if the code is unknown.
func (s *ShortLinkStore) FindByCode(ctx context.Context, code string) (*models.ShortLink, error) {
	l, err := s.findOne(ctx, "short_code", code)
	if err != nil {
		return nil, fmt.Errorf("find short link by code: %w", err)
	}
	return l, nil
}

// Insert stores a new link. Either unique constraint may reject it; the
// *ConflictError names which one.
func (s *ShortLinkStore) Insert(ctx context.Context, recipeID int64, code string) (*models.ShortLink, error) {
	l := models.ShortLink{RecipeID: recipeID, ShortCode: code}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO short_links (recipe_id, short_code) VALUES ($1, $2)
		RETURNING created_at
	`, recipeID, code).Scan(&l.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert short link: %w", translate(err))
	}
	return &l, nil
}
