// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"

	"foodgram/internal/apperr"
	"foodgram/internal/models"
)

// TagReader reads tags.
type TagReader interface {
	List(ctx context.Context) ([]models.Tag, error)
	FindByID(ctx context.Context, id int64) (*models.Tag, error)
}

// IngredientReader reads ingredients.
type IngredientReader interface {
	Search(ctx context.Context, prefix string) ([]models.Ingredient, error)
	FindByID(ctx context.Context, id int64) (*models.Ingredient, error)
}

// Reference serves the read-only tag and ingredient catalogues. Neither
// list is paginated.
type Reference struct {
	tags        TagReader
	ingredients IngredientReader
}

// NewReference creates a new Reference handler group.
func NewReference(tags TagReader, ingredients IngredientReader) *Reference {
	return &Reference{tags: tags, ingredients: ingredients}
}

// Tags lists all tags.
func (h *Reference) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tags.List(r.Context())
	if err != nil {
		writeError(w, r, apperr.Internal("list tags", err))
		return
	}
	writeJSON(w, http.StatusOK, nonNil(tags))
}

// Tag returns one tag.
func (h *Reference) Tag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	tag, err := h.tags.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, r, apperr.Internal("load tag", err))
		return
	}
	if tag == nil {
		writeError(w, r, apperr.NotFound("Тег не найден"))
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

// Ingredients lists ingredients whose name starts with ?name=,
// case-insensitively.
func (h *Reference) Ingredients(w http.ResponseWriter, r *http.Request) {
	items, err := h.ingredients.Search(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		writeError(w, r, apperr.Internal("search ingredients", err))
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

// Ingredient returns one ingredient.
func (h *Reference) Ingredient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	item, err := h.ingredients.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, r, apperr.Internal("load ingredient", err))
		return
	}
	if item == nil {
		writeError(w, r, apperr.NotFound("Ингредиент не найден"))
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
