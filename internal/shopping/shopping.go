// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package shopping computes a user's shopping list from the recipes in
// their cart and renders it as plain text or PDF. The list is recomputed
// on every request.
package shopping

import (
	"cmp"
	"context"
	"slices"
	"time"

	"foodgram/internal/apperr"
	"foodgram/internal/models"
	"foodgram/internal/store"
)

// Source reads cart contents. Lines and recipes come from one consistent
// read.
type Source interface {
	Cart(ctx context.Context, userID int64) ([]models.CartLine, []store.CartRecipe, error)
}

// Service builds shopping lists.
type Service struct {
	src Source
	now func() time.Time
}

// NewService returns a Service reading from src. now stamps each list; nil
// means time.Now.
func NewService(src Source, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{src: src, now: now}
}

// Compute returns the aggregated list for userID. An empty cart yields an
// empty list.
func (s *Service) Compute(ctx context.Context, userID int64) (*models.ShoppingList, error) {
	lines, recipes, err := s.src.Cart(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("load cart", err)
	}

	names := make([]string, len(recipes))
	for i, r := range recipes {
		names[i] = r.Name
	}
	return &models.ShoppingList{
		Date:        s.now(),
		Items:       Aggregate(lines),
		RecipeNames: names,
	}, nil
}

// Aggregate sums amounts per (ingredient name, unit) and sorts the result
// by name, then unit, comparing bytes.
func Aggregate(lines []models.CartLine) []models.ShoppingItem {
	type key struct{ name, unit string }
	index := make(map[key]int, len(lines))
	items := make([]models.ShoppingItem, 0, len(lines))

	for _, l := range lines {
		k := key{l.IngredientName, l.MeasurementUnit}
		if i, ok := index[k]; ok {
			items[i].TotalAmount += l.Amount
			continue
		}
		index[k] = len(items)
		items = append(items, models.ShoppingItem{
			Name:            l.IngredientName,
			MeasurementUnit: l.MeasurementUnit,
			TotalAmount:     l.Amount,
		})
	}

	slices.SortFunc(items, func(a, b models.ShoppingItem) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.MeasurementUnit, b.MeasurementUnit))
	})
	return items
}
