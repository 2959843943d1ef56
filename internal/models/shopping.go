// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// CartLine is one product line of a recipe that sits in a user's cart.
type CartLine struct {
	RecipeID        int64  `db:"recipe_id"`
	IngredientName  string `db:"name"`
	MeasurementUnit string `db:"measurement_unit"`
	Amount          int    `db:"amount"`
}

// ShoppingItem is an ingredient total across every recipe in the cart.
type ShoppingItem struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	TotalAmount     int    `json:"total_amount"`
}

// ShoppingList is the computed, render-ready shopping list.
type ShoppingList struct {
	Date        time.Time      `json:"date"`
	Items       []ShoppingItem `json:"items"`
	RecipeNames []string       `json:"recipes"`
}

// ShortLink binds a public short code to a recipe.
type ShortLink struct {
	RecipeID  int64     `json:"recipe_id"`
	ShortCode string    `json:"short_code"`
	CreatedAt time.Time `json:"created_at"`
}
