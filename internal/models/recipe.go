// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Business bounds for recipe composition. The maximums match the
// SMALLINT columns.
const (
	MinCookingTime      = 1
	MinIngredientAmount = 1
	MaxCookingTime      = 32767
	MaxIngredientAmount = 32767
)

// Field length limits shared by validation and the schema.
const (
	MaxRecipeNameLen     = 256
	MaxIngredientNameLen = 128
	MaxUnitLen           = 64
	MaxTagLen            = 32
	MaxEmailLen          = 254
	MaxNameLen           = 150
)

// Recipe is the stored recipe row. Tags and product lines live in their own
// tables and are loaded separately.
type Recipe struct {
	ID          int64     `json:"id"`
	AuthorID    int64     `json:"-"`
	Name        string    `json:"name"`
	Text        string    `json:"text"`
	CookingTime int       `json:"cooking_time"`
	Image       string    `json:"image"`
	PubDate     time.Time `json:"-"`
}

// IsOwner reports whether userID authored the recipe. Anonymous viewers
// (userID 0) never own anything.
func (r *Recipe) IsOwner(userID int64) bool {
	return userID != 0 && r.AuthorID == userID
}

// ProductLine links a recipe to an ingredient with the amount it needs.
type ProductLine struct {
	ID           int64 `json:"-"`
	RecipeID     int64 `json:"-"`
	IngredientID int64 `json:"id"`
	Amount       int   `json:"amount"`
}

// IngredientAmount is a product line joined with its ingredient, as shown
// in the recipe read-model.
type IngredientAmount struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeInput is a validated, normalized create/update payload. Nil pointer
// and nil slice fields mean "not supplied" on partial updates.
type RecipeInput struct {
	Name        *string
	Text        *string
	CookingTime *int
	Image       *string
	TagIDs      []int64
	Ingredients []ProductLine
}

// RecipeView is the canonical read form of a recipe for a given viewer.
type RecipeView struct {
	ID               int64              `json:"id"`
	Tags             []Tag              `json:"tags"`
	Author           UserView           `json:"author"`
	Ingredients      []IngredientAmount `json:"ingredients"`
	IsFavorited      bool               `json:"is_favorited"`
	IsInShoppingCart bool               `json:"is_in_shopping_cart"`
	Name             string             `json:"name"`
	Image            string             `json:"image"`
	Text             string             `json:"text"`
	CookingTime      int                `json:"cooking_time"`
}

// RecipeMinified is the compact recipe form used by favorites, the cart,
// and subscription listings.
type RecipeMinified struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// Minified returns the compact form of the recipe.
func (r *Recipe) Minified() RecipeMinified {
	return RecipeMinified{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}

// RecipeFilter narrows recipe listings. ViewerID scopes the favorite and
// cart filters; they are ignored for anonymous viewers.
type RecipeFilter struct {
	ViewerID         int64
	AuthorID         int64
	TagSlugs         []string
	IsFavorited      *bool
	IsInShoppingCart *bool
	Limit            int
	Offset           int
}
