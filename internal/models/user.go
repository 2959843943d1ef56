// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and the read-models returned by the API.
package models

import "time"

// ReservedUsername is the username that collides with the /users/me/ route.
const ReservedUsername = "me"

// User represents a registered member who can publish and collect recipes.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	Avatar       *string   `json:"avatar"`
	CreatedAt    time.Time `json:"-"`
}

// HasAvatar reports whether the user has an avatar reference set.
func (u *User) HasAvatar() bool {
	return u.Avatar != nil && *u.Avatar != ""
}

// UserView is the public representation of a user as seen by a viewer.
type UserView struct {
	ID           int64   `json:"id"`
	Email        string  `json:"email"`
	Username     string  `json:"username"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	IsSubscribed bool    `json:"is_subscribed"`
	Avatar       *string `json:"avatar"`
}

// AuthorWithRecipes is returned by subscription endpoints: the author plus
// a (possibly truncated) list of their recipes and the full recipe count.
type AuthorWithRecipes struct {
	UserView
	Recipes      []RecipeMinified `json:"recipes"`
	RecipesCount int              `json:"recipes_count"`
}
