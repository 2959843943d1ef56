// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"

	"foodgram/internal/apperr"
	"foodgram/internal/middleware"
	"foodgram/internal/models"
)

// Credentials looks users up by email and checks their password.
type Credentials interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	CheckPassword(user *models.User, password string) bool
}

// TokenIssuer issues and revokes API tokens.
type TokenIssuer interface {
	Issue(ctx context.Context, userID int64) (string, error)
	Revoke(ctx context.Context, userID int64, token string) error
}

// PayloadChecker validates decoded request structs.
type PayloadChecker interface {
	Validate(s any) error
}

// Auth groups the token login/logout handlers.
type Auth struct {
	users     Credentials
	tokens    TokenIssuer
	validator PayloadChecker
}

// NewAuth creates a new Auth handler group.
func NewAuth(users Credentials, tokens TokenIssuer, validator PayloadChecker) *Auth {
	return &Auth{users: users, tokens: tokens, validator: validator}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login exchanges email and password for an auth token.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.validator.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := a.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, r, apperr.Internal("login lookup", err))
		return
	}
	if user == nil || !a.users.CheckPassword(user, req.Password) {
		writeError(w, r, fieldError("non_field_errors", "Невозможно войти с предоставленными учетными данными."))
		return
	}

	token, err := a.tokens.Issue(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, apperr.Internal("issue token", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"auth_token": token})
}

// Logout revokes the token the request authenticated with.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := a.tokens.Revoke(ctx, middleware.UserIDFromCtx(ctx), middleware.TokenFromCtx(ctx)); err != nil {
		writeError(w, r, apperr.Internal("revoke token", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
