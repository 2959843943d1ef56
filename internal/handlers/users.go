// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"foodgram/internal/apperr"
	"foodgram/internal/middleware"
	"foodgram/internal/models"
	"foodgram/internal/store"
)

// UserStore is the user persistence the Users handlers need.
type UserStore interface {
	Create(ctx context.Context, nu store.NewUser) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, int, error)
	ListSubscriptions(ctx context.Context, userID int64, limit, offset int) ([]models.User, int, error)
	SetPassword(ctx context.Context, userID int64, password string) error
	SetAvatar(ctx context.Context, userID int64, avatar *string) error
	CheckPassword(user *models.User, password string) bool
}

// UserViewer builds per-viewer user read-models.
type UserViewer interface {
	UserView(ctx context.Context, viewerID int64, u *models.User) (*models.UserView, error)
	UserViews(ctx context.Context, viewerID int64, users []models.User) ([]models.UserView, error)
	AuthorsWithRecipes(ctx context.Context, viewerID int64, authors []models.User, recipesLimit int) ([]models.AuthorWithRecipes, error)
}

// Relation adds and removes one kind of (subject, object) pair.
type Relation interface {
	Add(ctx context.Context, subject, object int64) error
	Remove(ctx context.Context, subject, object int64) error
}

// Users groups the user, avatar and subscription handlers.
type Users struct {
	users         UserStore
	views         UserViewer
	subscriptions Relation
	validator     PayloadChecker
	publicURL     string
}

// NewUsers creates a new Users handler group. publicURL prefixes the
// pagination links.
func NewUsers(users UserStore, views UserViewer, subscriptions Relation, validator PayloadChecker, publicURL string) *Users {
	return &Users{
		users:         users,
		views:         views,
		subscriptions: subscriptions,
		validator:     validator,
		publicURL:     publicURL,
	}
}

var errUserNotFound = apperr.NotFound("Пользователь не найден")

type registerRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,max=128"`
}

type registerResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// List returns a page of users.
func (u *Users) List(w http.ResponseWriter, r *http.Request) {
	p, err := parsePage(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	users, total, err := u.users.List(r.Context(), p.Limit, p.Offset())
	if err != nil {
		writeError(w, r, apperr.Internal("list users", err))
		return
	}
	views, err := u.views.UserViews(r.Context(), middleware.UserIDFromCtx(r.Context()), users)
	if err != nil {
		writeError(w, r, err)
		return
	}
	u.writePage(w, r, p, total, views)
}

// Register creates a user account.
func (u *Users) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := u.validator.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := u.users.Create(r.Context(), store.NewUser{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		writeError(w, r, registerError(err))
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

// registerError turns a unique violation into a field error on the
// conflicting column.
func registerError(err error) error {
	if !errors.Is(err, store.ErrConflict) {
		return apperr.Internal("create user", err)
	}
	switch store.ConstraintOf(err) {
	case store.ConstraintUserEmail:
		return fieldError("email", "Пользователь с такой электронной почтой уже существует.")
	case store.ConstraintUserUsername:
		return fieldError("username", "Пользователь с таким именем уже существует.")
	default:
		return apperr.Internal("create user", err)
	}
}

// Get returns one user.
func (u *Users) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	u.writeUser(w, r, id)
}

// Me returns the authenticated user.
func (u *Users) Me(w http.ResponseWriter, r *http.Request) {
	u.writeUser(w, r, middleware.UserIDFromCtx(r.Context()))
}

func (u *Users) writeUser(w http.ResponseWriter, r *http.Request, id int64) {
	user, err := u.load(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := u.views.UserView(r.Context(), middleware.UserIDFromCtx(r.Context()), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (u *Users) load(ctx context.Context, id int64) (*models.User, error) {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("load user", err)
	}
	if user == nil {
		return nil, errUserNotFound
	}
	return user, nil
}

type avatarRequest struct {
	Avatar string `json:"avatar" validate:"required"`
}

// SetAvatar stores the avatar reference of the authenticated user.
func (u *Users) SetAvatar(w http.ResponseWriter, r *http.Request) {
	var req avatarRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := u.validator.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := u.users.SetAvatar(r.Context(), middleware.UserIDFromCtx(r.Context()), &req.Avatar); err != nil {
		writeError(w, r, apperr.Internal("set avatar", err))
		return
	}
	writeJSON(w, http.StatusOK, avatarRequest{Avatar: req.Avatar})
}

var errNoAvatar = apperr.Validation("У вас нет аватара", nil)

// DeleteAvatar clears the avatar of the authenticated user.
func (u *Users) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromCtx(r.Context())
	user, err := u.load(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !user.HasAvatar() {
		writeError(w, r, errNoAvatar)
		return
	}
	if err := u.users.SetAvatar(r.Context(), userID, nil); err != nil {
		writeError(w, r, apperr.Internal("clear avatar", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setPasswordRequest struct {
	NewPassword     string `json:"new_password" validate:"required,max=128"`
	CurrentPassword string `json:"current_password" validate:"required"`
}

// SetPassword changes the authenticated user's password after checking the
// current one.
func (u *Users) SetPassword(w http.ResponseWriter, r *http.Request) {
	var req setPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := u.validator.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := u.load(r.Context(), middleware.UserIDFromCtx(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !u.users.CheckPassword(user, req.CurrentPassword) {
		writeError(w, r, fieldError("current_password", "Неверный пароль."))
		return
	}
	if err := u.users.SetPassword(r.Context(), user.ID, req.NewPassword); err != nil {
		writeError(w, r, apperr.Internal("set password", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Subscriptions returns a page of the authors the caller follows, each
// with their recipes truncated to ?recipes_limit=.
func (u *Users) Subscriptions(w http.ResponseWriter, r *http.Request) {
	p, err := parsePage(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := recipesLimit(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	userID := middleware.UserIDFromCtx(r.Context())
	authors, total, err := u.users.ListSubscriptions(r.Context(), userID, p.Limit, p.Offset())
	if err != nil {
		writeError(w, r, apperr.Internal("list subscriptions", err))
		return
	}
	out, err := u.views.AuthorsWithRecipes(r.Context(), userID, authors, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	u.writePage(w, r, p, total, out)
}

// Subscribe follows the author in the path.
func (u *Users) Subscribe(w http.ResponseWriter, r *http.Request) {
	authorID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := recipesLimit(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	userID := middleware.UserIDFromCtx(r.Context())
	if err := u.subscriptions.Add(r.Context(), userID, authorID); err != nil {
		writeError(w, r, err)
		return
	}

	author, err := u.load(r.Context(), authorID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := u.views.AuthorsWithRecipes(r.Context(), userID, []models.User{*author}, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out[0])
}

// Unsubscribe stops following the author in the path.
func (u *Users) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	authorID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := u.subscriptions.Remove(r.Context(), middleware.UserIDFromCtx(r.Context()), authorID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (u *Users) writePage(w http.ResponseWriter, r *http.Request, p pageRequest, total int, results any) {
	out, err := newPage(r, u.publicURL, p, total, results)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// recipesLimit reads ?recipes_limit=. Absent means no limit.
func recipesLimit(r *http.Request) (int, error) {
	v := r.URL.Query().Get("recipes_limit")
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fieldError("recipes_limit", "Введите правильное число.")
	}
	return n, nil
}
