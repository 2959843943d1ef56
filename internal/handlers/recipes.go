// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"foodgram/internal/apperr"
	"foodgram/internal/composition"
	"foodgram/internal/middleware"
	"foodgram/internal/models"
	"foodgram/internal/shopping"
	"foodgram/internal/shortlink"
)

// RecipeService runs recipe reads and writes for a viewer.
type RecipeService interface {
	Get(ctx context.Context, viewerID, id int64) (*models.RecipeView, error)
	Find(ctx context.Context, id int64) (*models.Recipe, error)
	List(ctx context.Context, f models.RecipeFilter) ([]models.RecipeView, int, error)
	Create(ctx context.Context, authorID int64, p composition.Payload) (*models.RecipeView, error)
	Update(ctx context.Context, userID, id int64, p composition.Payload) (*models.RecipeView, error)
	Delete(ctx context.Context, userID, id int64) error
}

// ShoppingLister computes a user's shopping list.
type ShoppingLister interface {
	Compute(ctx context.Context, userID int64) (*models.ShoppingList, error)
}

// DocumentRenderer renders a shopping list into a binary document.
type DocumentRenderer interface {
	Render(list *models.ShoppingList) ([]byte, error)
}

// LinkCodec issues and resolves recipe short codes.
type LinkCodec interface {
	CodeFor(ctx context.Context, recipeID int64) (string, error)
	Resolve(ctx context.Context, code string) (int64, error)
}

// RecipesDeps groups the collaborators of the Recipes handlers.
type RecipesDeps struct {
	Recipes     RecipeService
	Favorites   Relation
	Cart        Relation
	Shopping    ShoppingLister
	PDF         DocumentRenderer
	Links       LinkCodec
	PublicURL   string
	FrontendURL string
}

// Recipes groups the recipe, favorite, cart and short-link handlers.
type Recipes struct {
	deps RecipesDeps
}

// NewRecipes creates a new Recipes handler group.
func NewRecipes(deps RecipesDeps) *Recipes {
	return &Recipes{deps: deps}
}

// List returns a filtered page of recipes, newest first.
func (h *Recipes) List(w http.ResponseWriter, r *http.Request) {
	p, err := parsePage(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	f, err := parseRecipeFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	f.Limit, f.Offset = p.Limit, p.Offset()

	views, total, err := h.deps.Recipes.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := newPage(r, h.deps.PublicURL, p, total, nonNil(views))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// parseRecipeFilter reads author, tags, is_favorited and
// is_in_shopping_cart from the query string.
func parseRecipeFilter(r *http.Request) (models.RecipeFilter, error) {
	q := r.URL.Query()
	f := models.RecipeFilter{
		ViewerID: middleware.UserIDFromCtx(r.Context()),
		TagSlugs: q["tags"],
	}

	if v := q.Get("author"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, fieldError("author", "Введите число.")
		}
		f.AuthorID = id
	}

	var err error
	if f.IsFavorited, err = flagParam(q.Get("is_favorited"), "is_favorited"); err != nil {
		return f, err
	}
	if f.IsInShoppingCart, err = flagParam(q.Get("is_in_shopping_cart"), "is_in_shopping_cart"); err != nil {
		return f, err
	}
	return f, nil
}

// flagParam parses a 1/0 query flag. Empty means "don't filter".
func flagParam(v, field string) (*bool, error) {
	var b bool
	switch v {
	case "":
		return nil, nil
	case "1", "true":
		b = true
	case "0", "false":
		b = false
	default:
		return nil, fieldError(field, "Выберите корректный вариант.")
	}
	return &b, nil
}

// Get returns one recipe as seen by the caller.
func (h *Recipes) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.deps.Recipes.Get(r.Context(), middleware.UserIDFromCtx(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Create publishes a recipe authored by the caller.
func (h *Recipes) Create(w http.ResponseWriter, r *http.Request) {
	var p composition.Payload
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.deps.Recipes.Create(r.Context(), middleware.UserIDFromCtx(r.Context()), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// Update applies a partial update. Omitted fields keep their values.
func (h *Recipes) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var p composition.Payload
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.deps.Recipes.Update(r.Context(), middleware.UserIDFromCtx(r.Context()), id, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Delete removes a recipe owned by the caller.
func (h *Recipes) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.deps.Recipes.Delete(r.Context(), middleware.UserIDFromCtx(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddFavorite, RemoveFavorite, AddToCart and RemoveFromCart map the HTTP
// verbs onto the relation toggles.
func (h *Recipes) AddFavorite(w http.ResponseWriter, r *http.Request) {
	h.addRelation(w, r, h.deps.Favorites)
}

func (h *Recipes) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	h.removeRelation(w, r, h.deps.Favorites)
}

func (h *Recipes) AddToCart(w http.ResponseWriter, r *http.Request) {
	h.addRelation(w, r, h.deps.Cart)
}

func (h *Recipes) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	h.removeRelation(w, r, h.deps.Cart)
}

func (h *Recipes) addRelation(w http.ResponseWriter, r *http.Request, rel Relation) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := rel.Add(r.Context(), middleware.UserIDFromCtx(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	recipe, err := h.deps.Recipes.Find(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, recipe.Minified())
}

func (h *Recipes) removeRelation(w http.ResponseWriter, r *http.Request, rel Relation) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := rel.Remove(r.Context(), middleware.UserIDFromCtx(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DownloadShoppingCart exports the caller's shopping list as plain text,
// or as PDF with ?format=pdf.
func (h *Recipes) DownloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	list, err := h.deps.Shopping.Compute(r.Context(), middleware.UserIDFromCtx(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "pdf" {
		doc, err := h.deps.PDF.Render(list)
		if err != nil {
			writeError(w, r, apperr.Internal("render shopping pdf", err))
			return
		}
		writeAttachment(w, "application/pdf", shopping.PDFFilename, doc)
		return
	}
	writeAttachment(w, "text/plain; charset=utf-8", shopping.TextFilename, []byte(shopping.RenderText(list)))
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// GetLink returns the recipe's short link, creating it on first use.
func (h *Recipes) GetLink(w http.ResponseWriter, r *http.Request) {
	link, err := h.shortURL(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"short-link": link})
}

// GetLinkQR returns the recipe's short link as a PNG QR code.
func (h *Recipes) GetLinkQR(w http.ResponseWriter, r *http.Request) {
	link, err := h.shortURL(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	png, err := shortlink.QR(link)
	if err != nil {
		writeError(w, r, apperr.Internal("short link qr", err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (h *Recipes) shortURL(r *http.Request) (string, error) {
	id, err := pathID(r, "id")
	if err != nil {
		return "", err
	}
	if _, err := h.deps.Recipes.Find(r.Context(), id); err != nil {
		return "", err
	}
	code, err := h.deps.Links.CodeFor(r.Context(), id)
	if err != nil {
		return "", err
	}
	return shortlink.URL(h.deps.PublicURL, code), nil
}

// ResolveShortLink redirects /s/{code}/ to the recipe page of the frontend.
func (h *Recipes) ResolveShortLink(w http.ResponseWriter, r *http.Request) {
	id, err := h.deps.Links.Resolve(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("%s/recipes/%d/", h.deps.FrontendURL, id), http.StatusFound)
}
