// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package recipes runs the recipe write path (validate, authorize, store)
// and builds the per-viewer read-models returned by the API.
package recipes

import (
	"context"
	"errors"

	"foodgram/internal/apperr"
	"foodgram/internal/composition"
	"foodgram/internal/models"
	"foodgram/internal/store"
)

// RecipeStore is the recipe persistence the service needs.
type RecipeStore interface {
	Create(ctx context.Context, authorID int64, in models.RecipeInput) (*models.Recipe, error)
	Update(ctx context.Context, id int64, in models.RecipeInput) (*models.Recipe, error)
	Delete(ctx context.Context, id int64) (bool, error)
	FindByID(ctx context.Context, id int64) (*models.Recipe, error)
	List(ctx context.Context, f models.RecipeFilter) ([]models.Recipe, int, error)
	ListByAuthor(ctx context.Context, authorID int64, limit int) ([]models.Recipe, error)
	CountByAuthor(ctx context.Context, authorID int64) (int, error)
	IngredientsFor(ctx context.Context, recipeIDs []int64) (map[int64][]models.IngredientAmount, error)
}

// TagStore loads recipe tags.
type TagStore interface {
	ForRecipes(ctx context.Context, recipeIDs []int64) (map[int64][]models.Tag, error)
}

// UserStore loads recipe authors.
type UserStore interface {
	FindByIDs(ctx context.Context, ids []int64) (map[int64]models.User, error)
}

// FlagStore answers which objects a viewer is paired with.
type FlagStore interface {
	Subset(ctx context.Context, subject int64, objects []int64) (map[int64]bool, error)
}

// PayloadValidator checks recipe payloads.
type PayloadValidator interface {
	Validate(ctx context.Context, p composition.Payload, mode composition.Mode) (models.RecipeInput, error)
}

// Deps groups the collaborators of a Service.
type Deps struct {
	Recipes       RecipeStore
	Tags          TagStore
	Users         UserStore
	Favorites     FlagStore
	Cart          FlagStore
	Subscriptions FlagStore
	Validator     PayloadValidator
}

// Service implements recipe operations for a given viewer. A viewer id of
// zero is an anonymous caller.
type Service struct {
	Deps
}

// NewService returns a Service wired to deps.
func NewService(deps Deps) *Service {
	return &Service{Deps: deps}
}

var errRecipeNotFound = apperr.NotFound("Рецепт не найден")

// Get returns the recipe as seen by viewerID.
func (s *Service) Get(ctx context.Context, viewerID, id int64) (*models.RecipeView, error) {
	r, err := s.Recipes.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("load recipe", err)
	}
	if r == nil {
		return nil, errRecipeNotFound
	}
	return s.view(ctx, viewerID, r)
}

// Find returns the stored recipe or NotFound.
func (s *Service) Find(ctx context.Context, id int64) (*models.Recipe, error) {
	r, err := s.Recipes.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("load recipe", err)
	}
	if r == nil {
		return nil, errRecipeNotFound
	}
	return r, nil
}

// List returns one page of recipes matching f, plus the total count.
func (s *Service) List(ctx context.Context, f models.RecipeFilter) ([]models.RecipeView, int, error) {
	rs, total, err := s.Recipes.List(ctx, f)
	if err != nil {
		return nil, 0, apperr.Internal("list recipes", err)
	}
	views, err := s.views(ctx, f.ViewerID, rs)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// Create validates p and stores a new recipe authored by authorID.
func (s *Service) Create(ctx context.Context, authorID int64, p composition.Payload) (*models.RecipeView, error) {
	in, err := s.Validator.Validate(ctx, p, composition.Create)
	if err != nil {
		return nil, err
	}
	r, err := s.Recipes.Create(ctx, authorID, in)
	if err != nil {
		return nil, writeError("create recipe", err)
	}
	return s.view(ctx, authorID, r)
}

// Update applies a partial update. Only the author may update a recipe.
func (s *Service) Update(ctx context.Context, userID, id int64, p composition.Payload) (*models.RecipeView, error) {
	r, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.IsOwner(userID) {
		return nil, apperr.Forbidden("Изменять рецепт может только его автор")
	}

	in, err := s.Validator.Validate(ctx, p, composition.Update)
	if err != nil {
		return nil, err
	}
	updated, err := s.Recipes.Update(ctx, id, in)
	if err != nil {
		return nil, writeError("update recipe", err)
	}
	if updated == nil {
		return nil, errRecipeNotFound
	}
	return s.view(ctx, userID, updated)
}

// Delete removes a recipe. Only the author may delete it.
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	r, err := s.Find(ctx, id)
	if err != nil {
		return err
	}
	if !r.IsOwner(userID) {
		return apperr.Forbidden("Удалять рецепт может только его автор")
	}
	deleted, err := s.Recipes.Delete(ctx, id)
	if err != nil {
		return apperr.Internal("delete recipe", err)
	}
	if !deleted {
		return errRecipeNotFound
	}
	return nil
}

// writeError maps constraint failures that slipped past validation, such
// as a tag deleted between validation and insert.
func writeError(op string, err error) error {
	switch {
	case errors.Is(err, store.ErrConflict):
		return apperr.DuplicateReference("ingredients", "Ингредиенты повторяются")
	case errors.Is(err, store.ErrMissingReference):
		return apperr.InvalidField("ingredients", "Указан несуществующий объект")
	}
	return apperr.Internal(op, err)
}

func (s *Service) view(ctx context.Context, viewerID int64, r *models.Recipe) (*models.RecipeView, error) {
	views, err := s.views(ctx, viewerID, []models.Recipe{*r})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// views builds read-models for rs with one query per concern.
func (s *Service) views(ctx context.Context, viewerID int64, rs []models.Recipe) ([]models.RecipeView, error) {
	views := make([]models.RecipeView, 0, len(rs))
	if len(rs) == 0 {
		return views, nil
	}

	ids := make([]int64, len(rs))
	authorIDs := make([]int64, 0, len(rs))
	for i, r := range rs {
		ids[i] = r.ID
		authorIDs = append(authorIDs, r.AuthorID)
	}

	tags, err := s.Tags.ForRecipes(ctx, ids)
	if err != nil {
		return nil, apperr.Internal("load recipe tags", err)
	}
	ingredients, err := s.Recipes.IngredientsFor(ctx, ids)
	if err != nil {
		return nil, apperr.Internal("load recipe ingredients", err)
	}
	authors, err := s.userViews(ctx, viewerID, authorIDs)
	if err != nil {
		return nil, err
	}
	favorited, err := s.Favorites.Subset(ctx, viewerID, ids)
	if err != nil {
		return nil, apperr.Internal("load favorites", err)
	}
	inCart, err := s.Cart.Subset(ctx, viewerID, ids)
	if err != nil {
		return nil, apperr.Internal("load shopping cart", err)
	}

	for _, r := range rs {
		v := models.RecipeView{
			ID:               r.ID,
			Tags:             tags[r.ID],
			Author:           authors[r.AuthorID],
			Ingredients:      ingredients[r.ID],
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            r.Image,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
		}
		if v.Tags == nil {
			v.Tags = []models.Tag{}
		}
		if v.Ingredients == nil {
			v.Ingredients = []models.IngredientAmount{}
		}
		views = append(views, v)
	}
	return views, nil
}
