// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package recipes

import (
	"context"

	"foodgram/internal/apperr"
	"foodgram/internal/models"
)

// UserView returns u as seen by viewerID.
func (s *Service) UserView(ctx context.Context, viewerID int64, u *models.User) (*models.UserView, error) {
	subscribed, err := s.Subscriptions.Subset(ctx, viewerID, []int64{u.ID})
	if err != nil {
		return nil, apperr.Internal("load subscriptions", err)
	}
	v := toUserView(u, subscribed[u.ID])
	return &v, nil
}

// UserViews returns the views of users, in order.
func (s *Service) UserViews(ctx context.Context, viewerID int64, users []models.User) ([]models.UserView, error) {
	ids := make([]int64, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	subscribed, err := s.Subscriptions.Subset(ctx, viewerID, ids)
	if err != nil {
		return nil, apperr.Internal("load subscriptions", err)
	}
	views := make([]models.UserView, len(users))
	for i := range users {
		views[i] = toUserView(&users[i], subscribed[users[i].ID])
	}
	return views, nil
}

// AuthorsWithRecipes returns each author with up to recipesLimit of their
// newest recipes (all when recipesLimit <= 0) and their recipe count.
func (s *Service) AuthorsWithRecipes(ctx context.Context, viewerID int64, authors []models.User, recipesLimit int) ([]models.AuthorWithRecipes, error) {
	views, err := s.UserViews(ctx, viewerID, authors)
	if err != nil {
		return nil, err
	}
	out := make([]models.AuthorWithRecipes, len(authors))
	for i, v := range views {
		rs, err := s.Recipes.ListByAuthor(ctx, v.ID, recipesLimit)
		if err != nil {
			return nil, apperr.Internal("load author recipes", err)
		}
		count, err := s.Recipes.CountByAuthor(ctx, v.ID)
		if err != nil {
			return nil, apperr.Internal("count author recipes", err)
		}
		minified := make([]models.RecipeMinified, len(rs))
		for j := range rs {
			minified[j] = rs[j].Minified()
		}
		out[i] = models.AuthorWithRecipes{UserView: v, Recipes: minified, RecipesCount: count}
	}
	return out, nil
}

func (s *Service) userViews(ctx context.Context, viewerID int64, ids []int64) (map[int64]models.UserView, error) {
	users, err := s.Users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal("load authors", err)
	}
	authorIDs := make([]int64, 0, len(users))
	for id := range users {
		authorIDs = append(authorIDs, id)
	}
	subscribed, err := s.Subscriptions.Subset(ctx, viewerID, authorIDs)
	if err != nil {
		return nil, apperr.Internal("load subscriptions", err)
	}
	views := make(map[int64]models.UserView, len(users))
	for id, u := range users {
		views[id] = toUserView(&u, subscribed[id])
	}
	return views, nil
}

func toUserView(u *models.User, subscribed bool) models.UserView {
	return models.UserView{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
		Avatar:       u.Avatar,
	}
}
