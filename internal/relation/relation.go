// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package relation implements add and remove for the (subject, object) pair
// relations: favorites, shopping cart entries and subscriptions.
package relation

import (
	"context"
	"errors"

	"foodgram/internal/apperr"
	"foodgram/internal/store"
)

// PairStore persists one pair table.
type PairStore interface {
	Exists(ctx context.Context, subject, object int64) (bool, error)
	Insert(ctx context.Context, subject, object int64) error
	Delete(ctx context.Context, subject, object int64) (bool, error)
}

// ObjectStore reports whether the pair's object exists.
type ObjectStore interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// Messages are the user-facing texts of a relation.
type Messages struct {
	Self      string
	NotFound  string
	Duplicate string
	Missing   string
}

// Kind configures a Toggle.
type Kind struct {
	Name          string
	SelfForbidden bool
	Messages      Messages
}

// The three relation kinds.
var (
	Favorite = Kind{
		Name: "favorite",
		Messages: Messages{
			NotFound:  "Рецепт не найден",
			Duplicate: "Рецепт уже есть в избранном",
			Missing:   "Рецепта нет в избранном",
		},
	}
	Cart = Kind{
		Name: "shopping_cart",
		Messages: Messages{
			NotFound:  "Рецепт не найден",
			Duplicate: "Рецепт уже есть в списке покупок",
			Missing:   "Рецепта нет в списке покупок",
		},
	}
	Subscription = Kind{
		Name:          "subscription",
		SelfForbidden: true,
		Messages: Messages{
			Self:      "Нельзя подписаться на самого себя",
			NotFound:  "Пользователь не найден",
			Duplicate: "Вы уже подписаны на этого пользователя",
			Missing:   "Вы не подписаны на этого пользователя",
		},
	}
)

// Toggle adds and removes pairs of one relation kind.
type Toggle struct {
	kind    Kind
	pairs   PairStore
	objects ObjectStore
}

// New returns a Toggle for kind over the given stores.
func New(kind Kind, pairs PairStore, objects ObjectStore) *Toggle {
	return &Toggle{kind: kind, pairs: pairs, objects: objects}
}

// Add stores the (subject, object) pair. The self check runs before any
// lookup; an existing pair or a lost insert race yields AlreadyExists.
func (t *Toggle) Add(ctx context.Context, subject, object int64) error {
	if t.kind.SelfForbidden && subject == object {
		return apperr.SelfReferenceForbidden(t.kind.Messages.Self)
	}

	ok, err := t.objects.Exists(ctx, object)
	if err != nil {
		return apperr.Internal("check "+t.kind.Name+" object", err)
	}
	if !ok {
		return apperr.NotFound(t.kind.Messages.NotFound)
	}

	exists, err := t.pairs.Exists(ctx, subject, object)
	if err != nil {
		return apperr.Internal("check "+t.kind.Name, err)
	}
	if exists {
		return apperr.AlreadyExists(t.kind.Messages.Duplicate)
	}

	if err := t.pairs.Insert(ctx, subject, object); err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			return apperr.AlreadyExists(t.kind.Messages.Duplicate)
		case errors.Is(err, store.ErrMissingReference):
			return apperr.NotFound(t.kind.Messages.NotFound)
		case errors.Is(err, store.ErrCheckViolation):
			return apperr.SelfReferenceForbidden(t.kind.Messages.Self)
		}
		return apperr.Internal("add "+t.kind.Name, err)
	}
	return nil
}

// Remove deletes the pair. An unknown object or a missing pair yields
// NotFound.
func (t *Toggle) Remove(ctx context.Context, subject, object int64) error {
	ok, err := t.objects.Exists(ctx, object)
	if err != nil {
		return apperr.Internal("check "+t.kind.Name+" object", err)
	}
	if !ok {
		return apperr.NotFound(t.kind.Messages.NotFound)
	}

	removed, err := t.pairs.Delete(ctx, subject, object)
	if err != nil {
		return apperr.Internal("remove "+t.kind.Name, err)
	}
	if !removed {
		return apperr.NotFound(t.kind.Messages.Missing)
	}
	return nil
}
