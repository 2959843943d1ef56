// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package composition enforces the structural rules of a recipe create or
// update payload. It only reads from the store: names for duplicate
// messages and existence of referenced tags and ingredients.
package composition

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"foodgram/internal/apperr"
	"foodgram/internal/models"
)

// Mode selects create or partial-update semantics.
type Mode int

const (
	// Create requires every field.
	Create Mode = iota
	// Update keeps omitted fields; supplied fields follow the create rules.
	Update
)

// IngredientRef is one requested product line.
type IngredientRef struct {
	ID     int64 `json:"id"`
	Amount int   `json:"amount"`
}

// Payload is the decoded recipe body. Nil fields were absent from the
// request.
type Payload struct {
	Name        *string         `json:"name"`
	Text        *string         `json:"text"`
	CookingTime *int            `json:"cooking_time"`
	Image       *string         `json:"image"`
	Tags        []int64         `json:"tags"`
	Ingredients []IngredientRef `json:"ingredients"`
}

// TagLookup resolves tag ids.
type TagLookup interface {
	FindByIDs(ctx context.Context, ids []int64) ([]models.Tag, error)
}

// IngredientLookup resolves ingredient ids.
type IngredientLookup interface {
	FindByIDs(ctx context.Context, ids []int64) ([]models.Ingredient, error)
}

// Validator checks recipe payloads against the reference data.
type Validator struct {
	tags        TagLookup
	ingredients IngredientLookup
}

// New returns a Validator reading reference data through the given lookups.
func New(tags TagLookup, ingredients IngredientLookup) *Validator {
	return &Validator{tags: tags, ingredients: ingredients}
}

// Validate checks p and returns the normalized input for the store.
func (v *Validator) Validate(ctx context.Context, p Payload, mode Mode) (models.RecipeInput, error) {
	var in models.RecipeInput

	if err := checkText(p.Name, "name", "Название", models.MaxRecipeNameLen, mode); err != nil {
		return in, err
	}
	if err := checkText(p.Text, "text", "Описание", 0, mode); err != nil {
		return in, err
	}
	if err := checkText(p.Image, "image", "Фотография", 0, mode); err != nil {
		return in, err
	}

	if p.CookingTime == nil {
		if mode == Create {
			return in, apperr.MissingRequiredField("cooking_time", "Обязательное поле.")
		}
	} else if *p.CookingTime < models.MinCookingTime {
		return in, apperr.InvalidField("cooking_time",
			"Время приготовления не может быть меньше %d минуты!", models.MinCookingTime)
	} else if *p.CookingTime > models.MaxCookingTime {
		return in, apperr.InvalidField("cooking_time",
			"Время приготовления не может быть больше %d минут!", models.MaxCookingTime)
	}

	if p.Tags != nil || mode == Create {
		if len(p.Tags) == 0 {
			return in, apperr.MissingRequiredField("tags", `Поле "Теги" обязательно для загрузки!`)
		}
		if err := v.checkTags(ctx, p.Tags); err != nil {
			return in, err
		}
	}

	if p.Ingredients != nil || mode == Create {
		if len(p.Ingredients) == 0 {
			return in, apperr.MissingRequiredField("ingredients", `Поле "Ингредиенты" обязательно для загрузки!`)
		}
		for _, ref := range p.Ingredients {
			if ref.Amount < models.MinIngredientAmount {
				return in, apperr.InvalidField("ingredients",
					"Количество ингредиента не может быть меньше %d!", models.MinIngredientAmount)
			}
			if ref.Amount > models.MaxIngredientAmount {
				return in, apperr.InvalidField("ingredients",
					"Количество ингредиента не может быть больше %d!", models.MaxIngredientAmount)
			}
		}
		if err := v.checkIngredients(ctx, p.Ingredients); err != nil {
			return in, err
		}
	}

	in.Name = trimmed(p.Name)
	in.Text = p.Text
	in.CookingTime = p.CookingTime
	in.Image = p.Image
	if p.Tags != nil {
		in.TagIDs = slices.Clone(p.Tags)
	}
	if p.Ingredients != nil {
		in.Ingredients = make([]models.ProductLine, len(p.Ingredients))
		for i, ref := range p.Ingredients {
			in.Ingredients[i] = models.ProductLine{IngredientID: ref.ID, Amount: ref.Amount}
		}
	}
	return in, nil
}

func checkText(s *string, field, label string, maxLen int, mode Mode) error {
	if s == nil {
		if mode == Create {
			return apperr.MissingRequiredField(field, "Обязательное поле.")
		}
		return nil
	}
	if strings.TrimSpace(*s) == "" {
		return apperr.MissingRequiredField(field, `Поле "%s" обязательно для загрузки!`, label)
	}
	if maxLen > 0 && utf8.RuneCountInString(*s) > maxLen {
		return apperr.InvalidField(field, "Убедитесь, что это значение содержит не более %d символов.", maxLen)
	}
	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

func (v *Validator) checkTags(ctx context.Context, ids []int64) error {
	dups := duplicates(ids)
	unique := distinct(ids)

	found, err := v.tags.FindByIDs(ctx, unique)
	if err != nil {
		return apperr.Internal("look up tags", err)
	}
	names := make(map[int64]string, len(found))
	for _, t := range found {
		names[t.ID] = t.Name
	}

	if len(dups) > 0 {
		return apperr.DuplicateReference("tags", "Следующие Теги повторяются: %s", joinNames(dups, names))
	}
	if missing := missingIDs(unique, names); len(missing) > 0 {
		return apperr.InvalidField("tags", "Недопустимый первичный ключ: %s - объект не существует.", joinIDs(missing))
	}
	return nil
}

func (v *Validator) checkIngredients(ctx context.Context, refs []IngredientRef) error {
	ids := make([]int64, len(refs))
	for i, ref := range refs {
		ids[i] = ref.ID
	}
	dups := duplicates(ids)
	unique := distinct(ids)

	found, err := v.ingredients.FindByIDs(ctx, unique)
	if err != nil {
		return apperr.Internal("look up ingredients", err)
	}
	names := make(map[int64]string, len(found))
	for _, ing := range found {
		names[ing.ID] = ing.Name
	}

	if len(dups) > 0 {
		return apperr.DuplicateReference("ingredients", "Следующие Ингредиенты повторяются: %s", joinNames(dups, names))
	}
	if missing := missingIDs(unique, names); len(missing) > 0 {
		return apperr.InvalidField("ingredients", "Недопустимый первичный ключ: %s - объект не существует.", joinIDs(missing))
	}
	return nil
}

// duplicates returns ids occurring more than once, in first-seen order.
func duplicates(ids []int64) []int64 {
	counts := make(map[int64]int, len(ids))
	var dups []int64
	for _, id := range ids {
		counts[id]++
		if counts[id] == 2 {
			dups = append(dups, id)
		}
	}
	return dups
}

func distinct(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func missingIDs(ids []int64, known map[int64]string) []int64 {
	var missing []int64
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// joinNames names each id, falling back to the id itself when the entity
// does not exist.
func joinNames(ids []int64, names map[int64]string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		if name, ok := names[id]; ok {
			parts[i] = name
		} else {
			parts[i] = fmt.Sprintf("#%d", id)
		}
	}
	return strings.Join(parts, ", ")
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}
