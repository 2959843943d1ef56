package recipes

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodgram/internal/apperr"
	"foodgram/internal/composition"
	"foodgram/internal/models"
)

// memRecipes is an in-memory RecipeStore with the store's partial update
// semantics.
type memRecipes struct {
	nextID  int64
	recipes map[int64]*models.Recipe
	tags    map[int64][]int64
	lines   map[int64][]models.ProductLine
}

func newMemRecipes() *memRecipes {
	return &memRecipes{
		recipes: map[int64]*models.Recipe{},
		tags:    map[int64][]int64{},
		lines:   map[int64][]models.ProductLine{},
	}
}

func (m *memRecipes) Create(_ context.Context, authorID int64, in models.RecipeInput) (*models.Recipe, error) {
	m.nextID++
	r := &models.Recipe{
		ID: m.nextID, AuthorID: authorID, Name: *in.Name, Text: *in.Text,
		CookingTime: *in.CookingTime, Image: *in.Image, PubDate: time.Now(),
	}
	m.recipes[r.ID] = r
	m.tags[r.ID] = in.TagIDs
	m.lines[r.ID] = in.Ingredients
	cp := *r
	return &cp, nil
}

func (m *memRecipes) Update(_ context.Context, id int64, in models.RecipeInput) (*models.Recipe, error) {
	r, ok := m.recipes[id]
	if !ok {
		return nil, nil
	}
	if in.Name != nil {
		r.Name = *in.Name
	}
	if in.Text != nil {
		r.Text = *in.Text
	}
	if in.CookingTime != nil {
		r.CookingTime = *in.CookingTime
	}
	if in.Image != nil {
		r.Image = *in.Image
	}
	if in.TagIDs != nil {
		m.tags[id] = in.TagIDs
	}
	if in.Ingredients != nil {
		m.lines[id] = in.Ingredients
	}
	cp := *r
	return &cp, nil
}

func (m *memRecipes) Delete(_ context.Context, id int64) (bool, error) {
	_, ok := m.recipes[id]
	delete(m.recipes, id)
	return ok, nil
}

func (m *memRecipes) FindByID(_ context.Context, id int64) (*models.Recipe, error) {
	r, ok := m.recipes[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *memRecipes) List(_ context.Context, f models.RecipeFilter) ([]models.Recipe, int, error) {
	var out []models.Recipe
	for id := int64(1); id <= m.nextID; id++ {
		if r, ok := m.recipes[id]; ok && (f.AuthorID == 0 || r.AuthorID == f.AuthorID) {
			out = append(out, *r)
		}
	}
	return out, len(out), nil
}

func (m *memRecipes) ListByAuthor(ctx context.Context, authorID int64, limit int) ([]models.Recipe, error) {
	out, _, _ := m.List(ctx, models.RecipeFilter{AuthorID: authorID})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRecipes) CountByAuthor(ctx context.Context, authorID int64) (int, error) {
	_, n, _ := m.List(ctx, models.RecipeFilter{AuthorID: authorID})
	return n, nil
}

func (m *memRecipes) IngredientsFor(_ context.Context, ids []int64) (map[int64][]models.IngredientAmount, error) {
	out := map[int64][]models.IngredientAmount{}
	for _, id := range ids {
		for _, l := range m.lines[id] {
			out[id] = append(out[id], models.IngredientAmount{ID: l.IngredientID, Name: "ing", MeasurementUnit: "g", Amount: l.Amount})
		}
	}
	return out, nil
}

type memTags struct{ m *memRecipes }

func (t memTags) ForRecipes(_ context.Context, ids []int64) (map[int64][]models.Tag, error) {
	out := map[int64][]models.Tag{}
	for _, id := range ids {
		for _, tagID := range t.m.tags[id] {
			out[id] = append(out[id], models.Tag{ID: tagID, Name: "tag", Slug: "tag"})
		}
	}
	return out, nil
}

type memUsers map[int64]models.User

func (u memUsers) FindByIDs(_ context.Context, ids []int64) (map[int64]models.User, error) {
	out := map[int64]models.User{}
	for _, id := range ids {
		if user, ok := u[id]; ok {
			out[id] = user
		}
	}
	return out, nil
}

// pairs is a FlagStore over a fixed set of (subject, object) pairs.
type pairs map[[2]int64]bool

func (p pairs) Subset(_ context.Context, subject int64, objects []int64) (map[int64]bool, error) {
	out := map[int64]bool{}
	for _, o := range objects {
		if p[[2]int64{subject, o}] {
			out[o] = true
		}
	}
	return out, nil
}

// passThrough accepts every payload and converts it like the real validator.
type passThrough struct{}

func (passThrough) Validate(_ context.Context, p composition.Payload, _ composition.Mode) (models.RecipeInput, error) {
	in := models.RecipeInput{Name: p.Name, Text: p.Text, CookingTime: p.CookingTime, Image: p.Image, TagIDs: p.Tags}
	if p.Ingredients != nil {
		for _, ref := range p.Ingredients {
			in.Ingredients = append(in.Ingredients, models.ProductLine{IngredientID: ref.ID, Amount: ref.Amount})
		}
	}
	return in, nil
}

const (
	author = int64(1)
	reader = int64(2)
)

func newService(favorites, cart, subs pairs) (*Service, *memRecipes) {
	m := newMemRecipes()
	return NewService(Deps{
		Recipes: m,
		Tags:    memTags{m},
		Users: memUsers{
			author: {ID: author, Username: "chef", Email: "chef@example.com"},
			reader: {ID: reader, Username: "reader", Email: "reader@example.com"},
		},
		Favorites:     favorites,
		Cart:          cart,
		Subscriptions: subs,
		Validator:     passThrough{},
	}), m
}

func str(s string) *string { return &s }
func num(i int) *int       { return &i }

func payload() composition.Payload {
	return composition.Payload{
		Name: str("Борщ"), Text: str("Варить."), CookingTime: num(90), Image: str("recipes/borsch.png"),
		Tags:        []int64{1},
		Ingredients: []composition.IngredientRef{{ID: 10, Amount: 300}, {ID: 11, Amount: 2}},
	}
}

func TestCreateReturnsCanonicalView(t *testing.T) {
	svc, _ := newService(pairs{}, pairs{}, pairs{})

	v, err := svc.Create(t.Context(), author, payload())
	require.NoError(t, err)
	assert.Equal(t, "Борщ", v.Name)
	assert.Len(t, v.Ingredients, 2)
	assert.Len(t, v.Tags, 1)
	assert.Equal(t, "chef", v.Author.Username)
	assert.False(t, v.IsFavorited)
	assert.False(t, v.IsInShoppingCart)
}

func TestViewFlagsPerViewer(t *testing.T) {
	svc, _ := newService(
		pairs{{reader, 1}: true},
		pairs{{reader, 1}: true},
		pairs{{reader, author}: true},
	)
	_, err := svc.Create(t.Context(), author, payload())
	require.NoError(t, err)

	v, err := svc.Get(t.Context(), reader, 1)
	require.NoError(t, err)
	assert.True(t, v.IsFavorited)
	assert.True(t, v.IsInShoppingCart)
	assert.True(t, v.Author.IsSubscribed)

	anon, err := svc.Get(t.Context(), 0, 1)
	require.NoError(t, err)
	assert.False(t, anon.IsFavorited)
	assert.False(t, anon.IsInShoppingCart)
	assert.False(t, anon.Author.IsSubscribed)
}

func TestUpdateByNonAuthorForbidden(t *testing.T) {
	svc, _ := newService(pairs{}, pairs{}, pairs{})
	_, err := svc.Create(t.Context(), author, payload())
	require.NoError(t, err)

	_, err = svc.Update(t.Context(), reader, 1, composition.Payload{Name: str("x")})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	err = svc.Delete(t.Context(), reader, 1)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	err = svc.Delete(t.Context(), 0, 1)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestUpdateNameOnlyKeepsRest(t *testing.T) {
	svc, _ := newService(pairs{}, pairs{}, pairs{})
	created, err := svc.Create(t.Context(), author, payload())
	require.NoError(t, err)

	updated, err := svc.Update(t.Context(), author, created.ID, composition.Payload{Name: str("Щи")})
	require.NoError(t, err)
	assert.Equal(t, "Щи", updated.Name)
	assert.Equal(t, created.Text, updated.Text)
	assert.Equal(t, created.CookingTime, updated.CookingTime)
	assert.Equal(t, created.Image, updated.Image)
	assert.Equal(t, created.Tags, updated.Tags)
	assert.Equal(t, created.Ingredients, updated.Ingredients)
}

func TestMissingRecipe(t *testing.T) {
	svc, _ := newService(pairs{}, pairs{}, pairs{})

	_, err := svc.Get(t.Context(), 0, 404)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = svc.Update(t.Context(), author, 404, composition.Payload{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(t.Context(), author, 404), apperr.ErrNotFound)
}

func TestDeleteByAuthor(t *testing.T) {
	svc, m := newService(pairs{}, pairs{}, pairs{})
	_, err := svc.Create(t.Context(), author, payload())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(t.Context(), author, 1))
	assert.Empty(t, m.recipes)
}

func TestListEmptyIsNotNil(t *testing.T) {
	svc, _ := newService(pairs{}, pairs{}, pairs{})
	views, total, err := svc.List(t.Context(), models.RecipeFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, views)
}

func TestAuthorsWithRecipesLimit(t *testing.T) {
	svc, _ := newService(pairs{}, pairs{}, pairs{{reader, author}: true})
	for range 3 {
		_, err := svc.Create(t.Context(), author, payload())
		require.NoError(t, err)
	}

	out, err := svc.AuthorsWithRecipes(t.Context(), reader, []models.User{{ID: author, Username: "chef"}}, 2)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].IsSubscribed)
	assert.Len(t, out[0].Recipes, 2)
	assert.Equal(t, 3, out[0].RecipesCount)
}
