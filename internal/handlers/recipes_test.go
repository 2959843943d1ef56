package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodgram/internal/apperr"
	"foodgram/internal/models"
)

func newTestRecipes(recipes *fakeRecipes, favorites, cart *fakeRelation) *Recipes {
	return NewRecipes(RecipesDeps{
		Recipes:   recipes,
		Favorites: favorites,
		Cart:      cart,
		Shopping: fakeShopping{list: &models.ShoppingList{
			Date:        time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC),
			Items:       []models.ShoppingItem{{Name: "мука", MeasurementUnit: "г", TotalAmount: 500}},
			RecipeNames: []string{"Блины"},
		}},
		PDF:         fakePDF{},
		Links:       fakeLinks{},
		PublicURL:   testPublicURL,
		FrontendURL: "http://front.test",
	})
}

func sampleRecipes() *fakeRecipes {
	return newFakeRecipes(
		models.Recipe{ID: 1, AuthorID: 7, Name: "Блины", Image: "recipes/1.png", CookingTime: 30},
		models.Recipe{ID: 2, AuthorID: 8, Name: "Борщ", Image: "recipes/2.png", CookingTime: 90},
	)
}

// --------------------------------------------------------------------------
// Listing and filters
// --------------------------------------------------------------------------

func TestRecipeListFilters(t *testing.T) {
	recipes := sampleRecipes()
	h := newTestRecipes(recipes, newFakeRelation(), newFakeRelation())

	rec := serve(t, http.MethodGet, "/api/recipes/", h.List,
		"/api/recipes/?author=7&tags=breakfast&tags=lunch&is_favorited=1&is_in_shopping_cart=0&limit=1", "", 5)

	require.Equal(t, http.StatusOK, rec.Code)
	f := recipes.lastFilter
	assert.Equal(t, int64(5), f.ViewerID)
	assert.Equal(t, int64(7), f.AuthorID)
	assert.Equal(t, []string{"breakfast", "lunch"}, f.TagSlugs)
	require.NotNil(t, f.IsFavorited)
	assert.True(t, *f.IsFavorited)
	require.NotNil(t, f.IsInShoppingCart)
	assert.False(t, *f.IsInShoppingCart)
	assert.Equal(t, 1, f.Limit)
	assert.Equal(t, 0, f.Offset)

	body := decodeBody(t, rec)
	assert.EqualValues(t, 2, body["count"])
	assert.NotNil(t, body["next"])
}

func TestRecipeListAnonymousWithoutFilters(t *testing.T) {
	recipes := sampleRecipes()
	h := newTestRecipes(recipes, newFakeRelation(), newFakeRelation())

	rec := serve(t, http.MethodGet, "/api/recipes/", h.List, "/api/recipes/?page=2&limit=1", "", 0)

	require.Equal(t, http.StatusOK, rec.Code)
	f := recipes.lastFilter
	assert.Zero(t, f.ViewerID)
	assert.Nil(t, f.IsFavorited)
	assert.Nil(t, f.IsInShoppingCart)
	assert.Equal(t, 1, f.Offset)
}

func TestRecipeListRejectsBadFilters(t *testing.T) {
	h := newTestRecipes(sampleRecipes(), newFakeRelation(), newFakeRelation())

	for _, q := range []string{"?author=me", "?is_favorited=maybe", "?is_in_shopping_cart=2"} {
		rec := serve(t, http.MethodGet, "/api/recipes/", h.List, "/api/recipes/"+q, "", 1)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestRecipeListEmptyResultsEncodeAsArray(t *testing.T) {
	h := newTestRecipes(newFakeRecipes(), newFakeRelation(), newFakeRelation())

	rec := serve(t, http.MethodGet, "/api/recipes/", h.List, "/api/recipes/", "", 0)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"results":[]`)
}

// --------------------------------------------------------------------------
// CRUD
// --------------------------------------------------------------------------

func TestRecipeGet(t *testing.T) {
	h := newTestRecipes(sampleRecipes(), newFakeRelation(), newFakeRelation())

	rec := serve(t, http.MethodGet, "/api/recipes/{id}/", h.Get, "/api/recipes/2/", "", 0)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Борщ", decodeBody(t, rec)["name"])

	rec = serve(t, http.MethodGet, "/api/recipes/{id}/", h.Get, "/api/recipes/9/", "", 0)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecipeCreateDecodesPayload(t *testing.T) {
	recipes := sampleRecipes()
	h := newTestRecipes(recipes, newFakeRelation(), newFakeRelation())

	rec := serve(t, http.MethodPost, "/api/recipes/", h.Create, "/api/recipes/",
		`{"name":"Оладьи","text":"Смешать","cooking_time":20,"image":"data","tags":[1,2],"ingredients":[{"id":5,"amount":200}]}`, 7)

	require.Equal(t, http.StatusCreated, rec.Code)
	p := recipes.lastInput
	require.NotNil(t, p.Name)
	assert.Equal(t, "Оладьи", *p.Name)
	require.NotNil(t, p.CookingTime)
	assert.Equal(t, 20, *p.CookingTime)
	assert.Equal(t, []int64{1, 2}, p.Tags)
	require.Len(t, p.Ingredients, 1)
	assert.Equal(t, int64(5), p.Ingredients[0].ID)
	assert.Equal(t, 200, p.Ingredients[0].Amount)
}

func TestRecipeCreateFieldError(t *testing.T) {
	recipes := sampleRecipes()
	recipes.createErr = apperr.InvalidField("cooking_time", "Время приготовления не может быть меньше 1 минуты!")
	h := newTestRecipes(recipes, newFakeRelation(), newFakeRelation())

	rec := serve(t, http.MethodPost, "/api/recipes/", h.Create, "/api/recipes/", `{"cooking_time":0}`, 7)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, []any{"Время приготовления не может быть меньше 1 минуты!"}, body["cooking_time"])
}

func TestRecipePatchKeepsOmittedFields(t *testing.T) {
	recipes := sampleRecipes()
	h := newTestRecipes(recipes, newFakeRelation(), newFakeRelation())

	rec := serve(t, http.MethodPatch, "/api/recipes/{id}/", h.Update, "/api/recipes/1/", `{"name":"Блинчики"}`, 7)

	require.Equal(t, http.StatusOK, rec.Code)
	p := recipes.lastInput
	assert.Nil(t, p.Tags, "tags not supplied")
	assert.Nil(t, p.Ingredients, "ingredients not supplied")
	assert.Nil(t, p.Image)
	assert.Equal(t, "Блинчики", decodeBody(t, rec)["name"])
}

func TestRecipeWritesByNonAuthorForbidden(t *testing.T) {
	h := newTestRecipes(sampleRecipes(), newFakeRelation(), newFakeRelation())

	rec := serve(t, http.MethodPatch, "/api/recipes/{id}/", h.Update, "/api/recipes/1/", `{"name":"x"}`, 8)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(t, http.MethodDelete, "/api/recipes/{id}/", h.Delete, "/api/recipes/1/", "", 8)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(t, http.MethodDelete, "/api/recipes/{id}/", h.Delete, "/api/recipes/1/", "", 7)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

// --------------------------------------------------------------------------
// Favorites and shopping cart
// --------------------------------------------------------------------------

func TestFavoriteToggle(t *testing.T) {
	h := newTestRecipes(sampleRecipes(), newFakeRelation(1, 2), newFakeRelation(1, 2))
	const pattern = "/api/recipes/{id}/favorite/"

	rec := serve(t, http.MethodPost, pattern, h.AddFavorite, "/api/recipes/1/favorite/", "", 5)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 1, body["id"])
	assert.Equal(t, "Блины", body["name"])
	assert.EqualValues(t, 30, body["cooking_time"])
	assert.NotContains(t, body, "text")

	rec = serve(t, http.MethodPost, pattern, h.AddFavorite, "/api/recipes/1/favorite/", "", 5)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, http.MethodDelete, pattern, h.RemoveFavorite, "/api/recipes/1/favorite/", "", 5)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(t, http.MethodDelete, pattern, h.RemoveFavorite, "/api/recipes/1/favorite/", "", 5)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartIsIndependentOfFavorites(t *testing.T) {
	favorites, cart := newFakeRelation(1), newFakeRelation(1)
	h := newTestRecipes(sampleRecipes(), favorites, cart)

	rec := serve(t, http.MethodPost, "/f/{id}", h.AddFavorite, "/f/1", "", 5)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(t, http.MethodPost, "/c/{id}", h.AddToCart, "/c/1", "", 5)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(t, http.MethodDelete, "/c/{id}", h.RemoveFromCart, "/c/1", "", 5)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, favorites.pairs[[2]int64{5, 1}])
}

func TestAddToCartUnknownRecipe(t *testing.T) {
	h := newTestRecipes(sampleRecipes(), newFakeRelation(), newFakeRelation())

	rec := serve(t, http.MethodPost, "/c/{id}", h.AddToCart, "/c/77", "", 5)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// --------------------------------------------------------------------------
// Shopping list export
// --------------------------------------------------------------------------

func TestDownloadShoppingCartText(t *testing.T) {
	h := newTestRecipes(sampleRecipes(), newFakeRelation(), newFakeRelation())

	rec := serve(t, http.MethodGet, "/dl", h.DownloadShoppingCart, "/dl", "", 5)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="shopping_list.txt"`, rec.Header().Get("Content-Disposition"))
	lines := strings.Split(rec.Body.String(), "\n")
	assert.Equal(t, []string{
		"Список покупок на дату: 08-03-2026",
		"Продукты:",
		"1. Мука (г) — 500",
		"Для приготовления следующих рецептов:",
		"Блины",
	}, lines)
}

func TestDownloadShoppingCartPDF(t *testing.T) {
	h := newTestRecipes(sampleRecipes(), newFakeRelation(), newFakeRelation())

	rec := serve(t, http.MethodGet, "/dl", h.DownloadShoppingCart, "/dl?format=pdf", "", 5)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "shopping_list.pdf")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
}

// --------------------------------------------------------------------------
// Short links
// --------------------------------------------------------------------------

func TestGetLink(t *testing.T) {
	h := newTestRecipes(sampleRecipes(), newFakeRelation(), newFakeRelation())

	rec := serve(t, http.MethodGet, "/api/recipes/{id}/get-link/", h.GetLink, "/api/recipes/2/get-link/", "", 0)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testPublicURL+"/s/Code02/", decodeBody(t, rec)["short-link"])
}

func TestGetLinkUnknownRecipe(t *testing.T) {
	h := newTestRecipes(sampleRecipes(), newFakeRelation(), newFakeRelation())

	rec := serve(t, http.MethodGet, "/api/recipes/{id}/get-link/", h.GetLink, "/api/recipes/9/get-link/", "", 0)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetLinkQR(t *testing.T) {
	h := newTestRecipes(sampleRecipes(), newFakeRelation(), newFakeRelation())

	rec := serve(t, http.MethodGet, "/q/{id}", h.GetLinkQR, "/q/1", "", 0)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"))
}

func TestResolveShortLink(t *testing.T) {
	h := newTestRecipes(sampleRecipes(), newFakeRelation(), newFakeRelation())

	rec := serve(t, http.MethodGet, "/s/{code}/", h.ResolveShortLink, "/s/Code12/", "", 0)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "http://front.test/recipes/12/", rec.Header().Get("Location"))

	rec = serve(t, http.MethodGet, "/s/{code}/", h.ResolveShortLink, "/s/zzz/", "", 0)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// --------------------------------------------------------------------------
// Reference data
// --------------------------------------------------------------------------

type fakeTags []models.Tag

func (f fakeTags) List(context.Context) ([]models.Tag, error) { return f, nil }

func (f fakeTags) FindByID(_ context.Context, id int64) (*models.Tag, error) {
	for i := range f {
		if f[i].ID == id {
			return &f[i], nil
		}
	}
	return nil, nil
}

type fakeIngredients struct {
	items      []models.Ingredient
	lastPrefix string
}

func (f *fakeIngredients) Search(_ context.Context, prefix string) ([]models.Ingredient, error) {
	f.lastPrefix = prefix
	var out []models.Ingredient
	for _, it := range f.items {
		if strings.HasPrefix(strings.ToLower(it.Name), strings.ToLower(prefix)) {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeIngredients) FindByID(_ context.Context, id int64) (*models.Ingredient, error) {
	for i := range f.items {
		if f.items[i].ID == id {
			return &f.items[i], nil
		}
	}
	return nil, nil
}

func TestReferenceEndpoints(t *testing.T) {
	ingredients := &fakeIngredients{items: []models.Ingredient{
		{ID: 1, Name: "Мука", MeasurementUnit: "г"},
		{ID: 2, Name: "Молоко", MeasurementUnit: "мл"},
		{ID: 3, Name: "Соль", MeasurementUnit: "г"},
	}}
	h := NewReference(fakeTags{{ID: 1, Name: "Завтрак", Slug: "breakfast"}}, ingredients)

	rec := serve(t, http.MethodGet, "/tags", h.Tags, "/tags", "", 0)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"slug":"breakfast"`)

	rec = serve(t, http.MethodGet, "/tags/{id}", h.Tag, "/tags/2", "", 0)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, http.MethodGet, "/ingredients", h.Ingredients, "/ingredients?name=%D0%BC%D0%BE", "", 0)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "мо", ingredients.lastPrefix)
	assert.Contains(t, rec.Body.String(), "Молоко")
	assert.NotContains(t, rec.Body.String(), "Мука")

	rec = serve(t, http.MethodGet, "/ingredients", h.Ingredients, "/ingredients?name=xyz", "", 0)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = serve(t, http.MethodGet, "/ingredients/{id}", h.Ingredient, "/ingredients/3", "", 0)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "г", decodeBody(t, rec)["measurement_unit"])
}
