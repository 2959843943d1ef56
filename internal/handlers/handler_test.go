// handler_test.go provides shared fakes and request helpers for the handler
// tests. Handlers are exercised through a chi router so that URL parameters
// resolve exactly as they do in production.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"foodgram/internal/apperr"
	"foodgram/internal/composition"
	"foodgram/internal/middleware"
	"foodgram/internal/models"
	"foodgram/internal/store"
)

const testPublicURL = "http://api.test"

// serve routes a single request to h mounted at pattern, authenticated as
// userID (0 for anonymous).
func serve(t *testing.T, method, pattern string, h http.HandlerFunc, target, body string, userID int64) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.Method(method, pattern, h)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != 0 {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// decodeBody decodes the recorder body into a generic map.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body
}

// --------------------------------------------------------------------------
// Users and tokens
// --------------------------------------------------------------------------

// fakeUsers is an in-memory user store. Password hashes are stored in the
// clear.
type fakeUsers struct {
	users  map[int64]*models.User
	subs   map[int64][]int64
	nextID int64
}

func newFakeUsers(users ...models.User) *fakeUsers {
	f := &fakeUsers{users: map[int64]*models.User{}, subs: map[int64][]int64{}, nextID: 100}
	for i := range users {
		u := users[i]
		f.users[u.ID] = &u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, nu store.NewUser) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == nu.Email {
			return nil, fmt.Errorf("create user: %w", &store.ConflictError{Constraint: store.ConstraintUserEmail})
		}
		if u.Username == nu.Username {
			return nil, fmt.Errorf("create user: %w", &store.ConflictError{Constraint: store.ConstraintUserUsername})
		}
	}
	f.nextID++
	u := &models.User{
		ID: f.nextID, Email: nu.Email, Username: nu.Username,
		FirstName: nu.FirstName, LastName: nu.LastName, PasswordHash: nu.Password,
	}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUsers) FindByID(_ context.Context, id int64) (*models.User, error) {
	return f.users[id], nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) sorted() []models.User {
	var out []models.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	slices.SortFunc(out, func(a, b models.User) int { return strings.Compare(a.Username, b.Username) })
	return out
}

func (f *fakeUsers) List(_ context.Context, limit, offset int) ([]models.User, int, error) {
	all := f.sorted()
	return window(all, limit, offset), len(all), nil
}

func (f *fakeUsers) ListSubscriptions(_ context.Context, userID int64, limit, offset int) ([]models.User, int, error) {
	var all []models.User
	for _, id := range f.subs[userID] {
		all = append(all, *f.users[id])
	}
	return window(all, limit, offset), len(all), nil
}

func (f *fakeUsers) SetPassword(_ context.Context, userID int64, password string) error {
	f.users[userID].PasswordHash = password
	return nil
}

func (f *fakeUsers) SetAvatar(_ context.Context, userID int64, avatar *string) error {
	f.users[userID].Avatar = avatar
	return nil
}

func (f *fakeUsers) CheckPassword(user *models.User, password string) bool {
	return user.PasswordHash == password
}

func window[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return nil
	}
	return all[offset:min(offset+limit, len(all))]
}

type fakeTokens struct {
	revoked []string
}

func (f *fakeTokens) Issue(_ context.Context, userID int64) (string, error) {
	return fmt.Sprintf("token-%d", userID), nil
}

func (f *fakeTokens) Revoke(_ context.Context, _ int64, token string) error {
	f.revoked = append(f.revoked, token)
	return nil
}

// fakeViews renders users without subscription lookups.
type fakeViews struct {
	recipes map[int64][]models.RecipeMinified
}

func (f *fakeViews) UserView(_ context.Context, _ int64, u *models.User) (*models.UserView, error) {
	return &models.UserView{ID: u.ID, Email: u.Email, Username: u.Username, Avatar: u.Avatar}, nil
}

func (f *fakeViews) UserViews(ctx context.Context, viewerID int64, users []models.User) ([]models.UserView, error) {
	out := make([]models.UserView, len(users))
	for i := range users {
		v, _ := f.UserView(ctx, viewerID, &users[i])
		out[i] = *v
	}
	return out, nil
}

func (f *fakeViews) AuthorsWithRecipes(ctx context.Context, viewerID int64, authors []models.User, limit int) ([]models.AuthorWithRecipes, error) {
	views, _ := f.UserViews(ctx, viewerID, authors)
	out := make([]models.AuthorWithRecipes, len(views))
	for i, v := range views {
		rs := f.recipes[v.ID]
		count := len(rs)
		if limit > 0 && len(rs) > limit {
			rs = rs[:limit]
		}
		out[i] = models.AuthorWithRecipes{UserView: v, Recipes: nonNil(rs), RecipesCount: count}
	}
	return out, nil
}

// --------------------------------------------------------------------------
// Relations
// --------------------------------------------------------------------------

// fakeRelation mirrors the relation toggle's error contract.
type fakeRelation struct {
	objects map[int64]bool
	pairs   map[[2]int64]bool
	self    bool
}

func newFakeRelation(objects ...int64) *fakeRelation {
	f := &fakeRelation{objects: map[int64]bool{}, pairs: map[[2]int64]bool{}}
	for _, id := range objects {
		f.objects[id] = true
	}
	return f
}

func (f *fakeRelation) Add(_ context.Context, subject, object int64) error {
	if f.self && subject == object {
		return apperr.SelfReferenceForbidden("Нельзя подписаться на самого себя")
	}
	if !f.objects[object] {
		return apperr.NotFound("не найдено")
	}
	if f.pairs[[2]int64{subject, object}] {
		return apperr.AlreadyExists("уже есть")
	}
	f.pairs[[2]int64{subject, object}] = true
	return nil
}

func (f *fakeRelation) Remove(_ context.Context, subject, object int64) error {
	if !f.objects[object] || !f.pairs[[2]int64{subject, object}] {
		return apperr.NotFound("нет")
	}
	delete(f.pairs, [2]int64{subject, object})
	return nil
}

// --------------------------------------------------------------------------
// Recipes
// --------------------------------------------------------------------------

// fakeRecipes is an in-memory RecipeService that records the last filter
// and payload it saw.
type fakeRecipes struct {
	recipes    map[int64]*models.Recipe
	lastFilter models.RecipeFilter
	lastInput  composition.Payload
	createErr  error
}

func newFakeRecipes(rs ...models.Recipe) *fakeRecipes {
	f := &fakeRecipes{recipes: map[int64]*models.Recipe{}}
	for i := range rs {
		r := rs[i]
		f.recipes[r.ID] = &r
	}
	return f
}

func (f *fakeRecipes) view(r *models.Recipe) *models.RecipeView {
	return &models.RecipeView{
		ID:          r.ID,
		Tags:        []models.Tag{},
		Author:      models.UserView{ID: r.AuthorID},
		Ingredients: []models.IngredientAmount{},
		Name:        r.Name,
		Image:       r.Image,
		Text:        r.Text,
		CookingTime: r.CookingTime,
	}
}

func (f *fakeRecipes) Get(_ context.Context, _, id int64) (*models.RecipeView, error) {
	r, ok := f.recipes[id]
	if !ok {
		return nil, apperr.NotFound("Рецепт не найден")
	}
	return f.view(r), nil
}

func (f *fakeRecipes) Find(_ context.Context, id int64) (*models.Recipe, error) {
	r, ok := f.recipes[id]
	if !ok {
		return nil, apperr.NotFound("Рецепт не найден")
	}
	return r, nil
}

func (f *fakeRecipes) List(_ context.Context, filter models.RecipeFilter) ([]models.RecipeView, int, error) {
	f.lastFilter = filter
	var ids []int64
	for id := range f.recipes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	var all []models.RecipeView
	for _, id := range ids {
		all = append(all, *f.view(f.recipes[id]))
	}
	return window(all, filter.Limit, filter.Offset), len(all), nil
}

func (f *fakeRecipes) Create(_ context.Context, authorID int64, p composition.Payload) (*models.RecipeView, error) {
	f.lastInput = p
	if f.createErr != nil {
		return nil, f.createErr
	}
	r := &models.Recipe{ID: int64(len(f.recipes) + 1), AuthorID: authorID}
	if p.Name != nil {
		r.Name = *p.Name
	}
	f.recipes[r.ID] = r
	return f.view(r), nil
}

func (f *fakeRecipes) Update(_ context.Context, userID, id int64, p composition.Payload) (*models.RecipeView, error) {
	f.lastInput = p
	r, ok := f.recipes[id]
	if !ok {
		return nil, apperr.NotFound("Рецепт не найден")
	}
	if !r.IsOwner(userID) {
		return nil, apperr.Forbidden("У вас недостаточно прав для выполнения данного действия.")
	}
	if p.Name != nil {
		r.Name = *p.Name
	}
	return f.view(r), nil
}

func (f *fakeRecipes) Delete(_ context.Context, userID, id int64) error {
	r, ok := f.recipes[id]
	if !ok {
		return apperr.NotFound("Рецепт не найден")
	}
	if !r.IsOwner(userID) {
		return apperr.Forbidden("У вас недостаточно прав для выполнения данного действия.")
	}
	delete(f.recipes, id)
	return nil
}

type fakeShopping struct {
	list *models.ShoppingList
}

func (f fakeShopping) Compute(context.Context, int64) (*models.ShoppingList, error) {
	return f.list, nil
}

type fakePDF struct{}

func (fakePDF) Render(*models.ShoppingList) ([]byte, error) {
	return []byte("%PDF-1.3 fake"), nil
}

// fakeLinks hands out codes derived from the recipe id.
type fakeLinks struct{}

func (fakeLinks) CodeFor(_ context.Context, id int64) (string, error) {
	return fmt.Sprintf("Code%02d", id), nil
}

func (fakeLinks) Resolve(_ context.Context, code string) (int64, error) {
	var id int64
	if _, err := fmt.Sscanf(code, "Code%02d", &id); err != nil {
		return 0, apperr.NotFound("Короткая ссылка не найдена")
	}
	return id, nil
}
