// Package router sets up all HTTP routes and middleware chains for the
// Foodgram API. Routes are split into public reads and authenticated
// writes; trailing slashes are optional on every path.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"foodgram/internal/handlers"
	"foodgram/internal/middleware"
)

// Handlers bundles the handler groups the router mounts.
type Handlers struct {
	Auth      *handlers.Auth
	Users     *handlers.Users
	Reference *handlers.Reference
	Recipes   *handlers.Recipes
}

// Options configures the global middleware.
type Options struct {
	CORSOrigins []string
	Tokens      middleware.TokenStore
	Limiter     *middleware.RateLimiter
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(opts Options, h Handlers) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecureHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader, "Content-Disposition"},
		MaxAge:         300,
	}))
	if opts.Limiter != nil {
		r.Use(opts.Limiter.Middleware)
	}
	r.Use(chimw.StripSlashes)
	r.Use(middleware.LoadIdentity(opts.Tokens))

	r.Get("/health", healthHandler)

	// Short links resolve outside the API prefix.
	r.Get("/s/{code}", h.Recipes.ResolveShortLink)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/token/login", h.Auth.Login)

		r.Get("/tags", h.Reference.Tags)
		r.Get("/tags/{id}", h.Reference.Tag)
		r.Get("/ingredients", h.Reference.Ingredients)
		r.Get("/ingredients/{id}", h.Reference.Ingredient)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.Users.List)
			r.Post("/", h.Users.Register)
			r.Get("/{id}", h.Users.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Get("/me", h.Users.Me)
				r.Put("/me/avatar", h.Users.SetAvatar)
				r.Delete("/me/avatar", h.Users.DeleteAvatar)
				r.Post("/set_password", h.Users.SetPassword)
				r.Get("/subscriptions", h.Users.Subscriptions)
				r.Post("/{id}/subscribe", h.Users.Subscribe)
				r.Delete("/{id}/subscribe", h.Users.Unsubscribe)
			})
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", h.Recipes.List)
			r.Get("/{id}", h.Recipes.Get)
			r.Get("/{id}/get-link", h.Recipes.GetLink)
			r.Get("/{id}/get-link/qr", h.Recipes.GetLinkQR)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/", h.Recipes.Create)
				r.Get("/download_shopping_cart", h.Recipes.DownloadShoppingCart)
				r.Patch("/{id}", h.Recipes.Update)
				r.Delete("/{id}", h.Recipes.Delete)
				r.Post("/{id}/favorite", h.Recipes.AddFavorite)
				r.Delete("/{id}/favorite", h.Recipes.RemoveFavorite)
				r.Post("/{id}/shopping_cart", h.Recipes.AddToCart)
				r.Delete("/{id}/shopping_cart", h.Recipes.RemoveFromCart)
			})
		})

		r.With(middleware.RequireAuth).Post("/auth/token/logout", h.Auth.Logout)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
