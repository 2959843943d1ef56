package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"foodgram/internal/composition"
	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/handlers"
	"foodgram/internal/middleware"
	"foodgram/internal/recipes"
	"foodgram/internal/relation"
	"foodgram/internal/router"
	"foodgram/internal/session"
	"foodgram/internal/shopping"
	"foodgram/internal/shortlink"
	"foodgram/internal/store"
	"foodgram/internal/validation"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

// runServe connects to PostgreSQL and Valkey, wires the API and serves it
// until SIGINT or SIGTERM, then drains connections.
func runServe(ctx context.Context) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			return err
		}
	}

	valkeyClient, err := session.Connect(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		return err
	}
	defer valkeyClient.Close()

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer limiter.Stop()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      newAPI(cfg, db, valkeyClient, limiter),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// newAPI builds the stores, services and handler groups and mounts them on
// the router.
func newAPI(cfg *config.Config, db *sql.DB, valkeyClient *redis.Client, limiter *middleware.RateLimiter) http.Handler {
	userStore := store.NewUserStore(db)
	tagStore := store.NewTagStore(db)
	ingredientStore := store.NewIngredientStore(db)
	recipeStore := store.NewRecipeStore(db)
	favorites := store.NewRelationStore(db, store.Favorites)
	cart := store.NewRelationStore(db, store.ShoppingCart)
	subscriptions := store.NewRelationStore(db, store.Subscriptions)

	tokens := session.NewStore(valkeyClient)
	validator := validation.New()

	recipeService := recipes.NewService(recipes.Deps{
		Recipes:       recipeStore,
		Tags:          tagStore,
		Users:         userStore,
		Favorites:     favorites,
		Cart:          cart,
		Subscriptions: subscriptions,
		Validator:     composition.New(tagStore, ingredientStore),
	})

	h := router.Handlers{
		Auth: handlers.NewAuth(userStore, tokens, validator),
		Users: handlers.NewUsers(userStore, recipeService,
			relation.New(relation.Subscription, subscriptions, userStore), validator, cfg.PublicURL),
		Reference: handlers.NewReference(tagStore, ingredientStore),
		Recipes: handlers.NewRecipes(handlers.RecipesDeps{
			Recipes:     recipeService,
			Favorites:   relation.New(relation.Favorite, favorites, recipeStore),
			Cart:        relation.New(relation.Cart, cart, recipeStore),
			Shopping:    shopping.NewService(store.NewShoppingStore(db, database.DriverName), time.Now),
			PDF:         shopping.NewPDFRenderer(cfg.ShoppingPDFFont),
			Links:       shortlink.New(store.NewShortLinkStore(db), shortlink.NanoID),
			PublicURL:   cfg.PublicURL,
			FrontendURL: cfg.FrontendURL,
		}),
	}

	return router.New(router.Options{
		CORSOrigins: cfg.CORSOrigins,
		Tokens:      tokens,
		Limiter:     limiter,
	}, h)
}
