// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"foodgram/internal/models"
)

// ErrIncompleteRecipe is returned by Create when a required field is nil.
var ErrIncompleteRecipe = errors.New("recipe input is missing required fields")

// psql builds PostgreSQL-flavoured statements with $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// RecipeStore handles recipes together with their tags and product lines.
type RecipeStore struct {
	db *sql.DB
}

// NewRecipeStore returns a new RecipeStore.
func NewRecipeStore(db *sql.DB) *RecipeStore {
	return &RecipeStore{db: db}
}

const recipeColumns = `r.id, r.author_id, r.name, r.text, r.cooking_time, r.image, r.pub_date`

func scanRecipe(scanner interface{ Scan(...any) error }) (*models.Recipe, error) {
	var r models.Recipe
	err := scanner.Scan(&r.ID, &r.AuthorID, &r.Name, &r.Text, &r.CookingTime, &r.Image, &r.PubDate)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Create inserts the recipe row, its tag set and its product lines in one
// transaction. Every field of in must be set.
func (s *RecipeStore) Create(ctx context.Context, authorID int64, in models.RecipeInput) (*models.Recipe, error) {
	if in.Name == nil || in.Text == nil || in.CookingTime == nil || in.Image == nil {
		return nil, ErrIncompleteRecipe
	}

	var created *models.Recipe
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			INSERT INTO recipes AS r (author_id, name, text, cooking_time, image)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+recipeColumns,
			authorID, *in.Name, *in.Text, *in.CookingTime, *in.Image,
		)
		r, err := scanRecipe(row)
		if err != nil {
			return fmt.Errorf("insert recipe: %w", translate(err))
		}
		if err := insertRecipeTags(ctx, tx, r.ID, in.TagIDs); err != nil {
			return err
		}
		if err := insertProductLines(ctx, tx, r.ID, in.Ingredients); err != nil {
			return err
		}
		created = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update applies a partial update in one transaction. Nil scalar fields keep
// their stored value; a non-nil TagIDs or Ingredients slice replaces the
// whole set. Returns nil if the recipe does not exist.
func (s *RecipeStore) Update(ctx context.Context, id int64, in models.RecipeInput) (*models.Recipe, error) {
	var updated *models.Recipe
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			UPDATE recipes AS r SET
				name = COALESCE($2, r.name),
				text = COALESCE($3, r.text),
				cooking_time = COALESCE($4, r.cooking_time),
				image = COALESCE($5, r.image)
			WHERE r.id = $1
			RETURNING `+recipeColumns,
			id, in.Name, in.Text, in.CookingTime, in.Image,
		)
		r, err := scanRecipe(row)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return fmt.Errorf("update recipe: %w", translate(err))
		}

		if in.TagIDs != nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_tags WHERE recipe_id = $1`, id); err != nil {
				return fmt.Errorf("clear recipe tags: %w", err)
			}
			if err := insertRecipeTags(ctx, tx, id, in.TagIDs); err != nil {
				return err
			}
		}
		if in.Ingredients != nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM product_lines WHERE recipe_id = $1`, id); err != nil {
				return fmt.Errorf("clear product lines: %w", err)
			}
			if err := insertProductLines(ctx, tx, id, in.Ingredients); err != nil {
				return err
			}
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func insertRecipeTags(ctx context.Context, tx *sql.Tx, recipeID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}
	q := psql.Insert("recipe_tags").Columns("recipe_id", "tag_id")
	for _, tagID := range tagIDs {
		q = q.Values(recipeID, tagID)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build recipe tags insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert recipe tags: %w", translate(err))
	}
	return nil
}

func insertProductLines(ctx context.Context, tx *sql.Tx, recipeID int64, lines []models.ProductLine) error {
	if len(lines) == 0 {
		return nil
	}
	q := psql.Insert("product_lines").Columns("recipe_id", "ingredient_id", "amount")
	for _, l := range lines {
		q = q.Values(recipeID, l.IngredientID, l.Amount)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build product lines insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert product lines: %w", translate(err))
	}
	return nil
}

// Delete removes a recipe. Product lines, tags, favorites, cart entries and
// the short link go with it through ON DELETE CASCADE. Reports whether a
// row was deleted.
func (s *RecipeStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete recipe: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete recipe: %w", err)
	}
	return n > 0, nil
}

// FindByID retrieves a recipe by ID. Returns nil if not found.
func (s *RecipeStore) FindByID(ctx context.Context, id int64) (*models.Recipe, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recipeColumns+` FROM recipes r WHERE r.id = $1`, id)
	r, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find recipe by id: %w", err)
	}
	return r, nil
}

// Exists reports whether a recipe with the given ID exists.
func (s *RecipeStore) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM recipes WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("recipe exists: %w", err)
	}
	return exists, nil
}

// applyFilter adds the WHERE clauses of f to b.
func applyFilter(b sq.SelectBuilder, f models.RecipeFilter) sq.SelectBuilder {
	if f.AuthorID != 0 {
		b = b.Where(sq.Eq{"r.author_id": f.AuthorID})
	}
	if len(f.TagSlugs) > 0 {
		b = b.Where(`EXISTS (
			SELECT 1 FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id
			WHERE rt.recipe_id = r.id AND t.slug = ANY(?))`, pq.Array(f.TagSlugs))
	}
	if f.ViewerID != 0 {
		b = relationFilter(b, "favorites", f.ViewerID, f.IsFavorited)
		b = relationFilter(b, "shopping_cart", f.ViewerID, f.IsInShoppingCart)
	}
	return b
}

func relationFilter(b sq.SelectBuilder, table string, viewerID int64, want *bool) sq.SelectBuilder {
	if want == nil {
		return b
	}
	clause := `EXISTS (SELECT 1 FROM ` + table + ` x WHERE x.recipe_id = r.id AND x.user_id = ?)`
	if !*want {
		clause = "NOT " + clause
	}
	return b.Where(clause, viewerID)
}

// List returns one page of recipes matching f, newest first, plus the total
// number of matches.
func (s *RecipeStore) List(ctx context.Context, f models.RecipeFilter) ([]models.Recipe, int, error) {
	countQuery, countArgs, err := applyFilter(psql.Select("COUNT(*)").From("recipes r"), f).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build recipe count: %w", err)
	}
	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count recipes: %w", err)
	}

	b := applyFilter(psql.Select(recipeColumns).From("recipes r"), f).
		OrderBy("r.pub_date DESC", "r.id DESC")
	if f.Limit > 0 {
		b = b.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		b = b.Offset(uint64(f.Offset))
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build recipe list: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list recipes: %w", err)
	}
	recipes, err := collectRecipes(rows)
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// ListByAuthor returns the author's newest recipes. A limit of zero or less
// returns all of them.
func (s *RecipeStore) ListByAuthor(ctx context.Context, authorID int64, limit int) ([]models.Recipe, error) {
	b := psql.Select(recipeColumns).From("recipes r").
		Where(sq.Eq{"r.author_id": authorID}).
		OrderBy("r.pub_date DESC", "r.id DESC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build author recipes: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list author recipes: %w", err)
	}
	return collectRecipes(rows)
}

// CountByAuthor returns how many recipes the author has published.
func (s *RecipeStore) CountByAuthor(ctx context.Context, authorID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes WHERE author_id = $1`, authorID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count author recipes: %w", err)
	}
	return n, nil
}

// IngredientsFor returns the product lines of each recipe joined with their
// ingredient, in insertion order.
func (s *RecipeStore) IngredientsFor(ctx context.Context, recipeIDs []int64) (map[int64][]models.IngredientAmount, error) {
	result := make(map[int64][]models.IngredientAmount, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return result, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT pl.recipe_id, i.id, i.name, i.measurement_unit, pl.amount
		FROM product_lines pl
		JOIN ingredients i ON i.id = pl.ingredient_id
		WHERE pl.recipe_id = ANY($1)
		ORDER BY pl.id
	`, pq.Array(recipeIDs))
	if err != nil {
		return nil, fmt.Errorf("ingredients for recipes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recipeID int64
		var ia models.IngredientAmount
		if err := rows.Scan(&recipeID, &ia.ID, &ia.Name, &ia.MeasurementUnit, &ia.Amount); err != nil {
			return nil, fmt.Errorf("scan ingredient amount: %w", err)
		}
		result[recipeID] = append(result[recipeID], ia)
	}
	return result, rows.Err()
}

func collectRecipes(rows *sql.Rows) ([]models.Recipe, error) {
	defer rows.Close()
	var recipes []models.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, *r)
	}
	return recipes, rows.Err()
}
