// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// RelationTable describes a (subject, object) pair table such as favorites.
// The identifiers are compile-time constants and never user input.
type RelationTable struct {
	Table      string
	SubjectCol string
	ObjectCol  string
	// Constraint is the name of the unique (subject, object) constraint.
	Constraint string
}

// The three pair tables of the schema.
var (
	Favorites = RelationTable{
		Table: "favorites", SubjectCol: "user_id", ObjectCol: "recipe_id",
		Constraint: "user_favorite_recipe",
	}
	ShoppingCart = RelationTable{
		Table: "shopping_cart", SubjectCol: "user_id", ObjectCol: "recipe_id",
		Constraint: "user_shopping_recipe",
	}
	Subscriptions = RelationTable{
		Table: "subscriptions", SubjectCol: "user_id", ObjectCol: "author_id",
		Constraint: "unique_subscription",
	}
)

// RelationStore reads and writes one pair table.
type RelationStore struct {
	db *sql.DB
	t  RelationTable
}

// NewRelationStore returns a RelationStore over table t.
func NewRelationStore(db *sql.DB, t RelationTable) *RelationStore {
	return &RelationStore{db: db, t: t}
}

// Exists reports whether the pair is present.
func (s *RelationStore) Exists(ctx context.Context, subject, object int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)`,
		s.t.Table, s.t.SubjectCol, s.t.ObjectCol,
	), subject, object).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s exists: %w", s.t.Table, err)
	}
	return exists, nil
}

// Insert adds the pair. A concurrent duplicate surfaces as a *ConflictError.
func (s *RelationStore) Insert(ctx context.Context, subject, object int64) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (%s, %s) VALUES ($1, $2)`,
		s.t.Table, s.t.SubjectCol, s.t.ObjectCol,
	), subject, object)
	if err != nil {
		return fmt.Errorf("insert %s: %w", s.t.Table, translate(err))
	}
	return nil
}

// Delete removes the pair and reports whether it existed.
func (s *RelationStore) Delete(ctx context.Context, subject, object int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(
		`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		s.t.Table, s.t.SubjectCol, s.t.ObjectCol,
	), subject, object)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", s.t.Table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", s.t.Table, err)
	}
	return n > 0, nil
}

// Subset returns which of objects are paired with subject.
func (s *RelationStore) Subset(ctx context.Context, subject int64, objects []int64) (map[int64]bool, error) {
	result := make(map[int64]bool, len(objects))
	if subject == 0 || len(objects) == 0 {
		return result, nil
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM %s WHERE %s = $1 AND %s = ANY($2)`,
		s.t.ObjectCol, s.t.Table, s.t.SubjectCol, s.t.ObjectCol,
	), subject, pq.Array(objects))
	if err != nil {
		return nil, fmt.Errorf("%s subset: %w", s.t.Table, err)
	}
	ids, err := scanIDs(rows)
	if err != nil {
		return nil, fmt.Errorf("scan %s subset: %w", s.t.Table, err)
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}
