package store

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortLinkStoreFindByCode(t *testing.T) {
	db, mock := newMock(t)
	s := NewShortLinkStore(db)
	now := time.Now()

	mock.ExpectQuery("FROM short_links WHERE short_code = \\$1").
		WithArgs("aB3xYz").
		WillReturnRows(sqlmock.NewRows([]string{"recipe_id", "short_code", "created_at"}).
			AddRow(int64(12), "aB3xYz", now))
	mock.ExpectQuery("FROM short_links WHERE short_code = \\$1").
		WithArgs("nope00").
		WillReturnRows(sqlmock.NewRows([]string{"recipe_id", "short_code", "created_at"}))

	l, err := s.FindByCode(t.Context(), "aB3xYz")
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Equal(t, int64(12), l.RecipeID)

	l, err = s.FindByCode(t.Context(), "nope00")
	require.NoError(t, err)
	assert.Nil(t, l)
}

func TestShortLinkStoreInsertNamesConstraint(t *testing.T) {
	db, mock := newMock(t)
	s := NewShortLinkStore(db)

	mock.ExpectQuery("INSERT INTO short_links").
		WithArgs(int64(12), "aB3xYz").
		WillReturnError(pgError(pgUniqueViolation, ConstraintShortLinkCode))

	_, err := s.Insert(t.Context(), 12, "aB3xYz")
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, ConstraintShortLinkCode, ConstraintOf(err))
}
