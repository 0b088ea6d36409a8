package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "course_places_pkey"}
	assert.True(t, isUniqueViolation(unique))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", unique)))

	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("plain error")))
	assert.False(t, isUniqueViolation(nil))
}

// A list that names the same place twice must be rejected up front; letting
// it through would assign that place two order values and leave a hole.
func TestReorderRejectsRepeatedPlace(t *testing.T) {
	s := &CoursesStore{}

	err := s.Reorder(context.Background(), 1, []int64{10, 10, 20})
	assert.ErrorIs(t, err, ErrConflict)
}
