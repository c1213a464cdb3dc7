package pkg

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPgErrorCodes(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	foreignKey := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"})

	assert.True(t, IsUniqueViolationError(unique))
	assert.False(t, IsUniqueViolationError(foreignKey))
	assert.True(t, IsForeignKeyViolationError(foreignKey))
	assert.False(t, IsForeignKeyViolationError(unique))
	assert.False(t, IsUniqueViolationError(errors.New("boom")))
	assert.False(t, IsForeignKeyViolationError(nil))
	assert.Equal(t, "23505", PgErrorCode(unique))
	assert.Empty(t, PgErrorCode(errors.New("boom")))
}
