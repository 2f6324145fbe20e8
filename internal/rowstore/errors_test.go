package rowstore

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestClassifyNil(t *testing.T) {
	require.NoError(t, classify(nil))
}

func TestClassifyNotFound(t *testing.T) {
	err := classify(gorm.ErrRecordNotFound)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsUniqueViolation(err))
}

func TestClassifyUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23505",
		Message:        `duplicate key value violates unique constraint "idx_cart_items_user_product"`,
		ConstraintName: "idx_cart_items_user_product",
	}

	err := classify(pgErr)
	assert.True(t, IsUniqueViolation(err))
	assert.Contains(t, err.Error(), "idx_cart_items_user_product")
}

func TestClassifySchemaMissingByCode(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:    "42P01",
		Message: `relation "cart_items" does not exist`,
	}

	err := classify(pgErr)
	assert.True(t, IsSchemaMissing(err))
}

func TestClassifySchemaMissingByMessage(t *testing.T) {
	err := classify(errors.New(`ERROR: relation "orders" does not exist (SQLSTATE 42P01)`))
	assert.True(t, IsSchemaMissing(err))
}

func TestClassifyPassthrough(t *testing.T) {
	cause := errors.New("connection refused")
	err := classify(cause)
	assert.Equal(t, cause, err)
	assert.False(t, IsNotFound(err))
	assert.False(t, IsUniqueViolation(err))
	assert.False(t, IsSchemaMissing(err))
}
