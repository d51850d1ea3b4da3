package validation

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listing struct {
	Condition string  `validate:"required,product_condition"`
	Status    *string `validate:"omitempty,product_status"`
}

func TestCustomRules(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(listing{Condition: "Like New"}))

	sold := "Sold"
	assert.NoError(t, v.Struct(listing{Condition: "Good", Status: &sold}))

	err := v.Struct(listing{Condition: "Mint"})
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "product_condition", verrs[0].Tag())

	gone := "Gone"
	err = v.Struct(listing{Condition: "Good", Status: &gone})
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "product_status", verrs[0].Tag())
}

func TestHelpers(t *testing.T) {
	assert.True(t, IsCondition("Poor"))
	assert.False(t, IsCondition("poor"))
	assert.True(t, IsStatus("Reserved"))
	assert.Contains(t, Categories, "Home & Decor")
}
