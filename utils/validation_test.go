package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validationFixture struct {
	BusinessID  string   `validate:"required"`
	SuccessRate *float64 `validate:"omitempty,gte=0,lte=1"`
	TokensUsed  int      `validate:"gte=0"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid struct", func(t *testing.T) {
		rate := 0.9
		err := ValidateStruct(&validationFixture{
			BusinessID:  "biz-1",
			SuccessRate: &rate,
			TokensUsed:  10,
		})
		assert.NoError(t, err)
	})

	t.Run("missing required field", func(t *testing.T) {
		err := ValidateStruct(&validationFixture{TokensUsed: 10})
		require.Error(t, err)
		assert.True(t, IsValidationError(err))

		fields := GetValidationFields(err)
		assert.Contains(t, fields["BusinessID"], "required")
	})

	t.Run("out of range fields", func(t *testing.T) {
		rate := 1.5
		err := ValidateStruct(&validationFixture{
			BusinessID:  "biz-1",
			SuccessRate: &rate,
			TokensUsed:  -1,
		})
		require.Error(t, err)

		fields := GetValidationFields(err)
		assert.Contains(t, fields["SuccessRate"], "less than or equal to 1")
		assert.Contains(t, fields["TokensUsed"], "greater than or equal to 0")
	})
}

func TestIsValidationError(t *testing.T) {
	assert.False(t, IsValidationError(errors.New("plain error")))
	assert.False(t, IsValidationError(nil))
	assert.True(t, IsValidationError(&ValidationError{Message: "Validation failed"}))
}

func TestGetValidationFields_NonValidationError(t *testing.T) {
	assert.Nil(t, GetValidationFields(errors.New("plain error")))
}
