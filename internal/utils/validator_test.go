// internal/utils/validator_test.go
package utils

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerForm struct {
	Username string `validate:"required,username"`
	Password string `validate:"required,strong_password"`
}

func TestValidateStructAccepts(t *testing.T) {
	err := ValidateStruct(&registerForm{Username: "budi_99", Password: "Rahasia123"})
	assert.NoError(t, err)
}

func TestStrongPasswordRejected(t *testing.T) {
	weak := []string{
		"short1A",       // too short
		"alllowercase1", // no uppercase
		"ALLUPPERCASE1", // no lowercase
		"NoDigitsHere",  // no number
	}

	for _, password := range weak {
		err := ValidateStruct(&registerForm{Username: "budi_99", Password: password})
		assert.Error(t, err, "password %q should be rejected", password)
	}
}

func TestUsernameRejected(t *testing.T) {
	bad := []string{"ab", "has space", "emoji🙂", "trailing-dash-ok-but-symbols-no!"}

	for _, username := range bad {
		err := ValidateStruct(&registerForm{Username: username, Password: "Rahasia123"})
		assert.Error(t, err, "username %q should be rejected", username)
	}
}

func TestGetValidationErrorsUnwraps(t *testing.T) {
	err := ValidateStruct(&registerForm{Username: "", Password: ""})
	require.Error(t, err)

	// Services wrap validation errors before handlers see them.
	wrapped := fmt.Errorf("validation failed: %w", err)

	fieldErrs := GetValidationErrors(wrapped)
	require.Len(t, fieldErrs, 2)
	assert.Equal(t, "username", fieldErrs[0].Field)
	assert.Equal(t, "required", fieldErrs[0].Tag)
	assert.NotEmpty(t, fieldErrs[0].Message)
}
