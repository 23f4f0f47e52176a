package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "orcs/pkg/domain-errors"
)

type signInForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type profileForm struct {
	FullName   string   `json:"full_name" validate:"notblank"`
	Activities []string `json:"activities" validate:"dive,activity"`
}

func TestValidate(t *testing.T) {
	t.Run("valid struct passes", func(t *testing.T) {
		require.NoError(t, Validate(signInForm{Email: "a@b.fr", Password: "secret1"}))
	})

	t.Run("missing field reports its json name", func(t *testing.T) {
		err := Validate(signInForm{Password: "secret1"})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Contains(t, err.Error(), "email is required")
	})

	t.Run("min length", func(t *testing.T) {
		err := Validate(signInForm{Email: "a@b.fr", Password: "abc"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "password must be at least 6")
	})

	t.Run("blank name", func(t *testing.T) {
		err := Validate(profileForm{FullName: "   "})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "full_name must not be blank")
	})

	t.Run("untagged field falls back to lower case name", func(t *testing.T) {
		err := Validate(struct {
			Activities []string `validate:"max=1"`
		}{Activities: []string{"jdr", "mtg"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "activities must be at most 1")
	})

	t.Run("unknown activity", func(t *testing.T) {
		err := Validate(profileForm{FullName: "Alice", Activities: []string{"jdr", "poker"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown activity")
	})
}
