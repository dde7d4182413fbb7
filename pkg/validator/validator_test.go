package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"token" validate:"required"`
}

func TestValidateStruct(t *testing.T) {
	require.NoError(t, ValidateStruct(&samplePayload{Email: "a@b.com", Token: "abc"}))

	err := ValidateStruct(&samplePayload{Email: "nope"})
	require.Error(t, err)

	ve, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, ve, 2)

	// Field names come from the json tags.
	require.Equal(t, "email", ve[0].Field)
	require.Equal(t, "token", ve[1].Field)
}

func TestIsEmail(t *testing.T) {
	require.True(t, IsEmail("a@b.com"))
	require.False(t, IsEmail("not-an-email"))
	require.False(t, IsEmail(""))
}
