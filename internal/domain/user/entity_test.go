package user

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("ValidInput_ShouldNormalizeEmail", func(t *testing.T) {
		u, err := NewUser("chef.anna", " Anna@Example.COM ", "Anna", "K", "hash")

		require.NoError(t, err)
		assert.Equal(t, "anna@example.com", u.Email())
		assert.Equal(t, "chef.anna", u.Username())
	})

	t.Run("ReservedUsername_ShouldFail", func(t *testing.T) {
		for _, name := range []string{"me", "Me", "ME"} {
			_, err := NewUser(name, "x@example.com", "", "", "hash")
			assert.ErrorIs(t, err, ErrReservedUsername, name)
		}
	})

	t.Run("InvalidUsername_ShouldFail", func(t *testing.T) {
		_, err := NewUser("with space", "x@example.com", "", "", "hash")
		assert.ErrorIs(t, err, ErrInvalidUsername)

		_, err = NewUser(strings.Repeat("a", 151), "x@example.com", "", "", "hash")
		assert.ErrorIs(t, err, ErrUsernameTooLong)
	})

	t.Run("InvalidEmail_ShouldFail", func(t *testing.T) {
		for _, email := range []string{"", "not-an-email", "Anna <anna@example.com>"} {
			_, err := NewUser("anna", email, "", "", "hash")
			assert.ErrorIs(t, err, ErrInvalidEmail, email)
		}
	})

	t.Run("MissingHash_ShouldFail", func(t *testing.T) {
		_, err := NewUser("anna", "anna@example.com", "", "", "")
		assert.ErrorIs(t, err, ErrEmptyPasswordHash)
	})
}

func TestToProfile(t *testing.T) {
	now := time.Now()
	u := Restore(4, "anna", "anna@example.com", "Anna", "K", "hash", now, now)

	p := u.ToProfile(true)

	assert.Equal(t, Profile{ID: 4, Username: "anna", Email: "anna@example.com", FirstName: "Anna", LastName: "K", IsSubscribed: true}, p)
}
