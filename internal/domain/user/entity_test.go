package user

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("valid input creates user with hashed password", func(t *testing.T) {
		entity, err := NewUser("Pato@Example.COM", "Pato", "supersecret1")

		require.NoError(t, err)
		assert.Equal(t, "pato@example.com", entity.Email(), "email is normalized")
		assert.Equal(t, "Pato", entity.Name())
		assert.NotEqual(t, "supersecret1", entity.PasswordHash())
		assert.True(t, entity.CheckPassword("supersecret1"))
		assert.False(t, entity.CheckPassword("wrong-password"))
	})

	t.Run("invalid email rejected", func(t *testing.T) {
		for _, email := range []string{"", "no-at-sign", "@nodomain", "user@", "user@nodot"} {
			_, err := NewUser(email, "Pato", "supersecret1")
			assert.Equal(t, ErrInvalidEmail, err, "email %q", email)
		}
	})

	t.Run("short password rejected", func(t *testing.T) {
		_, err := NewUser("pato@example.com", "Pato", "short")
		assert.Equal(t, ErrPasswordTooShort, err)
	})

	t.Run("name length enforced", func(t *testing.T) {
		_, err := NewUser("pato@example.com", strings.Repeat("x", 101), "supersecret1")
		assert.Equal(t, ErrNameTooLong, err)
	})
}

func TestApplyProfilePatch(t *testing.T) {
	newTestUser := func(t *testing.T) *User {
		entity, err := NewUser("pato@example.com", "Pato", "supersecret1")
		require.NoError(t, err)
		return entity
	}

	t.Run("partial patch changes only set fields", func(t *testing.T) {
		entity := newTestUser(t)

		bio := "Cocinero aficionado"
		require.NoError(t, entity.ApplyProfilePatch(ProfilePatch{Bio: &bio}))

		assert.Equal(t, "Pato", entity.Name())
		assert.Equal(t, "Cocinero aficionado", entity.Bio())
	})

	t.Run("empty patch still bumps updatedAt", func(t *testing.T) {
		entity := newTestUser(t)
		before := entity.UpdatedAt()
		time.Sleep(2 * time.Millisecond)

		require.NoError(t, entity.ApplyProfilePatch(ProfilePatch{}))

		assert.True(t, entity.UpdatedAt().After(before))
	})

	t.Run("oversized bio rejected without changes", func(t *testing.T) {
		entity := newTestUser(t)

		long := strings.Repeat("x", 501)
		err := entity.ApplyProfilePatch(ProfilePatch{Bio: &long})

		assert.Equal(t, ErrBioTooLong, err)
		assert.Empty(t, entity.Bio())
	})

	t.Run("blank name rejected", func(t *testing.T) {
		entity := newTestUser(t)

		blank := "  "
		err := entity.ApplyProfilePatch(ProfilePatch{Name: &blank})

		assert.Equal(t, ErrNameRequired, err)
		assert.Equal(t, "Pato", entity.Name())
	})
}
