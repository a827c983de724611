package password_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/pwauth/internal/password"
)

func newTestHasher(t *testing.T) *password.Hasher {
	t.Helper()
	h, err := password.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestNewHasher(t *testing.T) {
	t.Run("accepts default cost", func(t *testing.T) {
		h, err := password.NewHasher(bcrypt.DefaultCost)
		require.NoError(t, err)
		assert.Equal(t, bcrypt.DefaultCost, h.Cost())
	})

	t.Run("rejects cost below minimum", func(t *testing.T) {
		_, err := password.NewHasher(bcrypt.MinCost - 1)
		assert.Error(t, err)
	})

	t.Run("rejects cost above maximum", func(t *testing.T) {
		_, err := password.NewHasher(bcrypt.MaxCost + 1)
		assert.Error(t, err)
	})
}

func TestHash(t *testing.T) {
	h := newTestHasher(t)

	t.Run("digest differs from plaintext", func(t *testing.T) {
		digest, err := h.Hash("pw123")
		require.NoError(t, err)
		assert.NotEmpty(t, digest)
		assert.NotEqual(t, "pw123", digest)
		assert.True(t, strings.HasPrefix(digest, "$2a$"))
	})

	t.Run("same password produces different digests (salt)", func(t *testing.T) {
		d1, err := h.Hash("samepassword")
		require.NoError(t, err)
		d2, err := h.Hash("samepassword")
		require.NoError(t, err)

		assert.NotEqual(t, d1, d2)
		assert.True(t, h.Verify("samepassword", d1))
		assert.True(t, h.Verify("samepassword", d2))
	})

	t.Run("embeds configured cost", func(t *testing.T) {
		digest, err := h.Hash("pw123")
		require.NoError(t, err)
		cost, err := bcrypt.Cost([]byte(digest))
		require.NoError(t, err)
		assert.Equal(t, bcrypt.MinCost, cost)
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := h.Hash("")
		assert.ErrorIs(t, err, password.ErrEmpty)
	})

	t.Run("rejects password over 72 bytes", func(t *testing.T) {
		_, err := h.Hash(strings.Repeat("a", 73))
		assert.ErrorIs(t, err, password.ErrTooLong)
	})

	t.Run("accepts password of exactly 72 bytes", func(t *testing.T) {
		pw := strings.Repeat("a", 72)
		digest, err := h.Hash(pw)
		require.NoError(t, err)
		assert.True(t, h.Verify(pw, digest))
	})
}

func TestVerify(t *testing.T) {
	h := newTestHasher(t)

	digest, err := h.Hash("correctpassword")
	require.NoError(t, err)

	t.Run("correct password verifies", func(t *testing.T) {
		assert.True(t, h.Verify("correctpassword", digest))
	})

	t.Run("different password fails", func(t *testing.T) {
		for _, p := range []string{"wrongpassword", "correctpasswor", "Correctpassword", ""} {
			assert.False(t, h.Verify(p, digest), "password %q", p)
		}
	})

	t.Run("malformed digest returns false", func(t *testing.T) {
		for _, d := range []string{"", "not-a-digest", "$2a$10$short", digest[:len(digest)-5]} {
			assert.False(t, h.Verify("correctpassword", d), "digest %q", d)
		}
	})

	t.Run("digest from another cost verifies", func(t *testing.T) {
		other, err := password.NewHasher(bcrypt.MinCost + 1)
		require.NoError(t, err)
		d, err := other.Hash("correctpassword")
		require.NoError(t, err)
		assert.True(t, h.Verify("correctpassword", d))
	})
}

func TestVerifyDummy_AlwaysFalse(t *testing.T) {
	h := newTestHasher(t)

	assert.False(t, h.VerifyDummy("pwauth-dummy-password"))
	assert.False(t, h.VerifyDummy("anything"))
}
