package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/identity-service/internal/core/domain"
)

func TestSHA256Hasher_KnownDigest(t *testing.T) {
	t.Parallel()

	// base64(sha256("secret1"))
	got, err := SHA256Hasher{}.Hash("secret1")
	require.NoError(t, err)
	assert.Equal(t, "WxFhjC5EAnh30M0JIe0Wa58Xb1BYf8kedTTdKUbbd9Y=", got)
	assert.Len(t, got, 44)
}

func TestSHA256Hasher_Deterministic(t *testing.T) {
	t.Parallel()

	h := SHA256Hasher{}
	for _, p := range []string{"a", "secret1", "pässwörd", "with spaces ", "🔑"} {
		first, err := h.Hash(p)
		require.NoError(t, err)
		second, err := SHA256Hasher{}.Hash(p)
		require.NoError(t, err)
		assert.Equal(t, first, second, "hash(%q) must be stable", p)
		assert.True(t, h.Verify(p, first), "verify(%q, hash(%q))", p, p)
	}
}

func TestSHA256Hasher_DistinctInputs(t *testing.T) {
	t.Parallel()

	h := SHA256Hasher{}
	a, _ := h.Hash("secret1")
	b, _ := h.Hash("secret2")
	assert.NotEqual(t, a, b)
	assert.False(t, h.Verify("wrong", a))
	assert.False(t, h.Verify("secret1", ""))
	assert.False(t, h.Verify("", a))
}

func TestSHA256Hasher_EmptyPassword(t *testing.T) {
	t.Parallel()

	_, err := SHA256Hasher{}.Hash("")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestBcryptHasher_RoundTrip(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(bcrypt.MinCost)
	digest, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", digest)
	assert.True(t, h.Verify("secret1", digest))
	assert.False(t, h.Verify("wrong", digest))

	again, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, digest, again, "bcrypt digests are salted")

	_, err = h.Hash("")
	assert.True(t, domain.IsValidation(err))
}

func TestNewHasher(t *testing.T) {
	t.Parallel()

	h, err := NewHasher("")
	require.NoError(t, err)
	assert.IsType(t, SHA256Hasher{}, h)

	h, err = NewHasher(KindBcrypt)
	require.NoError(t, err)
	assert.IsType(t, BcryptHasher{}, h)

	_, err = NewHasher("md5")
	assert.Error(t, err)
}
