package security

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestSealIsDeterministicAfterNormalization(t *testing.T) {
	s, err := NewSealer(testKey)
	require.NoError(t, err)

	a, err := s.Seal("  Ada@Example.com ")
	require.NoError(t, err)
	b, err := s.Seal("ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	plain, err := s.Open(a)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", plain)
}

func TestSealDiffersPerKey(t *testing.T) {
	s1, _ := NewSealer(testKey)
	s2, _ := NewSealer(strings.Repeat("z", 32))

	a, _ := s1.Seal("ada@example.com")
	b, _ := s2.Seal("ada@example.com")
	assert.NotEqual(t, a, b)

	_, err := s2.Open(a)
	assert.ErrorIs(t, err, ErrMalformedSeal)
}

func TestSealerRejectsShortKey(t *testing.T) {
	_, err := NewSealer("short")
	assert.Error(t, err)
}

func TestOpenRejectsGarbage(t *testing.T) {
	s, _ := NewSealer(testKey)
	_, err := s.Open("!!not-base64!!")
	assert.ErrorIs(t, err, ErrMalformedSeal)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "s3cret!"))
	assert.False(t, CheckPassword(hash, "wrong"))

	_, err = HashPassword("abc")
	assert.True(t, errors.Is(err, ErrWeakPassword))
}

func TestTokenRoundTrip(t *testing.T) {
	id := Identity{LoginID: primitive.NewObjectID(), USID: 1111, Role: "user", Email: "ada@example.com"}
	raw, err := IssueToken("secret", time.Hour, id)
	require.NoError(t, err)

	got, err := ParseToken("secret", raw)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseToken("other", raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredToken(t *testing.T) {
	raw, err := IssueToken("secret", -time.Minute, Identity{LoginID: primitive.NewObjectID()})
	require.NoError(t, err)

	_, err = ParseToken("secret", raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
