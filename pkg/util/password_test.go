package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_Hash(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{
			name:     "Valid password",
			password: "password123",
		},
		{
			name:     "Empty password",
			password: "", // bcrypt can hash empty strings
		},
		{
			name:     "Special characters",
			password: "p@ss-w0rd!#$%^&*()",
		},
		{
			name:     "Longer than bcrypt limit",
			password: strings.Repeat("a", 73),
			wantErr:  ErrPasswordTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := NewBcryptHasher(bcrypt.MinCost).Hash(tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, hash)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, tt.password, hash)
			assert.True(t, strings.HasPrefix(hash, "$2a$"))
		})
	}
}

func TestVerifyPassword(t *testing.T) {
	password := "mySecurePassword123"

	bcryptHash, err := NewBcryptHasher(bcrypt.MinCost).Hash(password)
	require.NoError(t, err)

	argonHash, err := Argon2idHasher{}.Hash(password)
	require.NoError(t, err)

	sum := sha256.Sum256([]byte(password))
	legacyHash := hex.EncodeToString(sum[:])

	tests := []struct {
		name           string
		hashedPassword string
		password       string
		want           bool
	}{
		{"bcrypt correct", bcryptHash, password, true},
		{"bcrypt incorrect", bcryptHash, "wrongPassword", false},
		{"argon2id correct", argonHash, password, true},
		{"argon2id incorrect", argonHash, "wrongPassword", false},
		{"legacy sha256 correct", legacyHash, password, true},
		{"legacy sha256 upper-case hex", strings.ToUpper(legacyHash), password, true},
		{"legacy sha256 incorrect", legacyHash, "wrongPassword", false},
		{"empty password", bcryptHash, "", false},
		{"invalid hash", "invalid-hash", password, false},
		{"truncated argon2id", "$argon2id$v=19$m=65536,t=1,p=4$abc", password, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifyPassword(tt.hashedPassword, tt.password))
		})
	}
}

func TestHashPasswordConsistency(t *testing.T) {
	for _, hasher := range []PasswordHasher{NewBcryptHasher(bcrypt.MinCost), Argon2idHasher{}} {
		hash1, err1 := hasher.Hash("testPassword")
		hash2, err2 := hasher.Hash("testPassword")
		require.NoError(t, err1)
		require.NoError(t, err2)

		// Salted: same input, different digests
		assert.NotEqual(t, hash1, hash2)
		assert.True(t, hasher.Verify(hash1, "testPassword"))
		assert.True(t, hasher.Verify(hash2, "testPassword"))
	}
}

func TestNewPasswordHasher(t *testing.T) {
	h, err := NewPasswordHasher("argon2id")
	require.NoError(t, err)
	hash, err := h.Hash("secret-password")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	// An argon2id hasher still verifies bcrypt digests
	bcryptHash, err := NewBcryptHasher(bcrypt.MinCost).Hash("secret-password")
	require.NoError(t, err)
	assert.True(t, h.Verify(bcryptHash, "secret-password"))

	_, err = NewPasswordHasher("md5")
	assert.ErrorIs(t, err, ErrUnsupportedHasher)
}

func TestIsLegacyDigest(t *testing.T) {
	sum := sha256.Sum256([]byte("x"))
	assert.True(t, IsLegacyDigest(hex.EncodeToString(sum[:])))
	assert.False(t, IsLegacyDigest("$2a$10$abc"))
	assert.False(t, IsLegacyDigest(strings.Repeat("z", 64)))
}

func TestGenerateSecureToken(t *testing.T) {
	a, err := GenerateSecureToken(32)
	require.NoError(t, err)
	b, err := GenerateSecureToken(32)
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
	_, err = hex.DecodeString(a)
	assert.NoError(t, err)
}
