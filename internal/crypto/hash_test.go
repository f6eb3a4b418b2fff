package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		errMsg   string
		wantErr  bool
	}{
		{
			name:     "successful hash",
			password: "Password123",
		},
		{
			name:     "unicode password",
			password: "пароль-с-юникодом",
		},
		{
			name:     "72 byte password",
			password: strings.Repeat("a", 72),
		},
		{
			name:     "empty password",
			password: "",
			wantErr:  true,
			errMsg:   "password cannot be empty",
		},
		{
			name:     "password over 72 bytes",
			password: strings.Repeat("a", 73),
			wantErr:  true,
			errMsg:   "failed to hash password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Empty(t, hash)
				return
			}

			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(hash, "$2a$10$"), "bcrypt hash with cost 10 expected, got %s", hash)
			assert.NotContains(t, hash, tt.password)
		})
	}
}

func TestHashPassword_RandomSalt(t *testing.T) {
	hash1, err := HashPassword("Password123")
	require.NoError(t, err)
	hash2, err := HashPassword("Password123")
	require.NoError(t, err)

	// Одинаковый пароль дает разные хеши из-за случайной соли
	assert.NotEqual(t, hash1, hash2)
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Password123")
	require.NoError(t, err)
	longHash, err := HashPassword(strings.Repeat("a", 72))
	require.NoError(t, err)

	tests := []struct {
		name      string
		password  string
		hash      string
		wantErrIs error
		wantErr   bool
	}{
		{
			name:     "correct password",
			password: "Password123",
			hash:     hash,
		},
		{
			name:      "wrong password",
			password:  "password123",
			hash:      hash,
			wantErr:   true,
			wantErrIs: ErrPasswordMismatch,
		},
		{
			name:      "empty password",
			password:  "",
			hash:      hash,
			wantErr:   true,
			wantErrIs: ErrPasswordMismatch,
		},
		{
			name:      "password over 72 bytes with matching prefix",
			password:  strings.Repeat("a", 80),
			hash:      longHash,
			wantErr:   true,
			wantErrIs: ErrPasswordMismatch,
		},
		{
			name:     "empty hash",
			password: "Password123",
			hash:     "",
			wantErr:  true,
		},
		{
			name:     "malformed hash",
			password: "Password123",
			hash:     "not-a-bcrypt-hash",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyPassword(tt.password, tt.hash)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
			} else {
				assert.NotErrorIs(t, err, ErrPasswordMismatch)
			}
		})
	}
}

func TestHashToken(t *testing.T) {
	h1 := HashToken("header.payload.signature")
	h2 := HashToken("header.payload.signature")
	h3 := HashToken("header.payload.other")

	// SHA256 хеш всегда 64 символа (hex-encoded, 32 bytes * 2)
	assert.Len(t, h1, 64)
	assert.Equal(t, h1, h2, "hash must be deterministic")
	assert.NotEqual(t, h1, h3)
}
