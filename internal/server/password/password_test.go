package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var fastArgon2 = Argon2Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestBcrypt_RoundTrip(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost)

	d1, err := h.Hash("Abcdef12")
	require.NoError(t, err)
	d2, err := h.Hash("Abcdef12")
	require.NoError(t, err)

	assert.NotEqual(t, d1, d2, "salt must differ per call")
	assert.True(t, h.Verify("Abcdef12", d1))
	assert.False(t, h.Verify("Abcdef13", d1))
	assert.False(t, h.Verify("Abcdef12", "not-a-digest"))
}

func TestBcrypt_InvalidCostFallsBack(t *testing.T) {
	assert.Equal(t, DefaultBcryptCost, NewBcrypt(0).cost)
	assert.Equal(t, DefaultBcryptCost, NewBcrypt(99).cost)
}

func TestBcrypt_RejectsOverlongInput(t *testing.T) {
	_, err := NewBcrypt(bcrypt.MinCost).Hash(strings.Repeat("a", 73))
	assert.Error(t, err)
}

func TestArgon2id_RoundTrip(t *testing.T) {
	h := NewArgon2id(fastArgon2)

	d, err := h.Hash("Abcdef12")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(d, "$argon2id$v=19$m=8192,t=1,p=1$"))

	assert.True(t, h.Verify("Abcdef12", d))
	assert.False(t, h.Verify("abcdef12", d))
}

func TestArgon2id_VerifyMalformed(t *testing.T) {
	h := NewArgon2id(fastArgon2)
	good, err := h.Hash("Abcdef12")
	require.NoError(t, err)
	parts := strings.Split(good, "$")

	cases := map[string]string{
		"empty":         "",
		"wrong algo":    strings.Replace(good, "argon2id", "argon2i", 1),
		"bad version":   strings.Replace(good, "v=19", "v=16", 1),
		"bad params":    strings.Replace(good, parts[3], "m=x,t=1,p=1", 1),
		"zero params":   strings.Replace(good, parts[3], "m=0,t=1,p=1", 1),
		"bad salt":      strings.Replace(good, parts[4], "!!!", 1),
		"missing parts": "$argon2id$v=19$m=8192,t=1,p=1",
	}
	for name, digest := range cases {
		t.Run(name, func(t *testing.T) {
			assert.False(t, h.Verify("Abcdef12", digest))
		})
	}
}

func TestMulti_VerifiesEitherAlgorithm(t *testing.T) {
	m, err := New("bcrypt", bcrypt.MinCost)
	require.NoError(t, err)
	m.argon2 = NewArgon2id(fastArgon2)

	bd, err := m.Hash("Abcdef12")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(bd, "$2"))

	ad, err := m.argon2.Hash("Abcdef12")
	require.NoError(t, err)

	assert.True(t, m.Verify("Abcdef12", bd))
	assert.True(t, m.Verify("Abcdef12", ad))
	assert.False(t, m.Verify("Abcdef12", "plaintext"))
}

func TestMulti_Argon2Primary(t *testing.T) {
	m, err := New("argon2id", 0)
	require.NoError(t, err)

	d, err := m.Hash("Abcdef12")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(d, argon2Prefix))
	assert.True(t, m.Verify("Abcdef12", d))
}

func TestNew_UnknownAlgorithm(t *testing.T) {
	_, err := New("md5", 0)
	assert.Error(t, err)
}

func TestValidateStrength(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"Abcdef12", nil},
		{"Ünïcödé9", nil},
		{"Abc12", ErrTooShort},
		{"abcdef12", ErrNoUppercase},
		{"ABCDEF12", ErrNoLowercase},
		{"Abcdefgh", ErrNoDigit},
		{"", ErrTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateStrength(tt.in))
		})
	}
}
