package validation

import (
	"strings"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsername(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"ok", "alice_01", false},
		{"dots and dashes", "a.b-c", false},
		{"too short", "ab", true},
		{"too long", strings.Repeat("a", 33), true},
		{"at sign", "al@ce", true},
		{"space", "al ice", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Username(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, common.ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPassword(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"ok", "passw0rd", false},
		{"no digit", "password", true},
		{"no letter", "12345678", true},
		{"too short", "pa55", true},
		{"too long", strings.Repeat("a1", 33), true},
		{"multibyte within 72 bytes", strings.Repeat("пароль", 5) + "1", false},
		{"multibyte over 72 bytes", strings.Repeat("пароль", 6) + "1", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Password(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestEmail(t *testing.T) {
	assert.NoError(t, Email("a@b.com"))
	assert.ErrorIs(t, Email("not-an-email"), common.ErrValidation)
	assert.ErrorIs(t, Email(""), common.ErrValidation)
}

func TestSignUpInput_Validate(t *testing.T) {
	ok := SignUpInput{Username: "alice", Email: "a@b.com", Password: "passw0rd"}
	assert.NoError(t, ok.Validate())

	bad := SignUpInput{Username: "a", Email: "nope", Password: "short"}
	err := bad.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrValidation)
	for _, field := range []string{"username", "email", "password"} {
		assert.Contains(t, err.Error(), field)
	}
}

func TestSignUpInput_Normalize(t *testing.T) {
	in := SignUpInput{Username: "  alice ", Email: " a@b.com\n", Password: " keep me1 "}
	got := in.Normalize()
	assert.Equal(t, SignUpInput{Username: "alice", Email: "a@b.com", Password: " keep me1 "}, got)
}

func TestParseLoginIdentifier(t *testing.T) {
	id, err := ParseLoginIdentifier("a@b.com")
	require.NoError(t, err)
	assert.True(t, id.IsEmail())
	assert.Equal(t, "a@b.com", id.Value())

	id, err = ParseLoginIdentifier(" alice ")
	require.NoError(t, err)
	assert.True(t, id.IsUsername())
	assert.Equal(t, "alice", id.Value())
	assert.Equal(t, "username:alice", id.String())

	id, err = ParseLoginIdentifier("nobody@")
	require.NoError(t, err)
	assert.True(t, id.IsEmail())
	assert.Equal(t, "nobody@", id.Value())

	_, err = ParseLoginIdentifier("x")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestLoginIdentifier_Zero(t *testing.T) {
	var id LoginIdentifier
	assert.False(t, id.IsEmail())
	assert.False(t, id.IsUsername())
	assert.Equal(t, "unknown", id.Kind().String())
}
