package auth_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/auth/authtest"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pemPair(t *testing.T, priv any, pub any) ([]byte, []byte) {
	t.Helper()
	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	require.NoError(t, err)
	pubDER, err := x509.MarshalPKIXPublicKey(pub)
	require.NoError(t, err)
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER}),
		pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
}

func sampleClaims(now time.Time, typ auth.TokenType) *auth.Claims {
	return &auth.Claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "abc123",
			Subject:   "42",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func TestCodec_RoundTrip_AllAlgorithms(t *testing.T) {
	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	rsaPriv, rsaPub := pemPair(t, rsaKey, &rsaKey.PublicKey)
	ecPriv, ecPub := pemPair(t, ecKey, &ecKey.PublicKey)
	edPriv, edPub := authtest.Ed25519PEM(t)

	tests := []struct {
		alg       string
		priv, pub []byte
	}{
		{"RS256", rsaPriv, rsaPub},
		{"ES256", ecPriv, ecPub},
		{"EdDSA", edPriv, edPub},
	}

	for _, tt := range tests {
		t.Run(tt.alg, func(t *testing.T) {
			kp, err := auth.ParseKeyPair(tt.alg, tt.priv, tt.pub)
			require.NoError(t, err)
			codec := auth.NewCodec(kp)

			tok, err := codec.Encode(sampleClaims(time.Now(), auth.TokenTypeAccess))
			require.NoError(t, err)
			assert.Len(t, strings.Split(tok, "."), 3)

			got, err := codec.Decode(tok)
			require.NoError(t, err)
			assert.Equal(t, auth.TokenTypeAccess, got.Type)
			assert.Equal(t, "42", got.Subject)
			assert.Equal(t, "abc123", got.ID)
		})
	}
}

func TestCodec_Decode_DifferentKeyPairFails(t *testing.T) {
	signer := auth.NewCodec(authtest.NewKeyPair(t))
	verifier := auth.NewCodec(authtest.NewKeyPair(t))

	tok, err := signer.Encode(sampleClaims(time.Now(), auth.TokenTypeAccess))
	require.NoError(t, err)

	_, err = verifier.Decode(tok)
	require.ErrorIs(t, err, common.ErrInvalidToken)
	assert.NotErrorIs(t, err, common.ErrTokenExpired)
}

func TestCodec_Decode_RejectsOtherAlgorithms(t *testing.T) {
	kp := authtest.NewKeyPair(t)
	codec := auth.NewCodec(kp)

	// HS256 signed with the public key bytes: the classic alg confusion.
	pubDER, err := x509.MarshalPKIXPublicKey(kp.Verifier)
	require.NoError(t, err)
	hs, err := jwt.NewWithClaims(jwt.SigningMethodHS256, sampleClaims(time.Now(), auth.TokenTypeAccess)).SignedString(pubDER)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, sampleClaims(time.Now(), auth.TokenTypeAccess)).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for _, tok := range []string{hs, none} {
		_, err := codec.Decode(tok)
		require.ErrorIs(t, err, common.ErrInvalidToken)
	}
}

func TestCodec_Decode_MalformedAndMissingClaims(t *testing.T) {
	now := time.Now()
	codec := auth.NewCodec(authtest.NewKeyPair(t))

	_, err := codec.Decode("not.a.jwt")
	require.ErrorIs(t, err, common.ErrInvalidToken)

	mutations := map[string]func(c *auth.Claims){
		"unknown type":    func(c *auth.Claims) { c.Type = "session" },
		"missing jti":     func(c *auth.Claims) { c.ID = "" },
		"missing iat":     func(c *auth.Claims) { c.IssuedAt = nil },
		"missing exp":     func(c *auth.Claims) { c.ExpiresAt = nil },
		"non numeric sub": func(c *auth.Claims) { c.Subject = "alice" },
		"zero sub":        func(c *auth.Claims) { c.Subject = "0" },
		"exp not after iat": func(c *auth.Claims) {
			c.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Hour))
			c.IssuedAt = jwt.NewNumericDate(now.Add(-time.Hour))
		},
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			claims := sampleClaims(now, auth.TokenTypeRefresh)
			mutate(claims)
			tok, err := codec.Encode(claims)
			require.NoError(t, err)

			_, err = codec.Decode(tok)
			require.ErrorIs(t, err, common.ErrInvalidToken)
		})
	}
}

func TestCodec_Decode_ExpiredIsClassified(t *testing.T) {
	clock := &authtest.Clock{T: time.Unix(1_700_000_000, 0)}
	codec := auth.NewCodec(authtest.NewKeyPair(t), auth.WithClock(clock.Now))

	tok, err := codec.Encode(sampleClaims(clock.T, auth.TokenTypeAccess))
	require.NoError(t, err)

	clock.Advance(time.Hour)
	_, err = codec.Decode(tok)
	require.ErrorIs(t, err, common.ErrInvalidToken)
	require.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestCodec_Encode_VerifyOnly(t *testing.T) {
	_, pub := authtest.Ed25519PEM(t)
	kp, err := auth.ParseKeyPair("EdDSA", nil, pub)
	require.NoError(t, err)

	_, err = auth.NewCodec(kp).Encode(sampleClaims(time.Now(), auth.TokenTypeAccess))
	require.ErrorIs(t, err, auth.ErrSigningUnavailable)
}

func TestParseKeyPair_Errors(t *testing.T) {
	priv, pub := authtest.Ed25519PEM(t)

	_, err := auth.ParseKeyPair("HS256", priv, pub)
	require.Error(t, err)

	_, err = auth.ParseKeyPair("EdDSA", priv, nil)
	require.Error(t, err)

	_, err = auth.ParseKeyPair("RS256", priv, pub)
	require.Error(t, err, "ed25519 keys are not rsa keys")

	_, err = auth.ParseKeyPair("EdDSA", []byte("garbage"), pub)
	require.Error(t, err)
}
