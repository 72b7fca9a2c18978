// Package authtest builds throwaway key pairs and token factories for tests.
package authtest

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/auth"
)

// Clock is a settable time source.
type Clock struct {
	T time.Time
}

func (c *Clock) Now() time.Time { return c.T }

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) { c.T = c.T.Add(d) }

// DefaultTTLs mirrors the production defaults.
var DefaultTTLs = auth.TTLs{
	Access:        15 * time.Minute,
	Refresh:       30 * 24 * time.Hour,
	EmailConfirm:  60 * 24 * time.Hour,
	PasswordReset: 60 * 24 * time.Hour,
}

// Ed25519PEM returns a fresh PKCS#8 private key and PKIX public key.
func Ed25519PEM(t testing.TB) (privatePEM, publicPEM []byte) {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		t.Fatalf("marshal private key: %v", err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}

	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER}),
		pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
}

// NewKeyPair returns a fresh EdDSA key pair.
func NewKeyPair(t testing.TB) *auth.KeyPair {
	t.Helper()

	priv, pub := Ed25519PEM(t)
	kp, err := auth.ParseKeyPair("EdDSA", priv, pub)
	if err != nil {
		t.Fatalf("parse key pair: %v", err)
	}
	return kp
}

// NewFactory returns a factory on a fresh key pair. A nil clock uses
// time.Now.
func NewFactory(t testing.TB, clock *Clock) *auth.Factory {
	t.Helper()

	var opts []auth.CodecOption
	if clock != nil {
		opts = append(opts, auth.WithClock(clock.Now))
	}
	return auth.NewFactory(auth.NewCodec(NewKeyPair(t), opts...), DefaultTTLs)
}
