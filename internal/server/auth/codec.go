package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// ErrSigningUnavailable is returned by Encode on a verify-only codec.
var ErrSigningUnavailable = errors.New("signing key is not configured")

// Codec signs and verifies tokens with a single, fixed algorithm. It is
// immutable after construction and safe for concurrent use.
type Codec struct {
	keys   *KeyPair
	now    func() time.Time
	parser *jwt.Parser
}

// CodecOption customizes a Codec.
type CodecOption func(*Codec)

// WithClock replaces time.Now for issuing and expiry checks.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) { c.now = now }
}

func NewCodec(keys *KeyPair, opts ...CodecOption) *Codec {
	c := &Codec{keys: keys, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}

	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{keys.Method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)

	return c
}

// Now is the codec clock.
func (c *Codec) Now() time.Time {
	return c.now()
}

// Encode signs claims with the private key.
func (c *Codec) Encode(claims *Claims) (string, error) {
	if c.keys.Signer == nil {
		return "", ErrSigningUnavailable
	}
	return jwt.NewWithClaims(c.keys.Method, claims).SignedString(c.keys.Signer)
}

// Decode verifies the signature, the algorithm and the time claims and
// returns the payload. Every failure matches common.ErrInvalidToken; an
// expired token additionally matches common.ErrTokenExpired.
func (c *Codec) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}

	_, err := c.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != c.keys.Method.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return c.keys.Verifier, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, common.ErrTokenExpired)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if err := claims.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	return claims, nil
}
