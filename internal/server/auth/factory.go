package auth

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TTLs is the fixed lifetime per token type.
type TTLs struct {
	Access        time.Duration
	Refresh       time.Duration
	EmailConfirm  time.Duration
	PasswordReset time.Duration
}

// Factory mints typed tokens. Like Codec it is built once and shared.
type Factory struct {
	codec *Codec
	ttl   TTLs
	newID func() string
}

func NewFactory(codec *Codec, ttl TTLs) *Factory {
	return &Factory{codec: codec, ttl: ttl, newID: newTokenID}
}

// NewFromConfig loads the key pair named by cfg and returns a factory using
// the configured lifetimes.
func NewFromConfig(cfg *config.Config) (*Factory, error) {
	keys, err := LoadKeyPair(cfg.JWTAlgorithm, cfg.JWTPrivateKeyPath, cfg.JWTPublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("jwt keys: %w", err)
	}

	return NewFactory(NewCodec(keys), TTLs{
		Access:        cfg.AccessTokenValidityDuration,
		Refresh:       cfg.RefreshTokenValidityDuration,
		EmailConfirm:  cfg.EmailConfirmValidityDuration,
		PasswordReset: cfg.PasswordResetValidityDuration,
	}), nil
}

// Codec returns the codec tokens are signed with.
func (f *Factory) Codec() *Codec {
	return f.codec
}

// TTL returns the configured lifetimes.
func (f *Factory) TTL() TTLs {
	return f.ttl
}

// CreateTokenCollection mints a refresh token and an access token chained
// to it.
func (f *Factory) CreateTokenCollection(userID int64) (*TokenCollection, error) {
	refresh, err := f.CreateRefreshToken(userID)
	if err != nil {
		return nil, err
	}
	access, err := f.CreateAccessToken(userID, refresh.ID)
	if err != nil {
		return nil, err
	}

	return &TokenCollection{
		Type:         common.TokenTypeBearer,
		AccessToken:  access.Token,
		RefreshToken: refresh.Token,
	}, nil
}

// CreateAccessToken mints an access token. refreshID is the jti of the
// refresh token that authorized it and may be empty.
func (f *Factory) CreateAccessToken(userID int64, refreshID string) (*Token, error) {
	return f.issue(userID, TokenTypeAccess, f.ttl.Access, refreshID)
}

func (f *Factory) CreateRefreshToken(userID int64) (*Token, error) {
	return f.issue(userID, TokenTypeRefresh, f.ttl.Refresh, "")
}

func (f *Factory) CreateEmailConfirmToken(userID int64) (*Token, error) {
	return f.issue(userID, TokenTypeEmailConfirm, f.ttl.EmailConfirm, "")
}

func (f *Factory) CreatePasswordResetToken(userID int64) (*Token, error) {
	return f.issue(userID, TokenTypeResetPassword, f.ttl.PasswordReset, "")
}

func (f *Factory) issue(userID int64, typ TokenType, ttl time.Duration, refreshID string) (*Token, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id %d", userID)
	}
	if ttl < time.Second {
		// exp and iat are whole seconds; shorter lifetimes collapse to exp == iat.
		return nil, fmt.Errorf("invalid %s token lifetime %s", typ, ttl)
	}

	now := f.codec.Now()
	claims := &Claims{
		Type:      typ,
		RefreshID: refreshID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        f.newID(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := f.codec.Encode(claims)
	if err != nil {
		return nil, fmt.Errorf("sign %s token: %w", typ, err)
	}

	return &Token{Token: signed, ID: claims.ID}, nil
}

func newTokenID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}
