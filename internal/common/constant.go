package common

const (
	// AccessTokenHeaderName is the gRPC metadata key carrying the access token.
	AccessTokenHeaderName = "access_token"

	// RefreshTokenCookieName is the cookie (and gRPC metadata key) carrying
	// the refresh token.
	RefreshTokenCookieName = "refresh_token"

	// TokenTypeBearer is reported in every token collection.
	TokenTypeBearer = "Bearer"
)
