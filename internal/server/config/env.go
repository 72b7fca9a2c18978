package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/joho/godotenv"
)

// Environment variables understood by parseEnv.
const (
	EnvHTTPAddr          = "AUTH_HTTP_ADDR"
	EnvGRPCAddr          = "AUTH_GRPC_ADDR"
	EnvPublicBaseURL     = "AUTH_PUBLIC_BASE_URL"
	EnvTrustProxyHeaders = "AUTH_TRUST_PROXY_HEADERS"
	EnvDatabaseDriver    = "AUTH_DATABASE_DRIVER"
	EnvDatabaseDSN       = "AUTH_DATABASE_DSN"
	EnvJWTAlgorithm      = "AUTH_JWT_ALGORITHM"
	EnvJWTPrivateKeyPath = "AUTH_JWT_PRIVATE_KEY_PATH"
	EnvJWTPublicKeyPath  = "AUTH_JWT_PUBLIC_KEY_PATH"
	EnvAccessTTL         = "AUTH_ACCESS_TOKEN_TTL"
	EnvRefreshTTL        = "AUTH_REFRESH_TOKEN_TTL"
	EnvEmailConfirmTTL   = "AUTH_EMAIL_CONFIRM_TTL"
	EnvPasswordResetTTL  = "AUTH_PASSWORD_RESET_TTL"
	EnvSMTPServer        = "AUTH_SMTP_SERVER"
	EnvSMTPPort          = "AUTH_SMTP_PORT"
	EnvSMTPUser          = "AUTH_SMTP_USER"
	EnvSMTPPassword      = "AUTH_SMTP_PASSWORD"
	EnvSMTPFrom          = "AUTH_SMTP_FROM"
	EnvSMTPUseTLS        = "AUTH_SMTP_USE_TLS"
	EnvLogLevel          = "AUTH_LOG_LEVEL"
	EnvLogBackend        = "AUTH_LOG_BACKEND"
)

// parseEnv loads a dotenv file (the one named by -env, or ./.env when it
// exists) into the process environment and overlays AUTH_* variables onto
// config. Variables already set in the environment win over the file.
// Malformed values panic.
func parseEnv(config *Config) {
	if path := flagx.EnvFileFlags(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	envString(&config.EndpointAddrHTTP, EnvHTTPAddr)
	envString(&config.EndpointAddrGRPC, EnvGRPCAddr)
	envString(&config.PublicBaseURL, EnvPublicBaseURL)
	envBool(&config.TrustProxyHeaders, EnvTrustProxyHeaders)
	envString(&config.DatabaseDriver, EnvDatabaseDriver)
	envString(&config.DatabaseDSN, EnvDatabaseDSN)
	envString(&config.JWTAlgorithm, EnvJWTAlgorithm)
	envString(&config.JWTPrivateKeyPath, EnvJWTPrivateKeyPath)
	envString(&config.JWTPublicKeyPath, EnvJWTPublicKeyPath)
	envDuration(&config.AccessTokenValidityDuration, EnvAccessTTL)
	envDuration(&config.RefreshTokenValidityDuration, EnvRefreshTTL)
	envDuration(&config.EmailConfirmValidityDuration, EnvEmailConfirmTTL)
	envDuration(&config.PasswordResetValidityDuration, EnvPasswordResetTTL)
	envString(&config.SMTPServer, EnvSMTPServer)
	envInt(&config.SMTPPort, EnvSMTPPort)
	envString(&config.SMTPUser, EnvSMTPUser)
	envString(&config.SMTPPassword, EnvSMTPPassword)
	envString(&config.SMTPFrom, EnvSMTPFrom)
	envBool(&config.SMTPUseTLS, EnvSMTPUseTLS)
	envString(&config.LogLevel, EnvLogLevel)
	envString(&config.LogBackend, EnvLogBackend)
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envDuration(dst *time.Duration, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	*dst = d
}

func envInt(dst *int, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(err)
	}
	*dst = n
}

func envBool(dst *bool, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		panic(err)
	}
	*dst = b
}
