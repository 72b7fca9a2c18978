package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON config file.
// Durations accept both "15m" style strings and integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP              string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC              string         `json:"endpoint_addr_grpc"`
	PublicBaseURL                 string         `json:"public_base_url"`
	TrustProxyHeaders             *bool          `json:"trust_proxy_headers"`
	DatabaseDriver                string         `json:"database_driver"`
	DatabaseDSN                   string         `json:"database_dsn"`
	JWTAlgorithm                  string         `json:"jwt_algorithm"`
	JWTPrivateKeyPath             string         `json:"jwt_private_key_path"`
	JWTPublicKeyPath              string         `json:"jwt_public_key_path"`
	AccessTokenValidityDuration   timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration  timex.Duration `json:"refresh_token_validity_duration"`
	EmailConfirmValidityDuration  timex.Duration `json:"email_confirm_validity_duration"`
	PasswordResetValidityDuration timex.Duration `json:"password_reset_validity_duration"`
	SMTPServer                    string         `json:"smtp_server"`
	SMTPPort                      int            `json:"smtp_port"`
	SMTPUser                      string         `json:"smtp_user"`
	SMTPPassword                  string         `json:"smtp_password"`
	SMTPFrom                      string         `json:"smtp_from"`
	SMTPUseTLS                    *bool          `json:"smtp_use_tls"`
	LogLevel                      string         `json:"log_level"`
	LogBackend                    string         `json:"log_backend"`
}

// parseJson overlays values from the file named by -c/-config onto config.
// Keys missing from the file leave the current value untouched. An
// unreadable file or invalid JSON panics, as a misconfigured server must not
// start.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.PublicBaseURL, c.PublicBaseURL)
	setString(&config.DatabaseDriver, c.DatabaseDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.JWTAlgorithm, c.JWTAlgorithm)
	setString(&config.JWTPrivateKeyPath, c.JWTPrivateKeyPath)
	setString(&config.JWTPublicKeyPath, c.JWTPublicKeyPath)
	setString(&config.SMTPServer, c.SMTPServer)
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.SMTPFrom, c.SMTPFrom)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogBackend, c.LogBackend)

	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration.Duration > 0 {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.EmailConfirmValidityDuration.Duration > 0 {
		config.EmailConfirmValidityDuration = c.EmailConfirmValidityDuration.Duration
	}
	if c.PasswordResetValidityDuration.Duration > 0 {
		config.PasswordResetValidityDuration = c.PasswordResetValidityDuration.Duration
	}
	if c.SMTPPort > 0 {
		config.SMTPPort = c.SMTPPort
	}
	if c.SMTPUseTLS != nil {
		config.SMTPUseTLS = *c.SMTPUseTLS
	}
	if c.TrustProxyHeaders != nil {
		config.TrustProxyHeaders = *c.TrustProxyHeaders
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
