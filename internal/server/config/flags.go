package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

var knownFlags = []string{
	"-a", "-g", "-U", "-proxy", "-n", "-d", "-j", "-s", "-p",
	"-t", "-r", "-e", "-w",
	"-m", "-o", "-u", "-x", "-f", "-tls",
	"-l", "-b",
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-g string   gRPC bind address (e.g. ":50051")
//	-U string   public base URL used in e-mailed links
//	-proxy bool trust X-Forwarded-Proto from a fronting proxy
//	-n string   database driver: pgx | sqlite
//	-d string   database DSN
//	-j string   JWT algorithm: RS256 | ES256 | EdDSA
//	-s string   JWT private key (PEM) path
//	-p string   JWT public key (PEM) path
//	-t int      access token validity, minutes
//	-r int      refresh token validity, days
//	-e int      email confirmation token validity, hours
//	-w int      password reset token validity, hours
//	-m string   SMTP server
//	-o int      SMTP port
//	-u string   SMTP user
//	-x string   SMTP password
//	-f string   mail sender address
//	-tls bool   use STARTTLS
//	-l string   log level
//	-b string   log backend: slog | zap
//
// Only the flags above are looked at, so other components can own the rest
// of os.Args. Durations are integers in the unit shown and are converted to
// time.Duration.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.PublicBaseURL, "U", config.PublicBaseURL, "public base URL")
	fs.BoolVar(&config.TrustProxyHeaders, "proxy", config.TrustProxyHeaders, "trust X-Forwarded-Proto")
	fs.StringVar(&config.DatabaseDriver, "n", config.DatabaseDriver, "database driver")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.JWTAlgorithm, "j", config.JWTAlgorithm, "jwt algorithm")
	fs.StringVar(&config.JWTPrivateKeyPath, "s", config.JWTPrivateKeyPath, "jwt private key path")
	fs.StringVar(&config.JWTPublicKeyPath, "p", config.JWTPublicKeyPath, "jwt public key path")

	access := fs.Int("t", int(config.AccessTokenValidityDuration/time.Minute), "access token validity (in minutes)")
	refresh := fs.Int("r", int(config.RefreshTokenValidityDuration/(24*time.Hour)), "refresh token validity (in days)")
	confirm := fs.Int("e", int(config.EmailConfirmValidityDuration/time.Hour), "email confirmation token validity (in hours)")
	reset := fs.Int("w", int(config.PasswordResetValidityDuration/time.Hour), "password reset token validity (in hours)")

	fs.StringVar(&config.SMTPServer, "m", config.SMTPServer, "SMTP server")
	fs.IntVar(&config.SMTPPort, "o", config.SMTPPort, "SMTP port")
	fs.StringVar(&config.SMTPUser, "u", config.SMTPUser, "SMTP user")
	fs.StringVar(&config.SMTPPassword, "x", config.SMTPPassword, "SMTP password")
	fs.StringVar(&config.SMTPFrom, "f", config.SMTPFrom, "mail sender")
	fs.BoolVar(&config.SMTPUseTLS, "tls", config.SMTPUseTLS, "use STARTTLS")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogBackend, "b", config.LogBackend, "log backend")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Only overwrite durations that were given explicitly so sub-unit
	// defaults (e.g. a 90s access TTL from JSON) survive.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*access) * time.Minute
		case "r":
			config.RefreshTokenValidityDuration = time.Duration(*refresh) * 24 * time.Hour
		case "e":
			config.EmailConfirmValidityDuration = time.Duration(*confirm) * time.Hour
		case "w":
			config.PasswordResetValidityDuration = time.Duration(*reset) * time.Hour
		}
	})
}
