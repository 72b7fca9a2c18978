package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth/authtest"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/mailer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	priv, pub := authtest.Ed25519PEM(t)
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")
	require.NoError(t, os.WriteFile(privPath, priv, 0o600))
	require.NoError(t, os.WriteFile(pubPath, pub, 0o600))

	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.DatabaseDriver = config.DriverSQLite
	c.DatabaseDSN = ":memory:"
	c.JWTAlgorithm = "EdDSA"
	c.JWTPrivateKeyPath = privPath
	c.JWTPublicKeyPath = pubPath
	c.LogLevel = "error"
	return c
}

func TestNewApp_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := NewApp(ctx, testConfig(t))
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestNewApp_InvalidConfig(t *testing.T) {
	c := testConfig(t)
	c.DatabaseDriver = "mysql"

	_, err := NewApp(context.Background(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestNewApp_MissingKeys(t *testing.T) {
	c := testConfig(t)
	c.JWTPublicKeyPath = filepath.Join(t.TempDir(), "absent.pem")

	_, err := NewApp(context.Background(), c)
	require.Error(t, err)
}

func TestNewNotifier(t *testing.T) {
	c := testConfig(t)

	n, err := newNotifier(c, logging.Nop{})
	require.NoError(t, err)
	assert.IsType(t, &mailer.LogNotifier{}, n)

	c.SMTPServer = "smtp.example.com"
	n, err = newNotifier(c, logging.Nop{})
	require.NoError(t, err)
	assert.IsType(t, &mailer.SMTPNotifier{}, n)
}

func TestLinkBaseURL(t *testing.T) {
	tests := []struct {
		name   string
		public string
		http   string
		want   string
	}{
		{"public wins", "https://auth.example.com/", ":8080", "https://auth.example.com/"},
		{"bare port", "", ":8080", "http://localhost:8080/"},
		{"any address", "", "0.0.0.0:9000", "http://localhost:9000/"},
		{"explicit host", "", "10.0.0.5:8080", "http://10.0.0.5:8080/"},
		{"garbage", "", "nope", "http://localhost/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &config.Config{PublicBaseURL: tt.public, EndpointAddrHTTP: tt.http}
			assert.Equal(t, tt.want, linkBaseURL(c))
		})
	}
}
