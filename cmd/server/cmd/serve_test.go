package cmd

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/internhub/server/internal/auth"
	"github.com/internhub/server/internal/config"
	"github.com/internhub/server/internal/storage/memory"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() config.Config {
	return config.Config{
		Environment: "test",
		Server:      config.ServerConfig{Host: "127.0.0.1", Port: 0, RequestTimeout: time.Second},
		Storage:     config.StorageConfig{Driver: config.StorageDriverMemory},
		Auth:        config.AuthConfig{JWTSecret: "serve-test-secret", JWTExpiry: time.Hour, JWTIssuer: "internhub"},
		Logging:     config.LoggingConfig{Level: "error", Format: "json"},
		AdminBootstrap: config.AdminBootstrapConfig{
			Name:     "Admin",
			Email:    "admin@internhub.test",
			Password: "adminpass",
		},
	}
}

func TestServeCommandHelp(t *testing.T) {
	cmd := newServeCommand(&globalFlags{})
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	for _, expected := range []string{"Start the InternHub HTTP server", "--host", "--port", "--migrate", "--migrations"} {
		assert.Contains(t, output, expected)
	}
}

func TestServeCommandFlagParsing(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "invalid port value", args: []string{"--port", "invalid"}},
		{name: "unknown flag", args: []string{"--unknown"}},
		{name: "positional argument", args: []string{"extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newServeCommand(&globalFlags{})
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs(tt.args)

			assert.Error(t, cmd.Execute())
		})
	}
}

func TestServeCommandConfigError(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	cmd := newServeCommand(&globalFlags{})
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config error")
}

func TestRunServerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runServer(ctx, memoryConfig(), serveOptions{})
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestOpenStoreRefusesMemoryInProduction(t *testing.T) {
	cfg := memoryConfig()
	cfg.Environment = "production"

	_, err := openStore(context.Background(), cfg, "", false, zerolog.Nop())
	assert.Error(t, err)
}

func TestBootstrapAdmin(t *testing.T) {
	cfg := memoryConfig()
	store := &openedStore{Repository: memory.New()}
	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.JWTIssuer)

	require.NoError(t, bootstrapAdmin(context.Background(), cfg, store, tokens, zerolog.Nop()))
	require.NoError(t, bootstrapAdmin(context.Background(), cfg, store, tokens, zerolog.Nop()))

	account, err := store.Accounts().GetByEmail(context.Background(), "admin@internhub.test")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, account.Role)
}

func TestBootstrapAdminSkippedWithoutCredentials(t *testing.T) {
	cfg := memoryConfig()
	cfg.AdminBootstrap = config.AdminBootstrapConfig{}
	store := &openedStore{Repository: memory.New()}

	require.NoError(t, bootstrapAdmin(context.Background(), cfg, store, nil, zerolog.Nop()))
}

func TestNewLimiterDefaultsToMemory(t *testing.T) {
	limiter, closeLimiter, err := newLimiter(memoryConfig(), zerolog.Nop())
	require.NoError(t, err)
	defer closeLimiter()
	assert.NotNil(t, limiter)
}

func TestNewLimiterRejectsBadRedisURL(t *testing.T) {
	cfg := memoryConfig()
	cfg.Redis.URL = "not-a-redis-url"

	_, _, err := newLimiter(cfg, zerolog.Nop())
	assert.Error(t, err)
}
