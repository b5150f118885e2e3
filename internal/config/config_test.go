package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "development")
	t.Setenv("APP_URL", "http://localhost:8090")
}

func TestLoad_Supabase(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("BACKEND", "")
	t.Setenv("SUPABASE_URL", "https://abc.supabase.co/")
	t.Setenv("SUPABASE_ANON_KEY", "anon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendSupabase, cfg.Backend)
	assert.Equal(t, "https://abc.supabase.co", cfg.SupabaseURL)
	assert.Equal(t, "anon", cfg.SupabaseAnonKey)
	assert.Equal(t, "portfolio", cfg.SupabaseStorageBucket)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_MissingSupabaseKeysFailFast(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("BACKEND", "supabase")
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_ANON_KEY", "")

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.True(t, errors.Is(err, ErrMissingRequiredEnv))
	assert.Contains(t, err.Error(), "SUPABASE_URL")
	assert.Contains(t, err.Error(), "SUPABASE_ANON_KEY")
}

func TestLoad_LocalRequiresJWTSecret(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("BACKEND", "local")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "s3cret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
}

func TestLoad_UnknownBackend(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("BACKEND", "firebase")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "firebase")
}

func TestSanitized_DropsSecrets(t *testing.T) {
	cfg := &Config{AppName: "Craftfolio", SupabaseAnonKey: "anon", JWTSecret: "secret", S3SecretKey: "s3"}
	safe := cfg.Sanitized()

	assert.Equal(t, "Craftfolio", safe.AppName)
	assert.Empty(t, safe.SupabaseAnonKey)
	assert.Empty(t, safe.JWTSecret)
	assert.Empty(t, safe.S3SecretKey)
}
