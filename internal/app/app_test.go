package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftfolio/craftfolio/internal/backend/local"
	"github.com/craftfolio/craftfolio/internal/backend/supabase"
	"github.com/craftfolio/craftfolio/internal/config"
)

func TestNew_Supabase(t *testing.T) {
	a, err := New(t.Context(), &config.Config{
		AppEnv:          "development",
		Backend:         config.BackendSupabase,
		SupabaseURL:     "https://abc.supabase.co",
		SupabaseAnonKey: "anon",
		BackendTimeout:  time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.IsType(t, &supabase.Client{}, a.Backend)
	assert.Nil(t, a.DB)
	assert.NotNil(t, a.SessionService)
	assert.NotNil(t, a.AuthLimiter)
}

func TestNew_Local(t *testing.T) {
	a, err := New(t.Context(), &config.Config{
		AppName:      "Craftfolio",
		AppEnv:       "development",
		AppURL:       "http://localhost:8090",
		Backend:      config.BackendLocal,
		DBDriver:     "sqlite",
		DBConnection: filepath.Join(t.TempDir(), "app.db") + "?_pragma=foreign_keys(1)",
		JWTSecret:    "secret",
		JWTExpiry:    time.Hour,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.IsType(t, &local.Local{}, a.Backend)
	require.NotNil(t, a.DB)
	require.NoError(t, a.DB.Ping())
}
