package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	require.NoError(t, Load(filepath.Join(t.TempDir(), "missing.yaml")))

	assert.Equal(t, ":8080", C.Server.Port)
	assert.Equal(t, 5, C.Game.MaxPlayers)
	assert.Equal(t, 15*time.Second, C.DeclareWindow())
	assert.Equal(t, time.Second, C.Game.TickInterval)
	assert.Equal(t, 24*time.Hour, C.JWT.TTL)
	assert.Empty(t, C.Redis.Addr)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "server:\n  port: \":9000\"\ngame:\n  max_players: 9\n  declare_seconds: 5\nredis:\n  addr: \"localhost:6379\"\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("SAMLOC_JWT_SECRET", "from-env")
	t.Setenv("SAMLOC_LOG_LEVEL", "debug")

	require.NoError(t, Load(path))

	assert.Equal(t, ":9000", C.Server.Port)
	assert.Equal(t, 5, C.Game.MaxPlayers, "clamped")
	assert.Equal(t, 5*time.Second, C.DeclareWindow())
	assert.Equal(t, "localhost:6379", C.Redis.Addr)
	assert.Equal(t, "from-env", C.JWT.Secret)
	assert.Equal(t, "debug", C.Log.Level)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [\n"), 0o600))
	assert.Error(t, Load(path))
}
