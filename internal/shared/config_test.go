package shared

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadServerConfig_Defaults(t *testing.T) {
	t.Setenv("RC_INVENTORY_DIR", t.TempDir())
	t.Setenv("RC_ROOT_PATH", "/fleet/")

	cfg, err := LoadServerConfig()
	require.NoError(t, err)
	require.Equal(t, ":8085", cfg.Addr)
	require.Equal(t, "warn", cfg.LogLevel)
	require.Equal(t, "/fleet", cfg.RootPath, "trailing slash is trimmed")
}

func TestLoadServerConfig_InventoryDirRequired(t *testing.T) {
	t.Setenv("RC_INVENTORY_DIR", "")
	_, err := LoadServerConfig()
	require.ErrorContains(t, err, "RC_INVENTORY_DIR")
}

func TestValidateInventoryDir(t *testing.T) {
	dir := t.TempDir()
	cfg := &ServerConfig{InventoryDir: dir}
	require.NoError(t, cfg.ValidateInventoryDir())
	require.FileExists(t, filepath.Join(dir, "hosts.yaml"))

	file := filepath.Join(dir, "hosts.yaml")
	cfg = &ServerConfig{InventoryDir: file}
	require.ErrorContains(t, cfg.ValidateInventoryDir(), "not a directory")
}

func TestAgentConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.json")
	in := &AgentConfig{
		ServerURL:   "http://localhost:8085",
		EnrollToken: "tok",
		Environment: "prod",
		User:        "deploy",
	}
	require.NoError(t, SaveAgentConfig(path, in))

	out, err := LoadAgentConfig(path)
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8085", out.ServerURL)
	require.Equal(t, 30, out.HeartbeatSeconds, "zero heartbeat gets the default")

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
