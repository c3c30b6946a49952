package core_test

import (
	"os"
	"path/filepath"
	"testing"

	"fcstore/internal/core"

	"github.com/stretchr/testify/require"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{core.EnvPort, core.EnvSecret, core.EnvDataDir, core.EnvMetricsListen, core.EnvLogLevel} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := core.LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, "2000", cfg.Port)
	require.Empty(t, cfg.Secret)
	require.Equal(t, core.DefaultUploadsDir, filepath.Base(cfg.DataDir))
	require.Equal(t, "info", cfg.LogLevel)
	require.EqualValues(t, core.DefaultMaxUploadSize, cfg.MaxUploadSize)
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	clearConfigEnv(t)

	path := filepath.Join(t.TempDir(), "fcstore.yaml")
	content := "port: \"3000\"\nsecret: from-file\ndata_dir: /srv/fcstore\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := core.LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "3000", cfg.Port)
	require.Equal(t, "from-file", cfg.Secret)
	require.Equal(t, "/srv/fcstore", cfg.DataDir)
	require.Equal(t, "debug", cfg.LogLevel)

	t.Setenv(core.EnvPort, "4000")
	t.Setenv(core.EnvSecret, "from-env")
	t.Setenv(core.EnvMetricsListen, ":9100")

	cfg, err = core.LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "4000", cfg.Port)
	require.Equal(t, "from-env", cfg.Secret)
	require.Equal(t, ":9100", cfg.MetricsListen)
	require.Equal(t, "/srv/fcstore", cfg.DataDir, "unset env must not override the file")
}

func TestLoadConfigErrors(t *testing.T) {
	clearConfigEnv(t)

	_, err := core.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err, "missing config file")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("port: [1, 2"), 0o600))
	_, err = core.LoadConfig(bad)
	require.Error(t, err, "malformed YAML")

	t.Setenv(core.EnvPort, "not-a-port")
	_, err = core.LoadConfig("")
	require.Error(t, err, "invalid port")
}

func TestNewConfigOptions(t *testing.T) {
	t.Parallel()

	cfg := core.NewConfig(
		core.WithDataDir("/data"),
		core.WithSecret("s"),
		core.WithPort("8080"),
		core.WithMaxUploadSize(10),
	)
	require.Equal(t, "/data", cfg.DataDir)
	require.Equal(t, "s", cfg.Secret)
	require.Equal(t, "8080", cfg.Port)
	require.EqualValues(t, 10, cfg.MaxUploadSize)
	require.NoError(t, cfg.Validate())
}
