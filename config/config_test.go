package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/blockberries/themis"
	"github.com/blockberries/themis/catalog"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.Equal(t, "127.0.0.1:26680", cfg.Server.ListenAddress)
	require.Equal(t, "info", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())

	cat, err := cfg.Catalog()
	require.NoError(t, err)
	require.Equal(t, catalog.Default().Entries(), cat.Entries())
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("THEMIS_LISTEN_ADDRESS", "")
	t.Setenv("THEMIS_LOG_LEVEL", "")

	path := filepath.Join(t.TempDir(), "nested", "themis.yaml")

	cfg := Default()
	cfg.Server.ListenAddress = "0.0.0.0:9000"
	cfg.Logging.Level = "debug"
	cfg.Logging.Development = true
	cfg.Sources["twitter"] = 4900

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("THEMIS_LISTEN_ADDRESS", "")
	t.Setenv("THEMIS_LOG_LEVEL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoad_PartialFile(t *testing.T) {
	t.Setenv("THEMIS_LISTEN_ADDRESS", "")
	t.Setenv("THEMIS_LOG_LEVEL", "")

	path := filepath.Join(t.TempDir(), "themis.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sources:\n  github: 77\n  domain: 78\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:26680", cfg.Server.ListenAddress)

	cat, err := cfg.Catalog()
	require.NoError(t, err)
	id, err := cat.Resolve("github")
	require.NoError(t, err)
	require.Equal(t, catalog.SourceID(77), id)
	id, err = cat.Resolve("twitter")
	require.NoError(t, err)
	require.Equal(t, catalog.SourceID(49), id)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "themis.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("THEMIS_LISTEN_ADDRESS", "10.0.0.1:1234")
	t.Setenv("THEMIS_LOG_LEVEL", "warn")

	cfg := Default()
	cfg.applyEnvOverrides()

	require.Equal(t, "10.0.0.1:1234", cfg.Server.ListenAddress)
	level, err := cfg.Logging.ZapLevel()
	require.NoError(t, err)
	require.Equal(t, zapcore.WarnLevel, level)
}

func TestConfig_Validate(t *testing.T) {
	cfg := Default()
	cfg.Server.ListenAddress = "no-port"
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Logging.Level = "loud"
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Sources["facebook"] = 1
	err := cfg.Validate()
	require.Error(t, err)
	require.True(t, errors.Is(err, themis.ErrUnsupportedApplication))

	cfg = Default()
	cfg.Sources["github"] = 49
	require.Error(t, cfg.Validate(), "github would share twitter's source id")
}
