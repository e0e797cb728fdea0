package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/tether/internal/errors"
)

// unsetEnv clears variables for the test and restores them afterwards
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func requireConfigError(t *testing.T, err error) {
	t.Helper()
	var tetherErr errors.TetherError
	require.True(t, stderrors.As(err, &tetherErr), "expected a tether error, got %v", err)
	assert.Equal(t, errors.ConfigurationErrorCode, tetherErr.ErrorCode())
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultMaxRounds, cfg.MaxRounds)
	assert.Equal(t, []string{"./..."}, cfg.Directories)
	assert.NoError(t, cfg.Validate())
}

func TestLoadLayers(t *testing.T) {
	unsetEnv(t, EnvModule, EnvMaxRounds)
	dir := t.TempDir()

	path := write(t, dir, "tether.yaml", `
directories:
  - ./internal/...
module: example.com/from-yaml
max_rounds: 4
verbose: true
`)

	t.Run("file only", func(t *testing.T) {
		cfg, err := Load(path, filepath.Join(dir, "missing.env"))
		require.NoError(t, err)
		assert.Equal(t, []string{"./internal/..."}, cfg.Directories)
		assert.Equal(t, "example.com/from-yaml", cfg.Module)
		assert.Equal(t, 4, cfg.MaxRounds)
		assert.True(t, cfg.Verbose)
	})

	t.Run("environment over file", func(t *testing.T) {
		t.Setenv(EnvModule, "example.com/from-env")
		t.Setenv(EnvMaxRounds, "7")
		cfg, err := Load(path, filepath.Join(dir, "missing.env"))
		require.NoError(t, err)
		assert.Equal(t, "example.com/from-env", cfg.Module)
		assert.Equal(t, 7, cfg.MaxRounds)
	})

	t.Run("flags over everything", func(t *testing.T) {
		t.Setenv(EnvMaxRounds, "7")
		cfg, err := Load(path, filepath.Join(dir, "missing.env"))
		require.NoError(t, err)
		cfg.Apply(Overrides{Directories: []string{"./cmd"}, Module: "example.com/flag", MaxRounds: 2, Quiet: true})
		assert.Equal(t, []string{"./cmd"}, cfg.Directories)
		assert.Equal(t, "example.com/flag", cfg.Module)
		assert.Equal(t, 2, cfg.MaxRounds)
		assert.True(t, cfg.Quiet)
		assert.False(t, cfg.Verbose)
		assert.NoError(t, cfg.Validate())
	})
}

func TestLoadDotEnv(t *testing.T) {
	unsetEnv(t, EnvModule, EnvMaxRounds)
	dir := t.TempDir()
	envFile := write(t, dir, ".env", "TETHER_MODULE=example.com/dotenv\nTETHER_MAX_ROUNDS=3\n")

	cfg, err := Load(write(t, dir, "tether.yaml", "max_rounds: 9\n"), envFile)
	require.NoError(t, err)
	assert.Equal(t, "example.com/dotenv", cfg.Module)
	assert.Equal(t, 3, cfg.MaxRounds)
}

func TestLoadOptionalDefaultFile(t *testing.T) {
	unsetEnv(t, EnvModule, EnvMaxRounds)
	tmp := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmp))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadErrors(t *testing.T) {
	unsetEnv(t, EnvModule, EnvMaxRounds)
	dir := t.TempDir()
	noEnv := filepath.Join(dir, "missing.env")

	t.Run("named file missing", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nope.yaml"), noEnv)
		requireConfigError(t, err)
		assert.Contains(t, err.Error(), "failed to read configuration")
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := Load(write(t, dir, "bad.yaml", "rounds: 3\n"), noEnv)
		requireConfigError(t, err)
		assert.Contains(t, err.Error(), "failed to parse configuration")
	})

	t.Run("empty file", func(t *testing.T) {
		cfg, err := Load(write(t, dir, "empty.yaml", ""), noEnv)
		require.NoError(t, err)
		assert.Equal(t, DefaultMaxRounds, cfg.MaxRounds)
	})

	t.Run("invalid max rounds variable", func(t *testing.T) {
		t.Setenv(EnvMaxRounds, "many")
		_, err := Load(write(t, dir, "ok.yaml", "module: x\n"), noEnv)
		requireConfigError(t, err)
		assert.EqualError(t, err, "TETHER_MAX_ROUNDS must be an integer, got 'many'")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero rounds", func(c *Config) { c.MaxRounds = 0 }, "max rounds must be at least 1, got 0"},
		{"no directories", func(c *Config) { c.Directories = nil }, "no directories to scan"},
		{"blank directory", func(c *Config) { c.Directories = []string{" "} }, "directory must not be empty"},
		{"verbose and quiet", func(c *Config) { c.Verbose, c.Quiet = true, true }, "verbose and quiet are mutually exclusive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			requireConfigError(t, err)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
