package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfinance/move-tools/internal/dialects"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// unsetEnv clears key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	require.NoError(t, os.Unsetenv(key))
	t.Cleanup(func() {
		if had {
			os.Setenv(key, old)
		} else {
			os.Unsetenv(key)
		}
	})
}

func TestLoad(t *testing.T) {
	path := writeFile(t, t.TempDir(), "movec.toml", `
Dialect = "dfinance"
Sender = "0x2"
StdlibDir = "stdlib"
Modules = ["deps", "more/coins.move"]
MalformedAddresses = "report"
Parallelism = 4
`)
	cfg := Defaults
	require.NoError(t, Load(path, &cfg))

	assert.Equal(t, "dfinance", cfg.Dialect)
	assert.Equal(t, "0x2", cfg.Sender)
	assert.Equal(t, "stdlib", cfg.StdlibDir)
	assert.Equal(t, []string{"deps", "more/coins.move"}, cfg.Modules)
	assert.Equal(t, "report", cfg.MalformedAddresses)
	assert.Equal(t, 4, cfg.Parallelism)
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "movec.toml", `Dialect = "polkadot"`+"\n")
	cfg := Defaults
	require.NoError(t, Load(path, &cfg))

	assert.Equal(t, "polkadot", cfg.Dialect)
	assert.Equal(t, Defaults.Sender, cfg.Sender)
	assert.Equal(t, Defaults.Parallelism, cfg.Parallelism)
}

func TestLoadUnknownField(t *testing.T) {
	path := writeFile(t, t.TempDir(), "movec.toml", "Dialect = \"libra\"\nColour = \"red\"\n")
	cfg := Defaults
	err := Load(path, &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
	assert.Contains(t, err.Error(), "Colour")
}

func TestLoadMissingFile(t *testing.T) {
	cfg := Defaults
	err := Load(filepath.Join(t.TempDir(), "absent.toml"), &cfg)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvDialect, "dfinance")
	t.Setenv(EnvSender, "0x5")
	t.Setenv(EnvStdlib, "/opt/stdlib")
	t.Setenv(EnvParallelism, "8")

	cfg := Defaults
	require.NoError(t, ApplyEnv(&cfg, filepath.Join(t.TempDir(), "absent.env")))
	assert.Equal(t, "dfinance", cfg.Dialect)
	assert.Equal(t, "0x5", cfg.Sender)
	assert.Equal(t, "/opt/stdlib", cfg.StdlibDir)
	assert.Equal(t, 8, cfg.Parallelism)
}

func TestApplyEnvBadParallelism(t *testing.T) {
	t.Setenv(EnvParallelism, "many")
	cfg := Defaults
	err := ApplyEnv(&cfg, filepath.Join(t.TempDir(), "absent.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvParallelism)
}

func TestApplyEnvFromDotEnv(t *testing.T) {
	for _, key := range []string{EnvDialect, EnvSender, EnvStdlib, EnvParallelism} {
		unsetEnv(t, key)
	}
	envFile := writeFile(t, t.TempDir(), ".env", "MOVEC_DIALECT=polkadot\nMOVEC_STDLIB=lib\n")

	cfg := Defaults
	require.NoError(t, ApplyEnv(&cfg, envFile))
	assert.Equal(t, "polkadot", cfg.Dialect)
	assert.Equal(t, "lib", cfg.StdlibDir)
	assert.Equal(t, Defaults.Sender, cfg.Sender)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"unknown dialect", func(c *Config) { c.Dialect = "solana" }, `invalid dialect "solana"`},
		{"bad policy", func(c *Config) { c.MalformedAddresses = "panic" }, "panic"},
		{"bad sender", func(c *Config) { c.Sender = "sender" }, `invalid sender "sender"`},
		{"negative parallelism", func(c *Config) { c.Parallelism = -1 }, "must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuildDialect(t *testing.T) {
	cfg := Defaults
	cfg.Dialect = "dfinance"
	d, err := cfg.BuildDialect()
	require.NoError(t, err)
	assert.Equal(t, dialects.Dfinance, d.Name())
}

func TestDumpLoadRoundTrip(t *testing.T) {
	cfg := Defaults
	cfg.Modules = []string{"deps"}
	data, err := Dump(&cfg)
	require.NoError(t, err)

	path := writeFile(t, t.TempDir(), "movec.toml", string(data))
	var loaded Config
	require.NoError(t, Load(path, &loaded))
	assert.Equal(t, cfg, loaded)
}
