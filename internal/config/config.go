// Package config loads movec settings from a TOML file, the environment
// and a .env file.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/naoina/toml"

	"github.com/dfinance/move-tools/internal/dialects"
)

const (
	EnvDialect     = "MOVEC_DIALECT"
	EnvSender      = "MOVEC_SENDER"
	EnvStdlib      = "MOVEC_STDLIB"
	EnvParallelism = "MOVEC_PARALLELISM"
)

// Config is the settings shared by the CLI and the language server.
type Config struct {
	Dialect   string
	Sender    string
	StdlibDir string `toml:",omitempty"`
	// Modules are dependency files or directories.
	Modules []string `toml:",omitempty"`
	// MalformedAddresses is "ignore" or "report".
	MalformedAddresses string
	Parallelism        int
}

// Defaults are used for any setting no source provides.
var Defaults = Config{
	Dialect:            string(dialects.Libra),
	Sender:             "0x1",
	MalformedAddresses: string(dialects.Ignore),
	Parallelism:        1,
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// Load decodes the TOML file at path into cfg.
func Load(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(path + ", " + err.Error())
	}
	return err
}

// ApplyEnv loads the given .env files (".env" when none are given; missing
// files are ignored) and then lets MOVEC_* variables override cfg.
// Variables already set in the process win over .env entries.
func ApplyEnv(cfg *Config, envFiles ...string) error {
	_ = godotenv.Load(envFiles...)

	if v := os.Getenv(EnvDialect); v != "" {
		cfg.Dialect = v
	}
	if v := os.Getenv(EnvSender); v != "" {
		cfg.Sender = v
	}
	if v := os.Getenv(EnvStdlib); v != "" {
		cfg.StdlibDir = v
	}
	if v := os.Getenv(EnvParallelism); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvParallelism, err)
		}
		cfg.Parallelism = n
	}
	return nil
}

// BuildDialect builds the configured dialect with its malformed address
// policy.
func (c *Config) BuildDialect() (dialects.Dialect, error) {
	policy, err := dialects.ParseMalformedPolicy(c.MalformedAddresses)
	if err != nil {
		return nil, err
	}
	return dialects.Get(c.Dialect, dialects.WithMalformedPolicy(policy))
}

// Validate checks the dialect name, the policy and that the sender is an
// address of that dialect.
func (c *Config) Validate() error {
	d, err := c.BuildDialect()
	if err != nil {
		return err
	}
	if _, err := d.NormalizeAccountAddress(c.Sender); err != nil {
		return fmt.Errorf("invalid sender %q: %w", c.Sender, err)
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("parallelism must not be negative, got %d", c.Parallelism)
	}
	return nil
}

// Dump renders cfg as TOML.
func Dump(cfg *Config) ([]byte, error) {
	return tomlSettings.Marshal(cfg)
}
