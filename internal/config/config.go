// Package config assembles the generator configuration from, in increasing
// precedence: built-in defaults, tether.yaml, a .env file, TETHER_* environment
// variables and command-line flags.
package config

import (
	"bytes"
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/toyz/tether/internal/errors"
)

const (
	// DefaultFile is the configuration file read when none is named
	DefaultFile = "tether.yaml"
	// DefaultEnvFile is the dotenv file read when none is named
	DefaultEnvFile = ".env"
	// DefaultMaxRounds bounds the generation rounds of one run
	DefaultMaxRounds = 10

	EnvMaxRounds = "TETHER_MAX_ROUNDS"
	EnvModule    = "TETHER_MODULE"
)

// Config holds the configuration for a generation run
type Config struct {
	// Directories lists the package directories to scan; ./... patterns walk subdirectories
	Directories []string `yaml:"directories"`

	// Module is the module path generated imports are built from.
	// If empty, it is read from go.mod.
	Module string `yaml:"module"`

	// MaxRounds bounds how many generation rounds may run before giving up
	MaxRounds int `yaml:"max_rounds"`

	Verbose bool `yaml:"verbose"`
	Quiet   bool `yaml:"quiet"`
}

// Overrides carries command-line values. Zero values leave the loaded
// configuration untouched.
type Overrides struct {
	Directories []string
	Module      string
	MaxRounds   int
	Verbose     bool
	Quiet       bool
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Directories: []string{"./..."},
		MaxRounds:   DefaultMaxRounds,
	}
}

// Load reads the configuration file and the dotenv file on top of the
// defaults, then the environment. An empty path reads tether.yaml when it
// exists; a named file must exist. Missing dotenv files are ignored.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	required := path != ""
	if path == "" {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := cfg.decode(path, data); err != nil {
			return nil, err
		}
	case required || !stderrors.Is(err, fs.ErrNotExist):
		return nil, errors.WrapConfigurationError(path, "read", err)
	}

	if len(envFiles) == 0 {
		envFiles = []string{DefaultEnvFile}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.WrapConfigurationError(file, "load", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(path string, data []byte) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && err != io.EOF {
		return errors.WrapConfigurationError(path, "parse", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if module := strings.TrimSpace(os.Getenv(EnvModule)); module != "" {
		c.Module = module
	}
	if raw := strings.TrimSpace(os.Getenv(EnvMaxRounds)); raw != "" {
		rounds, err := strconv.Atoi(raw)
		if err != nil {
			return errors.Newf(errors.ConfigurationErrorCode, "%s must be an integer, got '%s'", EnvMaxRounds, raw).
				WithContext("variable", EnvMaxRounds)
		}
		c.MaxRounds = rounds
	}
	return nil
}

// Apply layers command-line values over the configuration
func (c *Config) Apply(o Overrides) {
	if len(o.Directories) > 0 {
		c.Directories = o.Directories
	}
	if o.Module != "" {
		c.Module = o.Module
	}
	if o.MaxRounds != 0 {
		c.MaxRounds = o.MaxRounds
	}
	if o.Verbose {
		c.Verbose, c.Quiet = true, false
	}
	if o.Quiet {
		c.Quiet, c.Verbose = true, false
	}
}

// Validate checks the final configuration
func (c *Config) Validate() error {
	if c.MaxRounds < 1 {
		return errors.Newf(errors.ConfigurationErrorCode, "max rounds must be at least 1, got %d", c.MaxRounds).
			WithSuggestion("Generation needs at least one round; the default is 10")
	}
	if len(c.Directories) == 0 {
		return errors.New(errors.ConfigurationErrorCode, "no directories to scan").
			WithSuggestion("Pass package directories, e.g. ./...")
	}
	for _, dir := range c.Directories {
		if strings.TrimSpace(dir) == "" {
			return errors.New(errors.ConfigurationErrorCode, "directory must not be empty")
		}
	}
	if c.Verbose && c.Quiet {
		return errors.New(errors.ConfigurationErrorCode, "verbose and quiet are mutually exclusive")
	}
	return nil
}
