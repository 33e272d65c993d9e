// Package config loads schemactl settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/reglet-dev/schemactl/netutil"
)

// Backends understood by the CLI.
const (
	BackendApicurio = "apicurio"
	BackendOCI      = "oci"
	BackendMemory   = "memory"
)

// Environment variables that override the file.
const (
	EnvRegistryURL = "SCHEMACTL_REGISTRY_URL"
	EnvBackend     = "SCHEMACTL_BACKEND"
	EnvGroup       = "SCHEMACTL_GROUP"
	EnvLogLevel    = "SCHEMACTL_LOG_LEVEL"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the schemactl configuration file.
type Config struct {
	Registry RegistryConfig `yaml:"registry,omitempty" jsonschema:"description=Schema registry connection"`
	Log      LogConfig      `yaml:"log,omitempty"`
	Lockfile string         `yaml:"lockfile,omitempty" jsonschema:"description=Baseline lock file written by pull and read by push"`
}

// RegistryConfig selects and configures the registry backend.
type RegistryConfig struct {
	Backend            string    `yaml:"backend,omitempty" jsonschema:"enum=apicurio,enum=oci,enum=memory"`
	URL                string    `yaml:"url,omitempty" jsonschema:"description=Apicurio Registry v3 API root"`
	Group              string    `yaml:"group,omitempty" jsonschema:"description=Group used for bare schema IDs"`
	Timeout            string    `yaml:"timeout,omitempty" jsonschema:"pattern=^[0-9]+(\\.[0-9]+)?(ns|us|ms|s|m|h)$"`
	MaxBodySize        int64     `yaml:"max_body_size,omitempty" jsonschema:"minimum=1"`
	SearchLimit        int       `yaml:"search_limit,omitempty" jsonschema:"minimum=1"`
	InsecureSkipVerify bool      `yaml:"insecure_skip_verify,omitempty"`
	OCI                OCIConfig `yaml:"oci,omitempty"`
}

// OCIConfig configures the OCI distribution backend.
type OCIConfig struct {
	Host      string `yaml:"host,omitempty" jsonschema:"description=Registry host such as ghcr.io"`
	Prefix    string `yaml:"prefix,omitempty" jsonschema:"description=Repository prefix in front of <group>/<artifact>"`
	PlainHTTP bool   `yaml:"plain_http,omitempty"`
}

// LogConfig configures the CLI logger.
type LogConfig struct {
	Level  string `yaml:"level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	Format string `yaml:"format,omitempty" jsonschema:"enum=text,enum=json"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Registry: RegistryConfig{
			Backend:     BackendApicurio,
			URL:         "http://localhost:8080/apis/registry/v3",
			Group:       "default",
			Timeout:     "30s",
			MaxBodySize: 10 * 1024 * 1024,
			SearchLimit: 1000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Lockfile: "schemactl.lock",
	}
}

// DefaultPath returns ~/.schemactl/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, ".schemactl", "config.yaml"), nil
}

// Load reads the file at path over the defaults, then applies environment
// overrides from getenv. A missing file is not an error; getenv may be nil.
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := readFile(path)
		if err != nil {
			return nil, err
		}
		if data != nil {
			if err := Check(data); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("decoding %s: %w", path, err)
			}
		}
	}

	if getenv != nil {
		cfg.applyEnv(getenv)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readFile(path string) ([]byte, error) {
	root, err := os.OpenRoot(filepath.Dir(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open directory %q: %w", filepath.Dir(path), err)
	}
	defer func() { _ = root.Close() }()

	data, err := root.ReadFile(filepath.Base(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}
	return data, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvRegistryURL); v != "" {
		c.Registry.URL = v
	}
	if v := getenv(EnvBackend); v != "" {
		c.Registry.Backend = strings.ToLower(v)
	}
	if v := getenv(EnvGroup); v != "" {
		c.Registry.Group = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
}

// Validate checks values the schema cannot express and values set by
// overrides after the file was checked.
func (c *Config) Validate() error {
	switch c.Registry.Backend {
	case BackendApicurio:
		if _, err := netutil.ParseBaseURL(c.Registry.URL); err != nil {
			return fmt.Errorf("%w: registry.url: %w", ErrInvalidConfig, err)
		}
	case BackendOCI:
		if c.Registry.OCI.Host == "" {
			return fmt.Errorf("%w: registry.oci.host is required for the oci backend", ErrInvalidConfig)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, c.Registry.Backend)
	}

	if _, err := c.TimeoutDuration(); err != nil {
		return fmt.Errorf("%w: registry.timeout: %w", ErrInvalidConfig, err)
	}
	if _, err := c.SlogLevel(); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalidConfig, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("%w: log.format must be text or json, got %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}

// TimeoutDuration parses Registry.Timeout.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.Registry.Timeout)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", d)
	}
	return d, nil
}

// SlogLevel parses Log.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, err
	}
	return level, nil
}
