// Package config handles the XDG configuration directory, file paths and settings.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// AppName is the application directory name.
	AppName = "gtodo"

	// TokenFile is the stored session credential filename.
	TokenFile = "token.json"

	// ConfigFile is the optional settings filename.
	ConfigFile = "config.yaml"

	// DefaultEndpoint is the GraphQL endpoint used when none is configured.
	DefaultEndpoint = "http://localhost:4000/graphql"

	// DefaultTimeout bounds a single remote call.
	DefaultTimeout = 10 * time.Second

	// DefaultHTTPAddr is the listen address of the serve command.
	DefaultHTTPAddr = "127.0.0.1:8080"

	envPrefix = "GTODO"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Endpoint is the remote GraphQL endpoint.
	Endpoint string

	// Timeout bounds a single remote call. Zero disables the bound.
	Timeout time.Duration

	// AuthScheme prefixes the credential in the Authorization header.
	// Empty sends the bare credential.
	AuthScheme string

	// HTTPAddr is the listen address of the HTTP front.
	HTTPAddr string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// New creates a Config for the default or specified config directory and
// loads settings from config.yaml and GTODO_* environment variables.
// If configDir is empty, uses XDG_CONFIG_HOME/gtodo or $HOME/.config/gtodo.
// A missing config.yaml is not an error.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir}
	if err := cfg.load(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) load() error {
	v := viper.New()
	v.SetConfigFile(c.ConfigPath())
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("api.endpoint", DefaultEndpoint)
	v.SetDefault("api.timeout", DefaultTimeout)
	v.SetDefault("api.auth_scheme", "")
	v.SetDefault("http.addr", DefaultHTTPAddr)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("invalid %s: %w", ConfigFile, err)
		}
	}

	c.Endpoint = strings.TrimSpace(v.GetString("api.endpoint"))
	if c.Endpoint == "" {
		return fmt.Errorf("api.endpoint must not be empty")
	}
	c.Timeout = v.GetDuration("api.timeout")
	if c.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}
	c.AuthScheme = strings.TrimSpace(v.GetString("api.auth_scheme"))
	c.HTTPAddr = v.GetString("http.addr")
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// TokenPath returns the path to the stored session credential.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// ConfigPath returns the path to the optional settings file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}
