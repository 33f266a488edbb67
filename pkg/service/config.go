// Package service wires the session-tracking registry, its HTTP boundary,
// and the admin monitoring surface into a runnable service.
package service

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/txn2/sessiontrack/pkg/tracker"
)

// Config holds the complete service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Tracking TrackingConfig `yaml:"tracking"`
	Admin    AdminConfig    `yaml:"admin"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Address string    `yaml:"address"`
	TLS     TLSConfig `yaml:"tls"`
}

// TLSConfig configures TLS.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// TrackingConfig configures the registry's eviction policy and the HTTP
// boundary.
type TrackingConfig struct {
	MaxSessionAge time.Duration `yaml:"max_session_age"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	SessionHeader string        `yaml:"session_header"`
	Kind          tracker.Kind  `yaml:"kind"`
}

// AdminConfig configures the monitoring surface.
type AdminConfig struct {
	Enabled bool            `yaml:"enabled"`
	Auth    AdminAuthConfig `yaml:"auth"`
}

// AdminAuthConfig configures admin authentication. When both mechanisms
// are empty the admin surface is unauthenticated (development only).
type AdminAuthConfig struct {
	APIKeys []APIKeyDef `yaml:"api_keys"`
	JWT     JWTDef      `yaml:"jwt"`
}

// APIKeyDef defines an operator API key.
type APIKeyDef struct {
	Key   string   `yaml:"key"`
	Name  string   `yaml:"name"`
	Roles []string `yaml:"roles"`
}

// JWTDef configures JWT admin authentication.
type JWTDef struct {
	Enabled    bool   `yaml:"enabled"`
	Issuer     string `yaml:"issuer"`
	SigningKey string `yaml:"signing_key"` // HMAC key, usually ${VAR}-injected
}

// DefaultConfig returns a configuration with every default applied and
// the admin surface disabled.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// LoadConfig loads configuration from a file.
// The path is expected to come from command line arguments, controlled by
// the administrator.
func LoadConfig(path string) (*Config, error) {
	// #nosec G304 -- path is from CLI args, controlled by admin
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	data = []byte(expandEnvVars(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// expandEnvVars expands ${VAR} patterns in the string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// applyDefaults applies default values to the config.
func applyDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Tracking.MaxSessionAge == 0 {
		cfg.Tracking.MaxSessionAge = tracker.DefaultMaxSessionAge
	}
	if cfg.Tracking.SweepInterval == 0 {
		cfg.Tracking.SweepInterval = tracker.DefaultSweepInterval
	}
	if cfg.Tracking.SessionHeader == "" {
		cfg.Tracking.SessionHeader = tracker.DefaultSessionHeader
	}
	if cfg.Tracking.Kind == "" {
		cfg.Tracking.Kind = tracker.KindHTTP
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.TLS.Enabled {
		if c.Server.TLS.CertFile == "" {
			errs = append(errs, "server.tls.cert_file is required when TLS is enabled")
		}
		if c.Server.TLS.KeyFile == "" {
			errs = append(errs, "server.tls.key_file is required when TLS is enabled")
		}
	}

	switch c.Tracking.Kind {
	case tracker.KindHTTP, tracker.KindREST:
	default:
		errs = append(errs, "tracking.kind must be http or rest")
	}

	if c.Tracking.SweepInterval < 0 || c.Tracking.MaxSessionAge < 0 {
		errs = append(errs, "tracking durations must not be negative")
	}

	if c.Admin.Auth.JWT.Enabled {
		if c.Admin.Auth.JWT.Issuer == "" {
			errs = append(errs, "admin.auth.jwt.issuer is required when JWT is enabled")
		}
		if c.Admin.Auth.JWT.SigningKey == "" {
			errs = append(errs, "admin.auth.jwt.signing_key is required when JWT is enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
