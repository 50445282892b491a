// Package config provides configuration management for akipsinv.
//
// This package handles loading configuration from multiple sources:
//   - YAML configuration files (akips.yaml)
//   - Environment variables (AKIPS_* for connection and filter settings)
//   - .env files
//   - Default values
//
// # Configuration Sources Priority
//
// Configuration is loaded in the following order (later sources override earlier ones):
//  1. Default values (hardcoded)
//  2. Configuration files (./akips.yaml, ~/.akipsinv/akips.yaml, /etc/akipsinv/akips.yaml)
//  3. .env files
//  4. Environment variables
//
// # Usage Example
//
//	cfg, err := config.Load("akips.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("AKiPS server: %s\n", cfg.Akips.Host)
//
// # Environment Variables
//
// The connection and filter settings honor the same environment variables the
// AKiPS inventory source has always used:
//   - AKIPS_HOST, AKIPS_USERNAME, AKIPS_PASSWORD, AKIPS_PROXY
//   - AKIPS_RESTRICT_GROUPS, AKIPS_LIMIT_GROUPS, AKIPS_IGNORE_GROUPS
//   - AKIPS_EXCLUDE_GROUPS, AKIPS_EXCLUDE_HOSTS, AKIPS_EXCLUDE_NETWORKS
//
// All other keys can be overridden with the AKIPSINV_ prefix and underscores
// for nested keys, e.g. AKIPSINV_SERVER_PORT=8095 or AKIPSINV_CACHE_ENABLED=true.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the root configuration structure for akipsinv.
// It is immutable after Load and passed explicitly into each component.
type Config struct {
	// Akips contains connection settings for the AKiPS server
	Akips AkipsConfig `mapstructure:"akips"`

	// Filters contains the regex filters applied during inventory resolution
	Filters FiltersConfig `mapstructure:"filters"`

	// Hostvars contains the ordered variable rules for groups and hosts
	Hostvars HostvarsConfig `mapstructure:"hostvars"`

	// Cache contains snapshot cache settings
	Cache CacheConfig `mapstructure:"cache"`

	// Server contains HTTP server configuration for serve mode
	Server ServerConfig `mapstructure:"server"`

	// Logging contains logging settings
	Logging LoggingConfig `mapstructure:"logging"`

	// Security contains serve-mode security and rate limiting settings
	Security SecurityConfig `mapstructure:"security"`

	// source is the configuration file the values were read from, if any
	source string
}

// AkipsConfig contains AKiPS server connection settings.
type AkipsConfig struct {
	// Host is the AKiPS server base URL (e.g. https://akips.example.com)
	Host string `mapstructure:"host" validate:"omitempty,url"`

	// Username for the AKiPS api-db endpoint
	Username string `mapstructure:"username"`

	// Password for the AKiPS api-db endpoint
	Password string `mapstructure:"password"`

	// Proxy is an optional proxy URL for requests to AKiPS
	Proxy string `mapstructure:"proxy" validate:"omitempty,url"`

	// Timeout is the per-request timeout
	Timeout time.Duration `mapstructure:"timeout"`
}

// FiltersConfig contains the six optional regex filters. An empty pattern
// disables that filter entirely.
type FiltersConfig struct {
	// RestrictGroups is an allow-list matched against group names before
	// membership is fetched (unanchored)
	RestrictGroups string `mapstructure:"restrict_groups"`

	// LimitGroups is an allow-list matched against a host's accumulated
	// group memberships after all groups are processed (anchored at the
	// start of the group name)
	LimitGroups string `mapstructure:"limit_groups"`

	// IgnoreGroups is a deny-list matched against group names before
	// membership is fetched (unanchored)
	IgnoreGroups string `mapstructure:"ignore_groups"`

	// ExcludeGroups is a deny-list matched against a host's accumulated
	// group memberships after all groups are processed (unanchored)
	ExcludeGroups string `mapstructure:"exclude_groups"`

	// ExcludeHosts is matched against host names (unanchored)
	ExcludeHosts string `mapstructure:"exclude_hosts"`

	// ExcludeNetworks is matched against host IP addresses (unanchored)
	ExcludeNetworks string `mapstructure:"exclude_networks"`
}

// VarRule pairs a regex pattern with a set of variables to apply when the
// pattern matches a group or host name. Rules are an ordered list: later
// matching rules overwrite earlier ones on key collision.
type VarRule struct {
	// Pattern is matched case-insensitively and unanchored
	Pattern string `mapstructure:"pattern"`

	// Vars are the variables applied on a match
	Vars map[string]any `mapstructure:"vars"`
}

// HostvarsConfig contains the variable rules applied during resolution.
type HostvarsConfig struct {
	// Groups rules are matched against group names; their variables
	// accumulate across every group a host belongs to
	Groups []VarRule `mapstructure:"groups"`

	// Hosts rules are matched against host names and always override
	// group-sourced variables
	Hosts []VarRule `mapstructure:"hosts"`
}

// CacheConfig contains snapshot cache settings.
type CacheConfig struct {
	// Enabled turns the snapshot cache on
	Enabled bool `mapstructure:"enabled"`

	// Backend selects the cache store (file or sqlite)
	Backend string `mapstructure:"backend" validate:"oneof=file sqlite"`

	// Dir is the directory for the file backend
	Dir string `mapstructure:"dir"`

	// Path is the database file for the sqlite backend
	Path string `mapstructure:"path"`
}

// ServerConfig contains HTTP server configuration for serve mode.
type ServerConfig struct {
	// Host is the server bind address (default: 0.0.0.0)
	Host string `mapstructure:"host"`

	// Port is the server listen port (default: 8095)
	Port int `mapstructure:"port" validate:"min=1,max=65535"`

	// ReadTimeout is the maximum duration for reading requests
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// WriteTimeout is the maximum duration for writing responses
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// ShutdownTimeout is the maximum duration for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// Debug enables debug logging
	Debug bool `mapstructure:"debug"`

	// TLSEnabled enables HTTPS
	TLSEnabled bool `mapstructure:"tls_enabled"`

	// TLSCert is the path to the TLS certificate file
	TLSCert string `mapstructure:"tls_cert"`

	// TLSKey is the path to the TLS private key file
	TLSKey string `mapstructure:"tls_key"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error)
	Level string `mapstructure:"level"`

	// Format is the log format (json, text)
	Format string `mapstructure:"format"`
}

// SecurityConfig contains serve-mode security settings.
type SecurityConfig struct {
	// RateLimit is the maximum requests per second per client
	RateLimit int `mapstructure:"rate_limit"`

	// AllowedOrigins are the CORS allowed origins
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// AuthEnabled enables JWT bearer authentication (default: false)
	AuthEnabled bool `mapstructure:"auth_enabled"`

	// JWTSecret is the secret key for signing JWT tokens
	JWTSecret string `mapstructure:"jwt_secret"`

	// JWTExpiration is the JWT token expiration duration (default: 24h)
	JWTExpiration time.Duration `mapstructure:"jwt_expiration"`
}

// Load reads configuration from a file and environment variables.
// If cfgFile is empty, it searches for akips.yaml in standard locations.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables
//  2. .env file
//  3. Configuration file
//  4. Default values
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("akips")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./inventory")
		v.AddConfigPath("$HOME/.akipsinv")
		v.AddConfigPath("/etc/akipsinv")
	}

	source := ""
	if err := v.ReadInConfig(); err != nil {
		// An explicitly specified file that does not exist falls back to
		// defaults; any other read error is fatal. For auto-discovery only
		// a missing file is tolerated.
		if cfgFile != "" {
			if !isFileNotFoundError(err) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		} else {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	} else {
		// captured here because the .env merge below repoints viper's
		// notion of the config file
		source = v.ConfigFileUsed()
	}

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.MergeInConfig() // Ignore error if .env file doesn't exist

	bindLegacyEnv(v)

	v.SetEnvPrefix("AKIPSINV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.source = source

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// bindLegacyEnv binds the environment variable names the AKiPS inventory
// source has always honored, independent of the AKIPSINV_ prefix.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("akips.host", "AKIPS_HOST")         //nolint:errcheck
	_ = v.BindEnv("akips.username", "AKIPS_USERNAME") //nolint:errcheck
	_ = v.BindEnv("akips.password", "AKIPS_PASSWORD") //nolint:errcheck
	_ = v.BindEnv("akips.proxy", "AKIPS_PROXY")       //nolint:errcheck

	_ = v.BindEnv("filters.restrict_groups", "AKIPS_RESTRICT_GROUPS")   //nolint:errcheck
	_ = v.BindEnv("filters.limit_groups", "AKIPS_LIMIT_GROUPS")         //nolint:errcheck
	_ = v.BindEnv("filters.ignore_groups", "AKIPS_IGNORE_GROUPS")       //nolint:errcheck
	_ = v.BindEnv("filters.exclude_groups", "AKIPS_EXCLUDE_GROUPS")     //nolint:errcheck
	_ = v.BindEnv("filters.exclude_hosts", "AKIPS_EXCLUDE_HOSTS")       //nolint:errcheck
	_ = v.BindEnv("filters.exclude_networks", "AKIPS_EXCLUDE_NETWORKS") //nolint:errcheck
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("akips.host", "")
	v.SetDefault("akips.username", "")
	v.SetDefault("akips.password", "")
	v.SetDefault("akips.proxy", "")
	v.SetDefault("akips.timeout", "30s")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.backend", "file")
	v.SetDefault("cache.dir", defaultCacheDir())
	v.SetDefault("cache.path", "")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8095)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.debug", false)
	v.SetDefault("server.tls_enabled", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("security.rate_limit", 100)
	v.SetDefault("security.allowed_origins", []string{"*"})
	v.SetDefault("security.auth_enabled", false)
	v.SetDefault("security.jwt_secret", "change-me-in-production")
	v.SetDefault("security.jwt_expiration", "24h")
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".akipsinv-cache"
	}
	return filepath.Join(home, ".akipsinv", "cache")
}

var structValidator = validator.New()

// validate checks structural constraints and compiles every regex option so
// that a bad pattern is rejected before any network activity.
func validate(cfg *Config) error {
	if err := structValidator.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return fmt.Errorf("field %s failed %q validation", f.Namespace(), f.Tag())
		}
		return err
	}

	patterns := map[string]string{
		"filters.restrict_groups":  cfg.Filters.RestrictGroups,
		"filters.limit_groups":     cfg.Filters.LimitGroups,
		"filters.ignore_groups":    cfg.Filters.IgnoreGroups,
		"filters.exclude_groups":   cfg.Filters.ExcludeGroups,
		"filters.exclude_hosts":    cfg.Filters.ExcludeHosts,
		"filters.exclude_networks": cfg.Filters.ExcludeNetworks,
	}
	for name, pat := range patterns {
		if pat == "" {
			continue
		}
		if _, err := regexp.Compile(pat); err != nil {
			return fmt.Errorf("invalid regex for %s: %w", name, err)
		}
	}

	for i, rule := range cfg.Hostvars.Groups {
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			return fmt.Errorf("invalid regex for hostvars.groups[%d]: %w", i, err)
		}
	}
	for i, rule := range cfg.Hostvars.Hosts {
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			return fmt.Errorf("invalid regex for hostvars.hosts[%d]: %w", i, err)
		}
	}

	if cfg.Cache.Backend == "sqlite" && cfg.Cache.Path == "" {
		return fmt.Errorf("cache.path is required for the sqlite cache backend")
	}

	return nil
}

// ValidateConnection ensures the settings needed to reach the AKiPS server
// are present. It is checked by every command that talks to AKiPS, before the
// first request is issued. Username is optional; some AKiPS deployments
// authenticate the api-db endpoint with the password alone.
func (c *Config) ValidateConnection() error {
	if c.Akips.Host == "" {
		return errors.New("akips.host is required (or set AKIPS_HOST)")
	}
	if c.Akips.Password == "" {
		return errors.New("akips.password is required (or set AKIPS_PASSWORD)")
	}
	return nil
}

// Source returns the configuration file the values were loaded from, or an
// empty string when only defaults and environment variables were used.
func (c *Config) Source() string {
	return c.source
}

// isFileNotFoundError checks if an error is a file not found error.
func isFileNotFoundError(err error) bool {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return errors.Is(pathErr, os.ErrNotExist)
	}
	return false
}
