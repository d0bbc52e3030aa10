package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	siteerrors "github.com/ksyq12/sitectl/internal/errors"
)

// Family identifies a web server family.
type Family string

// Supported server families.
const (
	FamilyNginx  Family = "nginx"
	FamilyApache Family = "apache"
)

// Families returns all supported server families.
func Families() []Family {
	return []Family{FamilyNginx, FamilyApache}
}

// ParseFamily converts a string to a Family.
func ParseFamily(s string) (Family, error) {
	switch f := Family(strings.ToLower(strings.TrimSpace(s))); f {
	case FamilyNginx, FamilyApache:
		return f, nil
	}
	return "", siteerrors.InvalidDefinition(fmt.Sprintf("unknown server %q (valid: nginx, apache)", s))
}

// Default locations.
const (
	DefaultPath    = "/etc/sitectl/config.yaml"
	DefaultEnvFile = "sitectl.env"

	envConfigPath = "SITECTL_CONFIG"
)

// ServerConfig describes how one server family lays out and checks its
// site files.
type ServerConfig struct {
	Available  string `yaml:"available" validate:"required"`
	Enabled    string `yaml:"enabled" validate:"required"`
	Staging    string `yaml:"staging,omitempty"`
	FileSuffix string `yaml:"file_suffix,omitempty"`

	// Enable/disable through commands keyed by file name. When EnableCmd is
	// empty, the enabled marker is a symlink in Enabled.
	EnableCmd  []string `yaml:"enable_cmd,omitempty" validate:"required_with=DisableCmd"`
	DisableCmd []string `yaml:"disable_cmd,omitempty" validate:"required_with=EnableCmd"`
	QueryCmd   []string `yaml:"query_cmd,omitempty"`

	ValidateCmd       []string `yaml:"validate_cmd" validate:"required,min=1"`
	ValidateMarker    string   `yaml:"validate_marker" validate:"required"`
	ReloadCmd         []string `yaml:"reload_cmd" validate:"required,min=1"`
	ReloadFallbackCmd []string `yaml:"reload_fallback_cmd,omitempty"`
	ProxyModulesCmd   []string `yaml:"proxy_modules_cmd,omitempty"`
	TLSModulesCmd     []string `yaml:"tls_modules_cmd,omitempty"`

	PHPSocket string `yaml:"php_socket,omitempty"`
	LogDir    string `yaml:"log_dir,omitempty"`
}

// FileName derives the site file name for a domain.
func (s *ServerConfig) FileName(domain string) string {
	return FileName(domain, s.FileSuffix)
}

// FileName derives a site file name: dots become underscores, then the
// family suffix is appended.
func FileName(domain, suffix string) string {
	return strings.ReplaceAll(domain, ".", "_") + suffix
}

// StagingDir returns the directory staged files are written to. It
// defaults to a hidden directory beside Available so that the final rename
// stays on one filesystem.
func (s *ServerConfig) StagingDir() string {
	if s.Staging != "" {
		return s.Staging
	}
	return filepath.Join(filepath.Dir(filepath.Clean(s.Available)), ".sitectl-staging")
}

// UsesCommands reports whether enable state is managed by commands.
func (s *ServerConfig) UsesCommands() bool {
	return len(s.EnableCmd) > 0
}

// TLSConfig configures certificate issuance.
type TLSConfig struct {
	Provider string `yaml:"provider" validate:"omitempty,oneof=certbot acme"`
	Email    string `yaml:"email,omitempty" validate:"omitempty,email"`
	Webroot  string `yaml:"webroot,omitempty"`
	CertDir  string `yaml:"cert_dir,omitempty"`
	Staging  bool   `yaml:"staging,omitempty"`
}

// Config represents the application configuration
type Config struct {
	DefaultServer  Family       `yaml:"default_server" validate:"oneof=nginx apache"`
	WWWRoot        string       `yaml:"www_root" validate:"required"`
	WebUser        string       `yaml:"web_user,omitempty"`
	CommandTimeout int          `yaml:"command_timeout" validate:"gte=0"`
	// Sudo runs external commands through sudo -n. Site files are still
	// written by sitectl itself, so without root the site directories must
	// be writable by the invoking user.
	Sudo           bool         `yaml:"sudo,omitempty"`
	Nginx          ServerConfig `yaml:"nginx"`
	Apache         ServerConfig `yaml:"apache"`
	TLS            TLSConfig    `yaml:"tls"`
}

// New creates a new Config with Debian-style defaults
func New() *Config {
	return &Config{
		DefaultServer:  FamilyNginx,
		WWWRoot:        "/var/www",
		WebUser:        "www-data",
		CommandTimeout: 120,
		Nginx: ServerConfig{
			Available:         "/etc/nginx/sites-available",
			Enabled:           "/etc/nginx/sites-enabled",
			ValidateCmd:       []string{"nginx", "-t"},
			ValidateMarker:    "successful",
			ReloadCmd:         []string{"systemctl", "reload", "nginx"},
			ReloadFallbackCmd: []string{"nginx", "-s", "reload"},
			PHPSocket:         "/var/run/php/php-fpm.sock",
		},
		Apache: ServerConfig{
			Available:         "/etc/apache2/sites-available",
			Enabled:           "/etc/apache2/sites-enabled",
			FileSuffix:        ".conf",
			EnableCmd:         []string{"a2ensite", "-q"},
			DisableCmd:        []string{"a2dissite", "-q"},
			QueryCmd:          []string{"a2query", "-s"},
			ValidateCmd:       []string{"apache2ctl", "configtest"},
			ValidateMarker:    "Syntax OK",
			ReloadCmd:         []string{"systemctl", "reload", "apache2"},
			ReloadFallbackCmd: []string{"apache2ctl", "graceful"},
			ProxyModulesCmd:   []string{"a2enmod", "-q", "proxy", "proxy_http", "headers"},
			TLSModulesCmd:     []string{"a2enmod", "-q", "ssl"},
			PHPSocket:         "/var/run/php/php-fpm.sock",
			LogDir:            "${APACHE_LOG_DIR}",
		},
		TLS: TLSConfig{
			Provider: "certbot",
			Webroot:  "/var/www/_letsencrypt",
			CertDir:  "/etc/sitectl/certs",
		},
	}
}

// Server returns the settings for a family.
func (c *Config) Server(f Family) (*ServerConfig, error) {
	switch f {
	case FamilyNginx:
		return &c.Nginx, nil
	case FamilyApache:
		return &c.Apache, nil
	}
	return nil, siteerrors.InvalidDefinition(fmt.Sprintf("unknown server %q", f))
}

// Timeout returns the per-command timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.CommandTimeout) * time.Second
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return siteerrors.Wrap(siteerrors.ErrCodeConfig, "invalid configuration", fmt.Errorf("%s", describe(err)))
	}
	return nil
}

// ConfigPath returns the config file path, honouring SITECTL_CONFIG.
func ConfigPath() string {
	if p := os.Getenv(envConfigPath); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads the config from ConfigPath.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config at path. A missing file yields the defaults.
// A sitectl.env file beside the config is loaded into the environment
// first, then SITECTL_* variables override file values.
func LoadFrom(path string) (*Config, error) {
	envFile := filepath.Join(filepath.Dir(path), DefaultEnvFile)
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, siteerrors.Wrap(siteerrors.ErrCodeConfig, "failed to load env file "+envFile, err)
		}
	}

	cfg := New()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, siteerrors.Wrap(siteerrors.ErrCodeConfig, "failed to read config", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, siteerrors.Wrap(siteerrors.ErrCodeConfig, "failed to parse config", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SITECTL_DEFAULT_SERVER"); v != "" {
		f, err := ParseFamily(v)
		if err != nil {
			return siteerrors.Wrap(siteerrors.ErrCodeConfig, "SITECTL_DEFAULT_SERVER", err)
		}
		c.DefaultServer = f
	}
	if v := os.Getenv("SITECTL_WWW_ROOT"); v != "" {
		c.WWWRoot = v
	}
	if v := os.Getenv("SITECTL_WEB_USER"); v != "" {
		c.WebUser = v
	}
	if v := os.Getenv("SITECTL_COMMAND_TIMEOUT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return siteerrors.Wrap(siteerrors.ErrCodeConfig, "SITECTL_COMMAND_TIMEOUT", err)
		}
		c.CommandTimeout = n
	}
	if v := os.Getenv("SITECTL_SUDO"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return siteerrors.Wrap(siteerrors.ErrCodeConfig, "SITECTL_SUDO", err)
		}
		c.Sudo = b
	}
	if v := os.Getenv("SITECTL_TLS_PROVIDER"); v != "" {
		c.TLS.Provider = v
	}
	if v := os.Getenv("SITECTL_TLS_EMAIL"); v != "" {
		c.TLS.Email = v
	}
	if v := os.Getenv("SITECTL_TLS_STAGING"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return siteerrors.Wrap(siteerrors.ErrCodeConfig, "SITECTL_TLS_STAGING", err)
		}
		c.TLS.Staging = b
	}
	return nil
}

// Save writes the config to path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
