package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ConfigFileName = "config.yml"
	AppDirName     = "vlink"
)

// Audit drivers
const (
	AuditDriverFile   = "file"
	AuditDriverSQLite = "sqlite"
	AuditDriverNone   = "none"
)

// DefaultAuditLogPath is where the file driver appends request lines
const DefaultAuditLogPath = "logs/requests.log"

// ConfigDir returns the standard config directory for vlink.
// Windows: %APPDATA%\vlink\
// macOS/Linux: ~/.config/vlink/
func ConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, AppDirName), nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppDirName), nil
}

// ConfigPath returns the path to the config file.
// e.g., ~/.config/vlink/config.yml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

type Config struct {
	// Server configuration for `vlink serve` and vlink-server
	Server ServerConfig `yaml:"server,omitempty"`

	// Requester controls outbound calls to extraction services
	Requester RequesterConfig `yaml:"requester,omitempty"`

	// Audit controls where inbound resolution requests are recorded
	Audit AuditConfig `yaml:"audit,omitempty"`

	// Instagram holds credentials for keyed Instagram services
	Instagram InstagramConfig `yaml:"instagram,omitempty"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	// Port is the HTTP listen port (default: 8080)
	Port int `yaml:"port,omitempty"`

	// APIKey for authentication (optional, if set /api/resolve requires X-API-Key header)
	APIKey string `yaml:"api_key,omitempty"`

	// RateLimit is the sustained number of resolve requests per second (0 disables limiting)
	RateLimit float64 `yaml:"rate_limit,omitempty"`

	// Burst is the limiter bucket size (default: RateLimit rounded up, at least 1)
	Burst int `yaml:"burst,omitempty"`

	// CORS enables permissive cross-origin headers (nil means enabled)
	CORS *bool `yaml:"cors,omitempty"`
}

// CORSEnabled reports whether CORS headers should be sent
func (s ServerConfig) CORSEnabled() bool {
	return s.CORS == nil || *s.CORS
}

// RequesterConfig holds outbound HTTP settings
type RequesterConfig struct {
	// Timeout in seconds for a single upstream call (default: 30)
	Timeout int `yaml:"timeout,omitempty"`

	// MaxRedirects followed per call (default: 10)
	MaxRedirects int `yaml:"max_redirects,omitempty"`

	// InsecureSkipVerify disables TLS certificate checks (nil means disabled checks)
	InsecureSkipVerify *bool `yaml:"insecure_skip_verify,omitempty"`

	// Proxy URL for outbound calls (e.g., http://127.0.0.1:7890)
	Proxy string `yaml:"proxy,omitempty"`
}

// SkipTLSVerify reports whether certificate validation is disabled
func (r RequesterConfig) SkipTLSVerify() bool {
	return r.InsecureSkipVerify == nil || *r.InsecureSkipVerify
}

// AuditConfig holds request log settings
type AuditConfig struct {
	// Driver is one of "file", "sqlite" or "none" (default: file)
	Driver string `yaml:"driver,omitempty"`

	// Path of the log file or SQLite database
	Path string `yaml:"path,omitempty"`
}

// InstagramConfig holds Instagram service credentials
type InstagramConfig struct {
	// RapidAPIKey enables the RapidAPI Instagram downloader method
	RapidAPIKey string `yaml:"rapidapi_key,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
		},
		Requester: RequesterConfig{
			Timeout:      30,
			MaxRedirects: 10,
		},
		Audit: AuditConfig{
			Driver: AuditDriverFile,
			Path:   DefaultAuditLogPath,
		},
	}
}

// applyDefaults fills zero values left by a partial config file
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Server.Port <= 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Requester.Timeout <= 0 {
		c.Requester.Timeout = def.Requester.Timeout
	}
	if c.Requester.MaxRedirects <= 0 {
		c.Requester.MaxRedirects = def.Requester.MaxRedirects
	}
	if c.Audit.Driver == "" {
		c.Audit.Driver = def.Audit.Driver
	}
	if c.Audit.Path == "" {
		c.Audit.Path = DefaultAuditPath(c.Audit.Driver)
	}
}

// DefaultAuditPath returns the default storage location for a driver
func DefaultAuditPath(driver string) string {
	if driver == AuditDriverSQLite {
		if dir, err := ConfigDir(); err == nil {
			return filepath.Join(dir, "requests.db")
		}
		return "requests.db"
	}
	return DefaultAuditLogPath
}

// Exists checks if config file exists
func Exists() bool {
	path, err := ConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Load reads the config from ~/.config/vlink/config.yml
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads the config from an explicit path
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.Audit.Path = expandPath(cfg.Audit.Path)

	return cfg, nil
}

// expandPath expands the tilde (~) in the path to the user's home directory.
// It handles both forward and backward slashes to ensure cross-platform compatibility
// for configuration files.
func expandPath(path string) string {
	if path == "" {
		return ""
	}

	if strings.HasPrefix(path, "~") {
		// Only expand if it's explicitly "~", "~/", or "~\"
		if len(path) == 1 || path[1] == '/' || path[1] == '\\' {
			home, err := os.UserHomeDir()
			if err == nil {
				subPath := path[1:]
				if len(subPath) > 0 && (subPath[0] == '/' || subPath[0] == '\\') {
					subPath = subPath[1:]
				}
				return filepath.Join(home, subPath)
			}
		}
	}

	return path
}

// Save writes the config to ~/.config/vlink/config.yml
func Save(cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	configPath, err := ConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	header := "# vlink configuration file\n# Run 'vlink init' to regenerate with defaults\n\n"
	content := header + string(data)

	return os.WriteFile(configPath, []byte(content), 0644)
}

// SavePath returns the path where config will be saved
func SavePath() string {
	if path, err := ConfigPath(); err == nil {
		return path
	}
	return "config.yml"
}

// Init creates a new config.yml with default values
func Init() error {
	if Exists() {
		path, _ := ConfigPath()
		return fmt.Errorf("%s already exists", path)
	}
	return Save(DefaultConfig())
}

// LoadOrDefault loads config if it exists, otherwise returns defaults.
// Environment overrides (including a .env file in the working directory) are applied last.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		cfg = DefaultConfig()
	}
	_ = godotenv.Load()
	ApplyEnv(cfg, os.Getenv)
	return cfg
}

// ApplyEnv overrides config values from VLINK_* environment variables
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if v := getenv("VLINK_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.Server.Port = port
		}
	}
	if v := getenv("VLINK_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := getenv("VLINK_RAPIDAPI_KEY"); v != "" {
		cfg.Instagram.RapidAPIKey = v
	}
	if v := getenv("VLINK_PROXY"); v != "" {
		cfg.Requester.Proxy = v
	}
	if v := getenv("VLINK_AUDIT_DRIVER"); v != "" {
		cfg.Audit.Driver = strings.ToLower(v)
		if getenv("VLINK_AUDIT_PATH") == "" {
			cfg.Audit.Path = DefaultAuditPath(cfg.Audit.Driver)
		}
	}
	if v := getenv("VLINK_AUDIT_PATH"); v != "" {
		cfg.Audit.Path = expandPath(v)
	}
}
