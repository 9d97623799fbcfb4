package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/guiyumin/vlink/internal/core/auditlog"
	"github.com/guiyumin/vlink/internal/core/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage vlink configuration",
	Long:  "View and modify vlink settings",
}

// vlink config show - show current config
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadOrDefault()

		fmt.Println("Current configuration:")
		fmt.Printf("  Config:    %s\n", config.SavePath())
		for _, key := range configKeys {
			value, _ := getConfigValue(cfg, key)
			if isSecretKey(key) && value != "" {
				value = strings.Repeat("*", len(value))
			}
			fmt.Printf("  %-28s %s\n", key, value)
		}
	},
}

// vlink config path - show config file path
var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show config file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(config.SavePath())
	},
}

const supportedKeysHelp = `Supported keys:
  server.port                  Server listen port
  server.api_key               Require X-API-Key on /api/resolve
  server.rate_limit            Resolve requests per second (0 disables)
  server.burst                 Rate limiter burst size
  server.cors                  Send CORS headers (true/false)
  requester.timeout            Upstream call timeout in seconds
  requester.max_redirects      Redirects followed per upstream call
  requester.insecure_skip_verify  Skip TLS certificate checks (true/false)
  requester.proxy              Proxy URL for upstream calls
  audit.driver                 file, sqlite or none
  audit.path                   Log file or database path
  instagram.rapidapi_key       RapidAPI key for the keyed Instagram service`

// vlink config set KEY VALUE - set a config value
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in config.yml.

` + supportedKeysHelp + `

Examples:
  vlink config set server.port 9000
  vlink config set audit.driver sqlite
  vlink config set instagram.rapidapi_key YOUR_KEY`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		key := args[0]
		value := args[1]

		cfg := loadForEdit()

		if err := setConfigValue(cfg, key, value); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if err := config.Save(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save config: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Set %s = %s\n", key, value)
	},
}

// vlink config get KEY - get a config value
var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a configuration value from config.yml.

Examples:
  vlink config get server.port
  vlink config get audit.driver`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		key := args[0]
		cfg := config.LoadOrDefault()

		value, err := getConfigValue(cfg, key)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(value)
	},
}

// vlink config unset KEY - reset a config value to its default
var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Unset a configuration value",
	Long: `Unset a configuration value in config.yml, restoring its default.

` + supportedKeysHelp + `

Examples:
  vlink config unset server.api_key`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		key := args[0]

		cfg := loadForEdit()

		if err := unsetConfigValue(cfg, key); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if err := config.Save(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save config: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Unset %s\n", key)
	},
}

var configKeys = []string{
	"server.port",
	"server.api_key",
	"server.rate_limit",
	"server.burst",
	"server.cors",
	"requester.timeout",
	"requester.max_redirects",
	"requester.insecure_skip_verify",
	"requester.proxy",
	"audit.driver",
	"audit.path",
	"instagram.rapidapi_key",
}

func isSecretKey(key string) bool {
	return key == "server.api_key" || key == "instagram.rapidapi_key"
}

// loadForEdit reads the config file without environment overrides so they are never persisted
func loadForEdit() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

func parsePositiveInt(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid number: %s", value)
	}
	return n, nil
}

// setConfigValue sets a config value by key
func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "server.port":
		port, err := parsePositiveInt(value)
		if err != nil || port > 65535 {
			return fmt.Errorf("invalid port number: %s", value)
		}
		cfg.Server.Port = port
	case "server.api_key":
		cfg.Server.APIKey = value
	case "server.rate_limit":
		rps, err := strconv.ParseFloat(value, 64)
		if err != nil || rps < 0 {
			return fmt.Errorf("invalid rate: %s", value)
		}
		cfg.Server.RateLimit = rps
	case "server.burst":
		n, err := parsePositiveInt(value)
		if err != nil {
			return err
		}
		cfg.Server.Burst = n
	case "server.cors":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %s", value)
		}
		cfg.Server.CORS = &b
	case "requester.timeout":
		n, err := parsePositiveInt(value)
		if err != nil {
			return err
		}
		cfg.Requester.Timeout = n
	case "requester.max_redirects":
		n, err := parsePositiveInt(value)
		if err != nil {
			return err
		}
		cfg.Requester.MaxRedirects = n
	case "requester.insecure_skip_verify":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %s", value)
		}
		cfg.Requester.InsecureSkipVerify = &b
	case "requester.proxy":
		cfg.Requester.Proxy = value
	case "audit.driver":
		driver := strings.ToLower(value)
		switch driver {
		case auditlog.DriverFile, auditlog.DriverSQLite, auditlog.DriverNone:
		default:
			return fmt.Errorf("invalid audit driver: %s (valid: file, sqlite, none)", value)
		}
		if driver != cfg.Audit.Driver {
			cfg.Audit.Path = config.DefaultAuditPath(driver)
		}
		cfg.Audit.Driver = driver
	case "audit.path":
		cfg.Audit.Path = value
	case "instagram.rapidapi_key":
		cfg.Instagram.RapidAPIKey = value
	default:
		return fmt.Errorf("unknown config key: %s\nRun 'vlink config set --help' to see supported keys", key)
	}
	return nil
}

// getConfigValue gets a config value by key
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch key {
	case "server.port":
		return strconv.Itoa(cfg.Server.Port), nil
	case "server.api_key":
		return cfg.Server.APIKey, nil
	case "server.rate_limit":
		return strconv.FormatFloat(cfg.Server.RateLimit, 'f', -1, 64), nil
	case "server.burst":
		return strconv.Itoa(cfg.Server.Burst), nil
	case "server.cors":
		return strconv.FormatBool(cfg.Server.CORSEnabled()), nil
	case "requester.timeout":
		return strconv.Itoa(cfg.Requester.Timeout), nil
	case "requester.max_redirects":
		return strconv.Itoa(cfg.Requester.MaxRedirects), nil
	case "requester.insecure_skip_verify":
		return strconv.FormatBool(cfg.Requester.SkipTLSVerify()), nil
	case "requester.proxy":
		return cfg.Requester.Proxy, nil
	case "audit.driver":
		return cfg.Audit.Driver, nil
	case "audit.path":
		return cfg.Audit.Path, nil
	case "instagram.rapidapi_key":
		return cfg.Instagram.RapidAPIKey, nil
	default:
		return "", fmt.Errorf("unknown config key: %s\nRun 'vlink config get --help' to see supported keys", key)
	}
}

// unsetConfigValue restores a key's default
func unsetConfigValue(cfg *config.Config, key string) error {
	def := config.DefaultConfig()
	switch key {
	case "server.port":
		cfg.Server.Port = def.Server.Port
	case "server.api_key":
		cfg.Server.APIKey = ""
	case "server.rate_limit":
		cfg.Server.RateLimit = 0
	case "server.burst":
		cfg.Server.Burst = 0
	case "server.cors":
		cfg.Server.CORS = nil
	case "requester.timeout":
		cfg.Requester.Timeout = def.Requester.Timeout
	case "requester.max_redirects":
		cfg.Requester.MaxRedirects = def.Requester.MaxRedirects
	case "requester.insecure_skip_verify":
		cfg.Requester.InsecureSkipVerify = nil
	case "requester.proxy":
		cfg.Requester.Proxy = ""
	case "audit.driver":
		cfg.Audit.Driver = def.Audit.Driver
		cfg.Audit.Path = def.Audit.Path
	case "audit.path":
		cfg.Audit.Path = config.DefaultAuditPath(cfg.Audit.Driver)
	case "instagram.rapidapi_key":
		cfg.Instagram.RapidAPIKey = ""
	default:
		return fmt.Errorf("unknown config key: %s\nRun 'vlink config unset --help' to see supported keys", key)
	}
	return nil
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configUnsetCmd)

	rootCmd.AddCommand(configCmd)
}
