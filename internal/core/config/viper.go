package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/solatis/sttable/internal/grid"
	"github.com/solatis/sttable/internal/types"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults matching DefaultConfig
	d := DefaultConfig()
	v.SetDefault("db.url", d.DatabaseURL)
	v.SetDefault("table.ps", d.Table.PS)
	v.SetDefault("table.multi_sort", false)
	v.SetDefault("table.multi_sort_key", d.Table.MultiSortKey)
	v.SetDefault("table.multi_sort_separator", "")
	v.SetDefault("table.req.rename.pi", grid.DefaultPIKey)
	v.SetDefault("table.req.rename.ps", grid.DefaultPSKey)
	v.SetDefault("table.req.rename.sort", grid.DefaultSortKey)
	v.SetDefault("table.res.rename.total", grid.DefaultTotalPath)
	v.SetDefault("table.res.rename.list", grid.DefaultListPath)
	v.SetDefault("table.page.show", "auto")
	v.SetDefault("table.page.total", "")
	v.SetDefault("table.page.front", "auto")
	v.SetDefault("table.row_key", "")
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.max_page_size", d.Server.MaxPageSize)
	v.SetDefault("http.rate_limit", 0)
	v.SetDefault("http.burst", d.HTTP.Burst)
	v.SetDefault("http.timeout", "15s")

	// Bind environment variables with ST_ prefix
	v.SetEnvPrefix("ST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Tokens must be environment-only
		if err := validateNoSecretsInConfig(v); err != nil {
			return nil, err
		}
	}

	show, err := parseShow(v.GetString("table.page.show"))
	if err != nil {
		return nil, err
	}
	mode, err := parseMode(v.GetString("table.page.front"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL: v.GetString("db.url"),
		Table: TableConfig{
			PS:                 v.GetInt("table.ps"),
			MultiSort:          v.GetBool("table.multi_sort"),
			MultiSortKey:       v.GetString("table.multi_sort_key"),
			MultiSortSeparator: v.GetString("table.multi_sort_separator"),
			ReqRename: grid.ReqRename{
				PI:   v.GetString("table.req.rename.pi"),
				PS:   v.GetString("table.req.rename.ps"),
				Sort: v.GetString("table.req.rename.sort"),
			},
			ResRename: grid.ResRename{
				Total: v.GetString("table.res.rename.total"),
				List:  v.GetString("table.res.rename.list"),
			},
			PageShow:  show,
			PageTotal: totalTemplate(v.GetString("table.page.total")),
			PageMode:  mode,
			RowKey:    v.GetString("table.row_key"),
		},
		Server: ServerConfig{
			Host:           v.GetString("server.host"),
			Port:           v.GetInt("server.port"),
			RequestTimeout: v.GetDuration("server.request_timeout"),
			MaxPageSize:    v.GetInt("server.max_page_size"),
			Token:          v.GetString("server.token"),
		},
		HTTP: HTTPConfig{
			RateLimit: v.GetFloat64("http.rate_limit"),
			Burst:     v.GetInt("http.burst"),
			Timeout:   v.GetDuration("http.timeout"),
			Token:     v.GetString("http.token"),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks port range and positive sizes and timeouts.
func validateConfig(cfg *Config) error {
	if cfg.Table.PS <= 0 {
		return fmt.Errorf("table.ps must be positive, got %d", cfg.Table.PS)
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Server.Port)
	}
	if cfg.Server.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", cfg.Server.RequestTimeout)
	}
	if cfg.Server.MaxPageSize <= 0 {
		return fmt.Errorf("max_page_size must be positive, got %d", cfg.Server.MaxPageSize)
	}
	if cfg.HTTP.RateLimit < 0 {
		return fmt.Errorf("http.rate_limit must not be negative, got %v", cfg.HTTP.RateLimit)
	}
	if cfg.HTTP.RateLimit > 0 && cfg.HTTP.Burst <= 0 {
		return fmt.Errorf("http.burst must be positive with a rate limit, got %d", cfg.HTTP.Burst)
	}
	if cfg.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be positive, got %v", cfg.HTTP.Timeout)
	}
	return nil
}

// validateNoSecretsInConfig enforces environment-only tokens (12-factor principle).
func validateNoSecretsInConfig(v *viper.Viper) error {
	if v.InConfig("http.token") || v.InConfig("token") {
		return fmt.Errorf("HTTP tokens not allowed in config files (use ST_HTTP_TOKEN environment variable)")
	}
	if v.InConfig("server.token") {
		return fmt.Errorf("server tokens not allowed in config files (use ST_SERVER_TOKEN environment variable)")
	}
	return nil
}

func parseShow(s string) (grid.ShowMode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return grid.ShowAuto, nil
	case "always", "true":
		return grid.ShowAlways, nil
	case "never", "false":
		return grid.ShowNever, nil
	default:
		return "", fmt.Errorf("table.page.show must be auto, always or never, got %q", s)
	}
}

func parseMode(s string) (grid.Mode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return grid.ModeAuto, nil
	case "front":
		return grid.ModeFront, nil
	case "back":
		return grid.ModeBack, nil
	default:
		return "", fmt.Errorf("table.page.front must be auto, front or back, got %q", s)
	}
}

// totalTemplate maps "true" to the default template and "false" to none.
func totalTemplate(s string) string {
	switch strings.ToLower(s) {
	case "true":
		return types.DefaultTotalTemplate
	case "false":
		return ""
	default:
		return s
	}
}
