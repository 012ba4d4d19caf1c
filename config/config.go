package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Provider  ProviderConfig  `mapstructure:"provider"`
	Refresh   RefreshConfig   `mapstructure:"refresh"`
	Symbols   SymbolsConfig   `mapstructure:"symbols"`
	History   HistoryConfig   `mapstructure:"history"`
	Display   DisplayConfig   `mapstructure:"display"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Log       LogConfig       `mapstructure:"log"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
}

type ProviderConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

type RefreshConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type SymbolsConfig struct {
	Popular  []string      `mapstructure:"popular"`
	Examples []string      `mapstructure:"examples"`
	Indices  []IndexConfig `mapstructure:"indices"`
}

// IndexConfig names one market index shown in the market summary.
type IndexConfig struct {
	Symbol string `mapstructure:"symbol"`
	Name   string `mapstructure:"name"`
}

type HistoryConfig struct {
	DefaultPeriod string `mapstructure:"default_period"`
	TailRows      int    `mapstructure:"tail_rows"`
}

type DisplayConfig struct {
	Markdown bool `mapstructure:"markdown"` // render through glamour instead of printing raw markdown
	Width    int  `mapstructure:"width"`
}

type DashboardConfig struct {
	Addr string `mapstructure:"addr"`
}

// Options defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
}

var validPeriods = map[string]bool{
	"1d": true, "5d": true, "1mo": true, "3mo": true, "6mo": true,
	"1y": true, "2y": true, "5y": true, "max": true,
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("provider.timeout", 10*time.Second)
	v.SetDefault("provider.user_agent", "")

	v.SetDefault("refresh.interval", 30*time.Second)

	v.SetDefault("symbols.popular", []string{"AAPL", "GOOGL", "MSFT", "AMZN", "TSLA", "META", "NVDA", "NFLX"})
	v.SetDefault("symbols.examples", []string{"AAPL", "GOOGL", "MSFT"})
	v.SetDefault("symbols.indices", []map[string]string{
		{"symbol": "^GSPC", "name": "S&P 500"},
		{"symbol": "^DJI", "name": "Dow Jones"},
		{"symbol": "^IXIC", "name": "NASDAQ"},
	})

	v.SetDefault("history.default_period", "1mo")
	v.SetDefault("history.tail_rows", 10)

	v.SetDefault("display.markdown", true)
	v.SetDefault("display.width", 100)

	v.SetDefault("dashboard.addr", ":8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.environment", "dev")

	v.SetDefault("postgres.enabled", false)
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.dbname", "stocktracker")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.timezone", "UTC")
	v.SetDefault("postgres.ssm_prefix", "/stocktracker/db")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime", time.Hour)
	v.SetDefault("postgres.retention", time.Duration(0))
}

// Load loads application configuration using Viper.
// It reads config.yaml (from path when given, else from the usual config directories)
// and overrides it with environment variables. A missing file leaves the defaults in place.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config") // config.yaml
		v.SetConfigType("yaml")
		for _, dir := range searchPaths() {
			v.AddConfigPath(dir)
		}
	}

	// Support environment variables with dot notation (e.g., REFRESH_INTERVAL)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func searchPaths() []string {
	paths := []string{"./config"}
	if pwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(pwd, "../config"), filepath.Join(pwd, "../../config"))
	}
	if ex, err := os.Executable(); err == nil && !strings.Contains(ex, "go-build") {
		paths = append(paths, filepath.Join(filepath.Dir(ex), "../config"))
	}
	return paths
}

func (c *Config) Validate() error {
	if c.Refresh.Interval <= 0 {
		return fmt.Errorf("refresh.interval must be positive, got %s", c.Refresh.Interval)
	}
	if c.Provider.Timeout <= 0 {
		return fmt.Errorf("provider.timeout must be positive, got %s", c.Provider.Timeout)
	}
	if !validPeriods[strings.ToLower(c.History.DefaultPeriod)] {
		return fmt.Errorf("history.default_period %q is not a supported period", c.History.DefaultPeriod)
	}
	if c.Postgres.Retention < 0 {
		return fmt.Errorf("postgres.retention must not be negative, got %s", c.Postgres.Retention)
	}
	if len(c.Symbols.Indices) == 0 {
		return errors.New("symbols.indices must list at least one index")
	}
	return nil
}
