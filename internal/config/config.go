package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Data      DataConfig      `yaml:"data"`
	Logger    LoggerConfig    `yaml:"logger"`
	Security  SecurityConfig  `yaml:"security"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DataConfig locates the five input files. Relative file names are resolved
// against Dir.
type DataConfig struct {
	Dir             string        `yaml:"dir"`
	KPIs            string        `yaml:"kpis"`
	Transactions    string        `yaml:"transactions"`
	MonthlyEarnings string        `yaml:"monthly_earnings"`
	SaleStatus      string        `yaml:"sale_status"`
	DailySales      string        `yaml:"daily_sales"`
	LoadTimeout     time.Duration `yaml:"load_timeout"`
}

type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type SecurityConfig struct {
	EnableRateLimit   bool     `yaml:"rate_limit_enabled"`
	RateLimitRPS      int      `yaml:"rate_limit_rps"`
	RateLimitBurst    int      `yaml:"rate_limit_burst"`
	EnableCompression bool     `yaml:"compression_enabled"`
	AllowedOrigins    []string `yaml:"allowed_origins"`
	TrustedProxies    []string `yaml:"trusted_proxies"`
}

type DashboardConfig struct {
	Title  string `yaml:"title"`
	Footer string `yaml:"footer"`
}

const defaultPort = 8050

func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            defaultPort,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Data: DataConfig{
			Dir:             "data",
			KPIs:            "kpis.csv",
			Transactions:    "transactions.csv",
			MonthlyEarnings: "monthly_earnings.csv",
			SaleStatus:      "sale_status.csv",
			DailySales:      "daily_sales.csv",
			LoadTimeout:     30 * time.Second,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "json",
		},
		Security: SecurityConfig{
			EnableRateLimit:   true,
			RateLimitRPS:      100,
			RateLimitBurst:    10,
			EnableCompression: true,
			AllowedOrigins:    []string{fmt.Sprintf("http://localhost:%d", defaultPort)},
			TrustedProxies:    []string{"127.0.0.1"},
		},
		Dashboard: DashboardConfig{
			Title:  "Sales Dashboard",
			Footer: "© 2025 Felix Auls | Data Analyst Portfolio",
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path (or
// CONFIG_FILE when path is empty), then environment variables.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Host = getEnvString("SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnvInt("SERVER_PORT", c.Server.Port)
	c.Server.ReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.IdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", c.Server.IdleTimeout)
	c.Server.ShutdownTimeout = getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	c.Data.Dir = getEnvString("DATA_DIR", c.Data.Dir)
	c.Data.KPIs = getEnvString("DATA_KPIS_FILE", c.Data.KPIs)
	c.Data.Transactions = getEnvString("DATA_TRANSACTIONS_FILE", c.Data.Transactions)
	c.Data.MonthlyEarnings = getEnvString("DATA_MONTHLY_FILE", c.Data.MonthlyEarnings)
	c.Data.SaleStatus = getEnvString("DATA_STATUS_FILE", c.Data.SaleStatus)
	c.Data.DailySales = getEnvString("DATA_DAILY_FILE", c.Data.DailySales)
	c.Data.LoadTimeout = getEnvDuration("DATA_LOAD_TIMEOUT", c.Data.LoadTimeout)

	c.Logger.Level = getEnvString("LOG_LEVEL", c.Logger.Level)
	c.Logger.Format = getEnvString("LOG_FORMAT", c.Logger.Format)

	c.Security.EnableRateLimit = getEnvBool("SECURITY_RATE_LIMIT_ENABLED", c.Security.EnableRateLimit)
	c.Security.RateLimitRPS = getEnvInt("SECURITY_RATE_LIMIT_RPS", c.Security.RateLimitRPS)
	c.Security.RateLimitBurst = getEnvInt("SECURITY_RATE_LIMIT_BURST", c.Security.RateLimitBurst)
	c.Security.EnableCompression = getEnvBool("SECURITY_COMPRESSION_ENABLED", c.Security.EnableCompression)
	c.Security.AllowedOrigins = getEnvStringSlice("SECURITY_ALLOWED_ORIGINS", c.Security.AllowedOrigins)
	c.Security.TrustedProxies = getEnvStringSlice("SECURITY_TRUSTED_PROXIES", c.Security.TrustedProxies)

	c.Dashboard.Title = getEnvString("DASHBOARD_TITLE", c.Dashboard.Title)
	c.Dashboard.Footer = getEnvString("DASHBOARD_FOOTER", c.Dashboard.Footer)
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server shutdown timeout must be positive")
	}

	files := map[string]string{
		"kpis":             c.Data.KPIs,
		"transactions":     c.Data.Transactions,
		"monthly_earnings": c.Data.MonthlyEarnings,
		"sale_status":      c.Data.SaleStatus,
		"daily_sales":      c.Data.DailySales,
	}
	for name, file := range files {
		if file == "" {
			return fmt.Errorf("%s file path cannot be empty", name)
		}
	}

	if c.Data.LoadTimeout <= 0 {
		return fmt.Errorf("data load timeout must be positive")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !slices.Contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.Security.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit RPS must be positive")
	}

	if c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	return nil
}

// Path resolves a data file name against Dir. Absolute names are returned as is.
func (d DataConfig) Path(name string) string {
	if filepath.IsAbs(name) || d.Dir == "" {
		return name
	}
	return filepath.Join(d.Dir, name)
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
