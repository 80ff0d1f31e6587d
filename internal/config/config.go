package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Data     DataConfig     `yaml:"data"`
	Logger   LoggerConfig   `yaml:"logger"`
	Security SecurityConfig `yaml:"security"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	LoadTimeout     time.Duration `yaml:"load_timeout"`
}

// DataConfig locates the input files. Relative file names resolve against Dir.
type DataConfig struct {
	Dir              string `yaml:"dir"`
	TransactionsDir  string `yaml:"transactions_dir"`
	CountryCodesFile string `yaml:"country_codes_file"`
	CustomersFile    string `yaml:"customers_file"`
	ProductInfoFile  string `yaml:"product_info_file"`
	CacheDir         string `yaml:"cache_dir"`
	CacheEnabled     bool   `yaml:"cache_enabled"`
}

type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type SecurityConfig struct {
	EnableCSRF      bool     `yaml:"enable_csrf"`
	EnableRateLimit bool     `yaml:"enable_rate_limit"`
	RateLimitRPS    int      `yaml:"rate_limit_rps"`
	RateLimitBurst  int      `yaml:"rate_limit_burst"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	TrustedProxies  []string `yaml:"trusted_proxies"`
	AuthUsername    string   `yaml:"auth_username"`
	AuthPassword    string   `yaml:"auth_password"`
}

// BasicAuthEnabled reports whether the dashboard is gated by credentials.
func (s SecurityConfig) BasicAuthEnabled() bool {
	return s.AuthUsername != ""
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8084,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			LoadTimeout:     60 * time.Second,
		},
		Data: DataConfig{
			Dir:              "db",
			TransactionsDir:  "transactions",
			CountryCodesFile: "country_codes.csv",
			CustomersFile:    "customers.csv",
			ProductInfoFile:  "prod_cat_info.csv",
			CacheDir:         ".cache",
			CacheEnabled:     true,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "json",
		},
		Security: SecurityConfig{
			EnableCSRF:      true,
			EnableRateLimit: true,
			RateLimitRPS:    100,
			RateLimitBurst:  10,
			AllowedOrigins:  []string{"http://localhost:8084"},
			TrustedProxies:  []string{"127.0.0.1"},
		},
	}
}

// Load builds the configuration from defaults, then the optional YAML file at
// path, then environment variables. Environment always wins.
func Load(path string) (*Config, error) {
	cfg := defaults()

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
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
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
	c.Server.LoadTimeout = getEnvDuration("DATA_LOAD_TIMEOUT", c.Server.LoadTimeout)

	c.Data.Dir = getEnvString("DATA_DIR", c.Data.Dir)
	c.Data.TransactionsDir = getEnvString("DATA_TRANSACTIONS_DIR", c.Data.TransactionsDir)
	c.Data.CountryCodesFile = getEnvString("DATA_COUNTRY_CODES_FILE", c.Data.CountryCodesFile)
	c.Data.CustomersFile = getEnvString("DATA_CUSTOMERS_FILE", c.Data.CustomersFile)
	c.Data.ProductInfoFile = getEnvString("DATA_PRODUCT_INFO_FILE", c.Data.ProductInfoFile)
	c.Data.CacheDir = getEnvString("DATA_CACHE_DIR", c.Data.CacheDir)
	c.Data.CacheEnabled = getEnvBool("DATA_CACHE_ENABLED", c.Data.CacheEnabled)

	c.Logger.Level = getEnvString("LOG_LEVEL", c.Logger.Level)
	c.Logger.Format = getEnvString("LOG_FORMAT", c.Logger.Format)

	c.Security.EnableCSRF = getEnvBool("SECURITY_CSRF_ENABLED", c.Security.EnableCSRF)
	c.Security.EnableRateLimit = getEnvBool("SECURITY_RATE_LIMIT_ENABLED", c.Security.EnableRateLimit)
	c.Security.RateLimitRPS = getEnvInt("SECURITY_RATE_LIMIT_RPS", c.Security.RateLimitRPS)
	c.Security.RateLimitBurst = getEnvInt("SECURITY_RATE_LIMIT_BURST", c.Security.RateLimitBurst)
	c.Security.AllowedOrigins = getEnvStringSlice("SECURITY_ALLOWED_ORIGINS", c.Security.AllowedOrigins)
	c.Security.TrustedProxies = getEnvStringSlice("SECURITY_TRUSTED_PROXIES", c.Security.TrustedProxies)
	c.Security.AuthUsername = getEnvString("AUTH_USERNAME", c.Security.AuthUsername)
	c.Security.AuthPassword = getEnvString("AUTH_PASSWORD", c.Security.AuthPassword)
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

	if c.Server.LoadTimeout <= 0 {
		return fmt.Errorf("data load timeout must be positive")
	}

	if c.Data.TransactionsDir == "" {
		return fmt.Errorf("transactions directory cannot be empty")
	}

	for name, file := range map[string]string{
		"country codes": c.Data.CountryCodesFile,
		"customers":     c.Data.CustomersFile,
		"product info":  c.Data.ProductInfoFile,
	} {
		if file == "" {
			return fmt.Errorf("%s file path cannot be empty", name)
		}
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.Security.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit RPS must be positive")
	}

	if c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	if c.Security.BasicAuthEnabled() && c.Security.AuthPassword == "" {
		return fmt.Errorf("auth password cannot be empty when a username is set")
	}

	return nil
}

func (d DataConfig) resolve(name string) string {
	if filepath.IsAbs(name) || d.Dir == "" {
		return name
	}
	return filepath.Join(d.Dir, name)
}

func (d DataConfig) TransactionsPath() string { return d.resolve(d.TransactionsDir) }
func (d DataConfig) CountryCodesPath() string { return d.resolve(d.CountryCodesFile) }
func (d DataConfig) CustomersPath() string { return d.resolve(d.CustomersFile) }
func (d DataConfig) ProductInfoPath() string { return d.resolve(d.ProductInfoFile) }

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
		return strings.Split(value, ",")
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
