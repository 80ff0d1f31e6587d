package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8084 {
		t.Errorf("expected default port 8084, got %d", cfg.Server.Port)
	}
	if cfg.Data.TransactionsPath() != filepath.Join("db", "transactions") {
		t.Errorf("unexpected transactions path %q", cfg.Data.TransactionsPath())
	}
	if cfg.Security.BasicAuthEnabled() {
		t.Error("basic auth should be disabled by default")
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9000
  read_timeout: 5s
data:
  dir: /srv/retail
  customers_file: people.csv
logger:
  level: debug
security:
  auth_username: user
  auth_password: pass
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("SERVER_PORT", "9100")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("env should override file port, got %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("expected read timeout 5s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Data.CustomersPath() != filepath.Join("/srv/retail", "people.csv") {
		t.Errorf("unexpected customers path %q", cfg.Data.CustomersPath())
	}
	if cfg.Data.ProductInfoFile != "prod_cat_info.csv" {
		t.Errorf("unset file keys should keep defaults, got %q", cfg.Data.ProductInfoFile)
	}
	if cfg.Logger.Level != "debug" {
		t.Errorf("expected debug level, got %q", cfg.Logger.Level)
	}
	if !cfg.Security.BasicAuthEnabled() {
		t.Error("basic auth should be enabled")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad port", env: map[string]string{"SERVER_PORT": "70000"}},
		{name: "bad log level", env: map[string]string{"LOG_LEVEL": "loud"}},
		{name: "bad log format", env: map[string]string{"LOG_FORMAT": "xml"}},
		{name: "username without password", env: map[string]string{"AUTH_USERNAME": "user"}},
		{name: "zero burst", env: map[string]string{"SECURITY_RATE_LIMIT_BURST": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(""); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestDataConfig_AbsolutePath(t *testing.T) {
	d := DataConfig{Dir: "db", CountryCodesFile: "/data/cc.csv"}
	if got := d.CountryCodesPath(); got != "/data/cc.csv" {
		t.Errorf("absolute paths should not be joined, got %q", got)
	}
}
