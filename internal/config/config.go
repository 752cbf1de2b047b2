package config

import (
	"errors"
	"fmt"
	"os"

	"cabinbook/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Booking    BookingConfig    `yaml:"booking"`
	Reconciler ReconcilerConfig `yaml:"reconciler"`
	Exports    ExportConfig     `yaml:"exports"`
	Admins     []AdminContact   `yaml:"admins"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

// AdminContact seeds the admins table at startup. Phone is the admin's
// identity: any request carrying it gets the admin role.
type AdminContact struct {
	Name  string `yaml:"name"`
	Phone string `yaml:"phone"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	Port      int                `yaml:"port"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type BookingConfig struct {
	// MaxAdvanceDays bounds how far ahead a day can be booked.
	MaxAdvanceDays int `yaml:"max_advance_days"`
	// GuestbookLimit / GuestbookWindowSec throttle guestbook posts per phone.
	GuestbookLimit     int `yaml:"guestbook_limit"`
	GuestbookWindowSec int `yaml:"guestbook_window_sec"`
	// SnapshotTimeoutSec bounds one snapshot rebuild triggered by resync.
	SnapshotTimeoutSec int `yaml:"snapshot_timeout_sec"`
}

type ReconcilerConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Interval   string `yaml:"interval"`
	MaxRetries int    `yaml:"max_retries"`
	RetryDelay string `yaml:"retry_delay"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; variables referenced from the YAML may come from
	// the process environment instead.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	return ValidateAdmins(c.Admins)
}

// ValidateAdmins rejects malformed or duplicate admin phone numbers.
func ValidateAdmins(admins []AdminContact) error {
	seen := make(map[string]bool)
	for _, admin := range admins {
		if !models.IsValidPhone(admin.Phone) {
			return fmt.Errorf("admin '%s' has invalid phone %q", admin.Name, admin.Phone)
		}
		normalized := models.NormalizePhone(admin.Phone)
		if seen[normalized] {
			return fmt.Errorf("duplicate admin phone found: %s", normalized)
		}
		seen[normalized] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.RateLimit.RPS == 0 {
		c.API.RateLimit.RPS = 10
	}
	if c.API.RateLimit.Burst == 0 {
		c.API.RateLimit.Burst = 20
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}

	if c.Booking.MaxAdvanceDays == 0 {
		c.Booking.MaxAdvanceDays = 365
	}
	if c.Booking.GuestbookLimit == 0 {
		c.Booking.GuestbookLimit = 5
	}
	if c.Booking.GuestbookWindowSec == 0 {
		c.Booking.GuestbookWindowSec = 3600
	}
	if c.Booking.SnapshotTimeoutSec == 0 {
		c.Booking.SnapshotTimeoutSec = 10
	}

	if c.Reconciler.Interval == "" {
		c.Reconciler.Interval = "1h"
	}
	if c.Reconciler.MaxRetries == 0 {
		c.Reconciler.MaxRetries = 3
	}
}
