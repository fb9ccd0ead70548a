package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds server and client settings
type Config struct {
	// Server
	Addr         string        `yaml:"addr" json:"addr"`                     // Listen address
	BaseURL      string        `yaml:"base_url" json:"base_url"`             // Origin share links are built on
	DatabaseURL  string        `yaml:"database_url" json:"database_url"`     // SQLite path or postgres:// URL
	AdminKeyHash string        `yaml:"admin_key_hash" json:"admin_key_hash"` // bcrypt hash guarding link creation, empty disables
	CacheSizeMB  int           `yaml:"cache_size_mb" json:"cache_size_mb"`   // Blob read cache bound, 0 is unbounded
	CacheTTL     time.Duration `yaml:"cache_ttl" json:"cache_ttl"`           // Blob read cache lifetime

	// Client
	ServerURL string `yaml:"server_url" json:"server_url"` // Server used by upload
	AdminKey  string `yaml:"admin_key" json:"admin_key"`   // Sent as X-Admin-Key

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`     // Log level: DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" json:"log_file"`       // Path to log file
	LogConsole bool   `yaml:"log_console" json:"log_console"` // Enable console logging

	path string
}

// Dir returns the settings directory (~/.secureview)
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".secureview"), nil
}

// DefaultConfig returns default settings, with SECUREVIEW_* environment
// variables taking precedence
func DefaultConfig() *Config {
	dir, _ := Dir()
	logPath, dbPath := "", "secureview.db"
	if dir != "" {
		logPath = filepath.Join(dir, "logs", "secureview.log")
		dbPath = filepath.Join(dir, "secureview.db")
	}

	return &Config{
		Addr:         getEnv("SECUREVIEW_ADDR", ":8080"),
		BaseURL:      getEnv("SECUREVIEW_BASE_URL", "http://localhost:8080/"),
		DatabaseURL:  getEnv("SECUREVIEW_DATABASE_URL", dbPath),
		AdminKeyHash: getEnv("SECUREVIEW_ADMIN_KEY_HASH", ""),
		CacheSizeMB:  getEnvInt("SECUREVIEW_CACHE_SIZE_MB", 256),
		CacheTTL:     getEnvDuration("SECUREVIEW_CACHE_TTL", 10*time.Minute),
		ServerURL:    getEnv("SECUREVIEW_SERVER_URL", "http://localhost:8080"),
		AdminKey:     getEnv("SECUREVIEW_ADMIN_KEY", ""),
		LogLevel:     getEnv("SECUREVIEW_LOG_LEVEL", "INFO"),
		LogFile:      getEnv("SECUREVIEW_LOG_FILE", logPath),
		LogConsole:   getEnv("SECUREVIEW_LOG_CONSOLE", "false") == "true",
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}

// Load loads config from ~/.secureview/config.yaml
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadFile(filepath.Join(dir, "config.yaml"))
}

// LoadFile loads config from path, returning defaults if it does not exist
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.path = path

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Save writes config back to the file it was loaded from, or to
// ~/.secureview/config.yaml
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// admin_key may be in here
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
