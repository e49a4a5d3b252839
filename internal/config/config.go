// Package config loads service configuration from environment variables,
// with an optional .env file for development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration
type Config struct {
	HTTP  HTTPConfig
	MySQL MySQLConfig
	JWT   JWTConfig
	KMS   KMSConfig

	// DevMode runs the service with the in-memory store instead of MySQL.
	DevMode bool
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// MySQLConfig holds MySQL configuration
type MySQLConfig struct {
	DSN string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	ExpireMinutes int
	Issuer        string
}

// KMSConfig holds key sealing configuration
type KMSConfig struct {
	MasterKey string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		HTTP: HTTPConfig{
			Host:            getEnv("HTTP_HOST", ""),
			Port:            getEnvInt("HTTP_PORT", 8080),
			ReadTimeout:     time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SEC", 30)) * time.Second,
			WriteTimeout:    time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SEC", 30)) * time.Second,
			IdleTimeout:     time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SEC", 120)) * time.Second,
			ShutdownTimeout: time.Duration(getEnvInt("HTTP_SHUTDOWN_TIMEOUT_SEC", 10)) * time.Second,
		},
		MySQL: MySQLConfig{
			DSN: getEnv("MYSQL_DSN", ""),
		},
		JWT: JWTConfig{
			Secret:        os.Getenv("JWT_SECRET"),
			ExpireMinutes: getEnvInt("JWT_EXPIRE_MINUTES", 1440),
			Issuer:        getEnv("JWT_ISSUER", "pki-issuance"),
		},
		KMS: KMSConfig{
			MasterKey: os.Getenv("KMS_MASTER_KEY"),
		},
		DevMode: getEnv("DEV_MODE", "0") == "1",
	}

	// Validate required fields
	if cfg.MySQL.DSN == "" && !cfg.DevMode {
		return nil, fmt.Errorf("MYSQL_DSN is required")
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.KMS.MasterKey == "" {
		return nil, fmt.Errorf("KMS_MASTER_KEY is required")
	}

	return cfg, nil
}

// fileConfig is the YAML layout of an optional config file. Environment
// variables win over file values.
type fileConfig struct {
	HTTP struct {
		Host            string `yaml:"host"`
		Port            int    `yaml:"port"`
		ReadTimeoutSec  int    `yaml:"readTimeoutSec"`
		WriteTimeoutSec int    `yaml:"writeTimeoutSec"`
		IdleTimeoutSec  int    `yaml:"idleTimeoutSec"`
	} `yaml:"http"`
	MySQL struct {
		DSN string `yaml:"dsn"`
	} `yaml:"mysql"`
	JWT struct {
		Secret        string `yaml:"secret"`
		ExpireMinutes int    `yaml:"expireMinutes"`
		Issuer        string `yaml:"issuer"`
	} `yaml:"jwt"`
	KMS struct {
		MasterKey string `yaml:"masterKey"`
	} `yaml:"kms"`
	DevMode bool `yaml:"devMode"`
}

// LoadFromFile loads a YAML config file, then applies environment
// variable overrides on top.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	setDefaultEnv("HTTP_HOST", fc.HTTP.Host)
	setDefaultEnvInt("HTTP_PORT", fc.HTTP.Port)
	setDefaultEnvInt("HTTP_READ_TIMEOUT_SEC", fc.HTTP.ReadTimeoutSec)
	setDefaultEnvInt("HTTP_WRITE_TIMEOUT_SEC", fc.HTTP.WriteTimeoutSec)
	setDefaultEnvInt("HTTP_IDLE_TIMEOUT_SEC", fc.HTTP.IdleTimeoutSec)
	setDefaultEnv("MYSQL_DSN", fc.MySQL.DSN)
	setDefaultEnv("JWT_SECRET", fc.JWT.Secret)
	setDefaultEnvInt("JWT_EXPIRE_MINUTES", fc.JWT.ExpireMinutes)
	setDefaultEnv("JWT_ISSUER", fc.JWT.Issuer)
	setDefaultEnv("KMS_MASTER_KEY", fc.KMS.MasterKey)
	if fc.DevMode {
		setDefaultEnv("DEV_MODE", "1")
	}

	return Load()
}

func setDefaultEnv(key, value string) {
	if value != "" && os.Getenv(key) == "" {
		os.Setenv(key, value)
	}
}

func setDefaultEnvInt(key string, value int) {
	if value != 0 && os.Getenv(key) == "" {
		os.Setenv(key, strconv.Itoa(value))
	}
}

// Address returns the HTTP listen address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
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
