// Package config loads the application configuration from YAML with
// environment variable overrides. The loaded Config is returned to the
// caller and injected into constructors; there is no package-level
// configuration state.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config application configuration structure
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Frontend FrontendConfig `yaml:"frontend"`
	NATS     NATSConfig     `yaml:"nats"`
	CORS     CORSConfig     `yaml:"cors"`
	Admin    AdminConfig    `yaml:"admin"`
}

// ServerConfig server configuration
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Mode string `yaml:"mode"` // debug / release
}

// DatabaseConfig database configuration
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// FrontendConfig frontend configuration, used to derive shareable payment URLs
type FrontendConfig struct {
	BaseURL string `yaml:"base_url"`
}

// NATSConfig NATS event publishing configuration.
// Publishing is disabled when URL is empty.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Timeout int    `yaml:"timeout"` // connect timeout in seconds
}

// CORSConfig CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	MaxAge           int      `yaml:"max_age"`
}

// AdminConfig access control for operational endpoints (/metrics)
type AdminConfig struct {
	AllowedIPs []string `yaml:"allowed_ips"`
}

// Addr returns the listen address for the HTTP server
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads the configuration file and applies environment overrides.
// An absent config file is not an error: defaults plus environment
// variables are enough to run.
func Load(configPath string) (*Config, error) {
	cfg := defaults()

	if configPath == "" {
		configPath = "config.yaml"
		// prefer a local override file when present
		if _, err := os.Stat("config.local.yaml"); err == nil {
			configPath = "config.local.yaml"
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	}

	overrideFromEnv(cfg)

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Mode: "debug",
		},
		Frontend: FrontendConfig{
			BaseURL: "http://localhost:5173",
		},
		NATS: NATSConfig{
			Timeout: 10,
		},
		CORS: CORSConfig{
			AllowedOrigins:   []string{"*"},
			AllowCredentials: true,
			MaxAge:           3600,
		},
	}
}

// overrideFromEnv applies environment variable overrides on top of the file
func overrideFromEnv(cfg *Config) {
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		cfg.Server.Mode = mode
	}
	if frontend := os.Getenv("FRONTEND_URL"); frontend != "" {
		cfg.Frontend.BaseURL = frontend
	}
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		cfg.NATS.URL = natsURL
	}
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		parts := strings.Split(origins, ",")
		allowed := make([]string, 0, len(parts))
		for _, o := range parts {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				allowed = append(allowed, trimmed)
			}
		}
		if len(allowed) > 0 {
			cfg.CORS.AllowedOrigins = allowed
		}
	}
	if ips := os.Getenv("ADMIN_ALLOWED_IPS"); ips != "" {
		cfg.Admin.AllowedIPs = strings.Split(ips, ",")
	}
}
