package config

import (
	yamlenv "github.com/ifuryst/go-yaml-env"

	"github.com/postloom/postloom/pkg/logger"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Logger    logger.Config   `yaml:"logger"`
	Auth      AuthConfig      `yaml:"auth"`
	AI        AIConfig        `yaml:"ai"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

type ServerConfig struct {
	Port     int    `yaml:"port"`
	Host     string `yaml:"host"`
	Mode     string `yaml:"mode"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

type DatabaseConfig struct {
	Type     string `yaml:"type"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
	TimeZone string `yaml:"timezone"`
}

type AuthConfig struct {
	JWTSecret   string `yaml:"jwt_secret"`
	TokenTTL    string `yaml:"token_ttl"`
	RequireTOTP bool   `yaml:"require_totp"`
}

type AIConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Timeout  string `yaml:"timeout"`
}

type SchedulerConfig struct {
	DispatchInterval string `yaml:"dispatch_interval"`
	Enabled          bool   `yaml:"enabled"`
}

func LoadConfig(configPath string) (*Config, error) {
	cfg, err := yamlenv.LoadConfig[Config](configPath)
	if err != nil {
		return nil, err
	}

	// Set default values
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5340
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "debug"
	}
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.TimeZone == "" {
		cfg.Database.TimeZone = "UTC"
	}
	if cfg.Auth.TokenTTL == "" {
		cfg.Auth.TokenTTL = "24h"
	}
	if cfg.AI.Endpoint == "" {
		cfg.AI.Endpoint = "https://api.openai.com/v1/chat/completions"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gpt-4o-mini"
	}
	if cfg.AI.Timeout == "" {
		cfg.AI.Timeout = "30s"
	}
	if cfg.Scheduler.DispatchInterval == "" {
		cfg.Scheduler.DispatchInterval = "1m"
	}
	if !cfg.Scheduler.Enabled {
		cfg.Scheduler.Enabled = true
	}

	return cfg, nil
}
