package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type WebConfig struct {
	Port int `yaml:"port"`
}

type AdminConfig struct {
	Secret     string        `yaml:"secret"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type MessagesConfig struct {
	Language string `yaml:"language"` // en | fa
}

// IranKishConfig carries merchant configuration for the IranKish gateway.
type IranKishConfig struct {
	MerchantID string        `yaml:"merchant_id"`
	Timeout    time.Duration `yaml:"timeout"`
}

// ParsianConfig carries merchant configuration for the Parsian (PEC) gateway.
type ParsianConfig struct {
	LoginAccount string        `yaml:"login_account"`
	Timeout      time.Duration `yaml:"timeout"`
}

// SamanConfig carries merchant configuration for the Saman (SEP) gateway.
// Password is only needed for reversals.
type SamanConfig struct {
	MerchantID string        `yaml:"merchant_id"`
	Password   string        `yaml:"password"`
	Timeout    time.Duration `yaml:"timeout"`
}

// GatewaysConfig lists per-bank options. A nil entry means the gateway is not
// configured and will not be registered.
type GatewaysConfig struct {
	IranKish *IranKishConfig `yaml:"irankish"`
	Parsian  *ParsianConfig  `yaml:"parsian"`
	Saman    *SamanConfig    `yaml:"saman"`
}

type Config struct {
	Log      LogConfig      `yaml:"log"`
	Web      WebConfig      `yaml:"web"`
	Admin    AdminConfig    `yaml:"admin"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Messages MessagesConfig `yaml:"messages"`
	Gateways GatewaysConfig `yaml:"gateways"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Web.Port <= 0 {
		cfg.Web.Port = 8080
	}
	if cfg.Admin.SessionTTL <= 0 {
		cfg.Admin.SessionTTL = 30 * time.Minute
	}
	if cfg.Messages.Language == "" {
		cfg.Messages.Language = "fa"
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Gateways.IranKish == nil && cfg.Gateways.Parsian == nil && cfg.Gateways.Saman == nil {
		return nil, errors.New("at least one gateway must be configured")
	}
	if cfg.Gateways.IranKish != nil && cfg.Gateways.IranKish.MerchantID == "" {
		return nil, errors.New("gateways.irankish.merchant_id is required")
	}
	if cfg.Gateways.Parsian != nil && cfg.Gateways.Parsian.LoginAccount == "" {
		return nil, errors.New("gateways.parsian.login_account is required")
	}
	if cfg.Gateways.Saman != nil && cfg.Gateways.Saman.MerchantID == "" {
		return nil, errors.New("gateways.saman.merchant_id is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
