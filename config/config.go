package config

import (
	"errors"
	"time"

	"portfolio/pkg/config"
)

type Config struct {
	Server  config.ServerConfig  `yaml:"server"`
	Mongo   config.MongoConfig   `yaml:"mongo"`
	Redis   config.RedisConfig   `yaml:"redis"`
	Auth    config.AuthConfig    `yaml:"auth"`
	Webhook config.WebhookConfig `yaml:"webhook"`
	GitHub  config.GitHubConfig  `yaml:"github"`
	Log     config.LogConfig     `yaml:"log"`
}

// Load reads the config file chosen by config.ResolvePath, applies
// environment overrides and defaults, and validates the result.
func Load() (*Config, error) {
	return LoadFile(config.ResolvePath("config"))
}

func LoadFile(path string) (*Config, error) {
	var cfg Config
	if err := config.LoadYAML(path, &cfg); err != nil {
		return nil, err
	}

	overrideFromEnv(&cfg)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func overrideFromEnv(cfg *Config) {
	config.OverrideServerFromEnv(&cfg.Server)
	config.OverrideMongoFromEnv(&cfg.Mongo)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideAuthFromEnv(&cfg.Auth)
	config.OverrideWebhookFromEnv(&cfg.Webhook)
	config.OverrideGitHubFromEnv(&cfg.GitHub)
	config.OverrideLogFromEnv(&cfg.Log)
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = ":8080"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "portfolio"
	}
	if c.Mongo.ConnectTimeout == 0 {
		c.Mongo.ConnectTimeout = 10 * time.Second
	}
	if c.Mongo.SlowQueryThreshold == 0 {
		c.Mongo.SlowQueryThreshold = 100 * time.Millisecond
	}
	if c.Auth.Leeway == 0 {
		c.Auth.Leeway = 5 * time.Second
	}
	if c.Auth.SessionCookie == "" {
		c.Auth.SessionCookie = "__session"
	}
	if c.GitHub.BaseURL == "" {
		c.GitHub.BaseURL = "https://api.github.com"
	}
	if c.GitHub.Timeout == 0 {
		c.GitHub.Timeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.Mongo.URI == "" {
		errs = append(errs, errors.New("mongo.uri is required"))
	}
	if c.Auth.JWTPublicKey == "" {
		errs = append(errs, errors.New("auth.jwt_public_key is required"))
	}
	if c.Webhook.Secret == "" {
		errs = append(errs, errors.New("webhook.secret is required"))
	}
	if c.GitHub.Username == "" {
		errs = append(errs, errors.New("github.username is required"))
	}
	return errors.Join(errs...)
}
