package config

import (
	"os"
	"strconv"
	"time"
)

// MongoConfig document store settings.
type MongoConfig struct {
	URI                string        `yaml:"uri"`
	Database           string        `yaml:"database"`
	ConnectTimeout     time.Duration `yaml:"connect_timeout"`
	SlowQueryThreshold time.Duration `yaml:"slow_query_threshold"`
}

// RedisConfig is optional; an empty Addr disables redis.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// AuthConfig identity provider session-token settings.
type AuthConfig struct {
	// JWTPublicKey is the PEM encoded RSA key the provider signs session tokens with.
	JWTPublicKey      string        `yaml:"jwt_public_key"`
	AuthorizedParties []string      `yaml:"authorized_parties"`
	Leeway            time.Duration `yaml:"leeway"`
	SessionCookie     string        `yaml:"session_cookie"`
}

// WebhookConfig identity provider webhook settings.
type WebhookConfig struct {
	Secret   string        `yaml:"secret"`
	DedupTTL time.Duration `yaml:"dedup_ttl"`
}

// GitHubConfig public profile proxy settings.
type GitHubConfig struct {
	BaseURL  string        `yaml:"base_url"`
	Username string        `yaml:"username"`
	Token    string        `yaml:"token"`
	Timeout  time.Duration `yaml:"timeout"`
}

// ServerConfig HTTP listener settings.
type ServerConfig struct {
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	Mode            string        `yaml:"mode"`
}

// LogConfig logger settings.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// OverrideMongoFromEnv overrides mongo settings from the environment.
func OverrideMongoFromEnv(cfg *MongoConfig) {
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		cfg.URI = uri
	}
	if name := os.Getenv("MONGO_DATABASE"); name != "" {
		cfg.Database = name
	}
}

// OverrideRedisFromEnv overrides redis settings from the environment.
func OverrideRedisFromEnv(cfg *RedisConfig) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if db := os.Getenv("REDIS_DB"); db != "" {
		if n, err := strconv.Atoi(db); err == nil {
			cfg.DB = n
		}
	}
}

// OverrideAuthFromEnv overrides auth settings from the environment.
func OverrideAuthFromEnv(cfg *AuthConfig) {
	if key := os.Getenv("CLERK_JWT_KEY"); key != "" {
		cfg.JWTPublicKey = key
	}
}

// OverrideWebhookFromEnv overrides webhook settings from the environment.
func OverrideWebhookFromEnv(cfg *WebhookConfig) {
	if secret := os.Getenv("CLERK_WEBHOOK_SECRET"); secret != "" {
		cfg.Secret = secret
	}
}

// OverrideGitHubFromEnv overrides GitHub settings from the environment.
func OverrideGitHubFromEnv(cfg *GitHubConfig) {
	if user := os.Getenv("GITHUB_USERNAME"); user != "" {
		cfg.Username = user
	}
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.Token = token
	}
}

// OverrideServerFromEnv overrides server settings from the environment.
func OverrideServerFromEnv(cfg *ServerConfig) {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Port = port
	}
}

// OverrideLogFromEnv overrides log settings from the environment.
func OverrideLogFromEnv(cfg *LogConfig) {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Level = level
	}
}
