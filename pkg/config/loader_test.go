package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Mongo   MongoConfig   `yaml:"mongo"`
	Webhook WebhookConfig `yaml:"webhook"`
	Server  ServerConfig  `yaml:"server"`
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoadYAMLExpandsSecretsAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "local.yaml")
	writeFile(t, path, `
mongo:
  uri: ${TEST_MONGO_URI}
  database: portfolio
  slow_query_threshold: 250ms
webhook:
  secret: ${TEST_WEBHOOK_SECRET}
server:
  port: ":8080"
`)
	writeFile(t, filepath.Join(dir, "secrets.env"), `
# comment
TEST_WEBHOOK_SECRET="whsec_fromfile"
TEST_MONGO_URI=mongodb://file:27017
`)
	t.Setenv("TEST_MONGO_URI", "mongodb://env:27017")

	var cfg sample
	require.NoError(t, LoadYAML(path, &cfg))

	assert.Equal(t, "mongodb://env:27017", cfg.Mongo.URI)
	assert.Equal(t, "portfolio", cfg.Mongo.Database)
	assert.Equal(t, 250*time.Millisecond, cfg.Mongo.SlowQueryThreshold)
	assert.Equal(t, "whsec_fromfile", cfg.Webhook.Secret)
	assert.Equal(t, ":8080", cfg.Server.Port)
}

func TestLoadYAMLRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, path, "mongo:\n  urii: x\n")

	var cfg sample
	assert.Error(t, LoadYAML(path, &cfg))
}

func TestLoadYAMLMissingFile(t *testing.T) {
	var cfg sample
	assert.Error(t, LoadYAML(filepath.Join(t.TempDir(), "nope.yaml"), &cfg))
}

func TestResolvePath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("CONFIG_ENV", "staging")
	assert.Equal(t, "config.yaml", ResolvePath(dir))

	writeFile(t, filepath.Join(dir, "staging.yaml"), "server: {}\n")
	assert.Equal(t, filepath.Join(dir, "staging.yaml"), ResolvePath(dir))

	t.Setenv("CONFIG_FILE", "/etc/portfolio.yaml")
	assert.Equal(t, "/etc/portfolio.yaml", ResolvePath(dir))
}

func TestOverrides(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://override")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("GITHUB_USERNAME", "octocat")

	var m MongoConfig
	OverrideMongoFromEnv(&m)
	assert.Equal(t, "mongodb://override", m.URI)

	var r RedisConfig
	OverrideRedisFromEnv(&r)
	assert.Equal(t, 3, r.DB)

	var g GitHubConfig
	OverrideGitHubFromEnv(&g)
	assert.Equal(t, "octocat", g.Username)
}
