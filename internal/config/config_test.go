package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("DOCSTORE_BACKEND", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "postgres", cfg.DocstoreBackend)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "storefront.yaml")
	yml := `
httpAddr: ":9000"
docstoreBackend: memory
redisDb: 2
kafkaBrokers: ["k1:9092"]
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	t.Setenv("HTTP_ADDR", "")
	t.Setenv("DOCSTORE_BACKEND", "")
	t.Setenv("REDIS_DB", "")
	t.Setenv("KAFKA_BROKERS", "k2:9092, k3:9092")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, "memory", cfg.DocstoreBackend)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, []string{"k2:9092", "k3:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
