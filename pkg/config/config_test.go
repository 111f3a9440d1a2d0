package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "unittest")

	cfg, err := Load(LoadOptions{ConfigPath: t.TempDir(), EnvPrefix: DefaultEnvPrefix, AllowNoConfig: true})
	require.NoError(t, err)

	assert.Equal(t, DefaultServiceName, cfg.App.Name)
	assert.Equal(t, "unittest", cfg.App.Env)
	assert.Equal(t, DefaultPort, cfg.App.Port)
	assert.Equal(t, 10*time.Second, cfg.App.ShutdownTimeout.Duration())
	assert.Equal(t, "otlp", cfg.Tracing.Exporter)
	assert.Equal(t, DefaultOTLPEndpoint, cfg.Tracing.Endpoint)
	assert.Equal(t, "zstd", cfg.Tracing.Compression)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)
	assert.Equal(t, "stdout", cfg.Logs.Exporter)
	assert.Equal(t, "firmware.bin", cfg.Firmware.Filename)
	assert.True(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
app:
  port: 9000
log:
  format: json
  filter: "debug,net/http=off"
tracing:
  exporter: stdout
firmware:
  path: /var/lib/ota/image.bin
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config_staging.yaml"), yaml, 0o644))
	t.Setenv("APP_ENV", "staging")
	t.Setenv("OTA_TRACING_ENDPOINT", "https://collector.internal:4317")
	t.Setenv("OTA_KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load(LoadOptions{ConfigPath: dir, EnvPrefix: DefaultEnvPrefix})
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.App.Port)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "debug,net/http=off", cfg.Log.Filter)
	assert.Equal(t, "stdout", cfg.Tracing.Exporter)
	assert.Equal(t, "https://collector.internal:4317", cfg.Tracing.Endpoint)
	assert.Equal(t, "/var/lib/ota/image.bin", cfg.Firmware.Path)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoadMissingFileNotAllowed(t *testing.T) {
	t.Setenv("APP_ENV", "nowhere")

	_, err := Load(LoadOptions{ConfigPath: t.TempDir(), EnvPrefix: DefaultEnvPrefix})
	assert.Error(t, err)
}

func TestGetSecretOrEnv(t *testing.T) {
	secret := filepath.Join(t.TempDir(), "kafka-password")
	require.NoError(t, os.WriteFile(secret, []byte("s3cret\n"), 0o600))

	t.Setenv("OTA_TEST_SECRET", "from-env")
	assert.Equal(t, "from-env", GetSecretOrEnv("OTA_TEST_SECRET", "fallback"))

	t.Setenv("OTA_TEST_SECRET_FILE", secret)
	assert.Equal(t, "s3cret", GetSecretOrEnv("OTA_TEST_SECRET", "fallback"))

	assert.Equal(t, "fallback", GetSecretOrEnv("OTA_TEST_UNSET", "fallback"))
}
