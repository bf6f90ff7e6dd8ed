package models

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tinybar.yaml")
	content := `
log_level: debug
http_addr: ":9090"
shutdown_timeout: 3s
output_format: csv
output_destination: s3
cloud_storage:
  bucket_name: tinybar-exports
  endpoint: http://localhost:9000
simulation:
  quote_count: 50
  start_date: "2026-01-01T00:00:00Z"
  end_date: "2026-12-31T00:00:00Z"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("TINYBAR_QUOTE_EXPIRY_DAYS", "14")
	t.Setenv("TINYBAR_KAFKA_BROKER_LIST", "k1:9092, k2:9092")

	cfg, err := LoadConfig(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "csv", cfg.OutputFormat)
	assert.Equal(t, "tinybar-exports", cfg.CloudStorage.BucketName)
	assert.Equal(t, "us-east-1", cfg.CloudStorage.Region)
	assert.Equal(t, 14, cfg.QuoteExpiryDays)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers())
	assert.Equal(t, 50, cfg.Simulation.QuoteCount)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), cfg.Simulation.StartDate.UTC())
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "error reading config file")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			LogFormat:         "json",
			OutputFormat:      "parquet",
			OutputDestination: "local",
			KafkaBrokerList:   "localhost:9092",
			QuoteExpiryDays:   30,
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		msg    string
	}{
		{"log format", func(c *Config) { c.LogFormat = "xml" }, "unsupported log format"},
		{"output format", func(c *Config) { c.OutputFormat = "avro" }, "unsupported output format"},
		{"destination", func(c *Config) { c.OutputDestination = "gcs" }, "unsupported output destination"},
		{"s3 without bucket", func(c *Config) { c.OutputDestination = "s3" }, "bucket_name"},
		{"kafka without brokers", func(c *Config) { c.KafkaEnabled = true; c.KafkaBrokerList = " " }, "kafka_broker_list"},
		{"negative expiry", func(c *Config) { c.QuoteExpiryDays = -1 }, "quote_expiry_days"},
		{"dates reversed", func(c *Config) {
			c.Simulation.StartDate = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
			c.Simulation.EndDate = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		}, "end_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.msg)
		})
	}
}
