package models

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type CloudStorageConfig struct {
	Provider   string `mapstructure:"provider"`
	Region     string `mapstructure:"region"`
	BucketName string `mapstructure:"bucket_name"`
	Endpoint   string `mapstructure:"endpoint"` // S3-compatible endpoint, e.g. MinIO
}

type SimulationConfig struct {
	Seed       int64     `mapstructure:"seed"`
	QuoteCount int       `mapstructure:"quote_count"`
	StartDate  time.Time `mapstructure:"start_date"`
	EndDate    time.Time `mapstructure:"end_date"`
	SaveQuotes bool      `mapstructure:"save_quotes"`
}

type Config struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	HTTPAddr        string        `mapstructure:"http_addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	DatabaseURL string `mapstructure:"database_url"`
	RatesFile   string `mapstructure:"rates_file"`

	KafkaEnabled     bool   `mapstructure:"kafka_enabled"`
	KafkaBrokerList  string `mapstructure:"kafka_broker_list"`
	KafkaTopicPrefix string `mapstructure:"kafka_topic_prefix"`

	OutputPath        string             `mapstructure:"output_path"`
	OutputFolder      string             `mapstructure:"output_folder"`
	OutputFormat      string             `mapstructure:"output_format"`
	OutputDestination string             `mapstructure:"output_destination"`
	CloudStorage      CloudStorageConfig `mapstructure:"cloud_storage"`

	// Pending quotes older than this many days are expired by `tinybar expire`.
	QuoteExpiryDays int `mapstructure:"quote_expiry_days"`

	Simulation SimulationConfig `mapstructure:"simulation"`
}

const envPrefix = "TINYBAR"

// SetDefaults registers every key so AutomaticEnv can see it during Unmarshal.
func SetDefaults(v *viper.Viper, now time.Time) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("shutdown_timeout", "10s")
	v.SetDefault("database_url", "")
	v.SetDefault("rates_file", "")
	v.SetDefault("kafka_enabled", false)
	v.SetDefault("kafka_broker_list", "localhost:9092")
	v.SetDefault("kafka_topic_prefix", "tinybar")
	v.SetDefault("output_path", "")
	v.SetDefault("output_folder", "quotes")
	v.SetDefault("output_format", "parquet")
	v.SetDefault("output_destination", "local")
	v.SetDefault("cloud_storage.provider", "s3")
	v.SetDefault("cloud_storage.region", "us-east-1")
	v.SetDefault("cloud_storage.bucket_name", "")
	v.SetDefault("cloud_storage.endpoint", "")
	v.SetDefault("quote_expiry_days", 30)
	v.SetDefault("simulation.seed", 42)
	v.SetDefault("simulation.quote_count", 1000)
	v.SetDefault("simulation.start_date", now.Format(time.RFC3339))
	v.SetDefault("simulation.end_date", now.AddDate(0, 6, 0).Format(time.RFC3339))
	v.SetDefault("simulation.save_quotes", false)
}

// LoadConfig reads cfgFile (or .tinybar.yaml from ./ or $HOME when empty),
// TINYBAR_* environment variables and whatever flags were bound to v.
func LoadConfig(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigName(".tinybar")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	SetDefaults(v, time.Now())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		)
	})
	if err := v.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (cfg *Config) Validate() error {
	switch cfg.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("unsupported log format: %s", cfg.LogFormat)
	}
	switch cfg.OutputFormat {
	case "parquet", "json", "csv":
	default:
		return fmt.Errorf("unsupported output format: %s", cfg.OutputFormat)
	}
	switch cfg.OutputDestination {
	case "local":
	case "s3":
		if cfg.CloudStorage.BucketName == "" {
			return fmt.Errorf("output destination s3 requires cloud_storage.bucket_name")
		}
	default:
		return fmt.Errorf("unsupported output destination: %s", cfg.OutputDestination)
	}
	if cfg.KafkaEnabled && strings.TrimSpace(cfg.KafkaBrokerList) == "" {
		return fmt.Errorf("kafka enabled but kafka_broker_list is empty")
	}
	if cfg.QuoteExpiryDays < 0 {
		return fmt.Errorf("quote_expiry_days must not be negative")
	}
	if cfg.Simulation.QuoteCount < 0 {
		return fmt.Errorf("simulation.quote_count must not be negative")
	}
	if cfg.Simulation.EndDate.Before(cfg.Simulation.StartDate) {
		return fmt.Errorf("simulation.end_date is before simulation.start_date")
	}
	return nil
}

// KafkaBrokers splits the comma separated broker list.
func (cfg *Config) KafkaBrokers() []string {
	var brokers []string
	for _, b := range strings.Split(cfg.KafkaBrokerList, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
