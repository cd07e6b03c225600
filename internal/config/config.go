package config

import (
	"time"

	"github.com/spf13/viper"
	"github.com/wb-go/wbf/zlog"
)

// Config holds the main configuration for the application.
type Config struct {
	Server     Server     `mapstructure:"server"`
	Storage    Storage    `mapstructure:"storage"`
	Kafka      Kafka      `mapstructure:"kafka"`
	Generation Generation `mapstructure:"generation"`
	Retry      Retry      `mapstructure:"retry"`
	Scheduler  Scheduler  `mapstructure:"scheduler"`
}

// Server holds HTTP server-related configuration.
type Server struct {
	HTTPPort string `mapstructure:"http_port"` // HTTP port to listen on
}

// Storage holds configuration for the artifact storage backend.
type Storage struct {
	Endpoint   string `mapstructure:"endpoint"`
	AccessKey  string `mapstructure:"access_key"`
	SecretKey  string `mapstructure:"secret_key"`
	BucketName string `mapstructure:"bucket_name"`
	UseSSL     bool   `mapstructure:"use_ssl"`
}

// Kafka holds configuration for the illustration-request queue.
type Kafka struct {
	GroupID string   `mapstructure:"group_id"` // Consumer group ID
	Topic   string   `mapstructure:"topic"`    // Kafka topic name
	Brokers []string `mapstructure:"brokers"`  // List of Kafka broker addresses
}

// Generation holds configuration for the remote text and image
// generation capabilities.
type Generation struct {
	APIKey      string `mapstructure:"api_key"`
	BaseURL     string `mapstructure:"base_url"` // empty = provider default
	TextModel   string `mapstructure:"text_model"`
	ImageModel  string `mapstructure:"image_model"`
	ImageSize   string `mapstructure:"image_size"`
	StyleSuffix string `mapstructure:"style_suffix"` // appended to every image prompt
}

// Retry defines the retry policy for each remote illustration call.
type Retry struct {
	Attempts int           `mapstructure:"attempts"` // Number of attempts
	Delay    time.Duration `mapstructure:"delay"`    // Delay between attempts
	Backoff  float64       `mapstructure:"backoff"`  // Backoff multiplier for delays
}

// Scheduler holds pacing configuration for the task scheduler.
type Scheduler struct {
	Pacing time.Duration `mapstructure:"pacing"` // Delay between tasks beyond the first
}

// mustBindEnv binds critical environment variables to Viper keys.
//
// It panics if any environment variable cannot be bound.
func mustBindEnv() {
	bindings := map[string]string{
		"generation.api_key": "GENERATION_API_KEY",
		"storage.access_key": "STORAGE_ACCESS_KEY",
		"storage.secret_key": "STORAGE_SECRET_KEY",
	}

	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			zlog.Logger.Panic().Err(err).Msgf("failed to bind env %s", env)
		}
	}
}

// MustLoad loads the configuration from the specified file path.
// It panics if the configuration file cannot be loaded or unmarshaled.
func MustLoad(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(path)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		zlog.Logger.Panic().Err(err).Msg("failed to read config")
	}

	mustBindEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		zlog.Logger.Panic().Err(err).Msgf("failed to unmarshal config: %v", err)
	}

	return &cfg
}
