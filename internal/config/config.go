package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds HTTP API configuration
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

// Addr is the listen address for the HTTP API.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// CatalogConfig says where major definitions and the course list come from.
// BaseURL wins over local files; with neither set the embedded data is used.
type CatalogConfig struct {
	BaseURL              string `mapstructure:"base_url"`
	Timeout              int    `mapstructure:"timeout"`
	MaxRequestsPerSecond int    `mapstructure:"max_requests_per_second"`
	CoursesFile          string `mapstructure:"courses_file"`
	MajorsDir            string `mapstructure:"majors_dir"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// DSN is the pgx connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Password      string `mapstructure:"password"`
	Database      int    `mapstructure:"database"`
	ConsumerGroup string `mapstructure:"consumer_group"`
	MinIdleTime   int    `mapstructure:"min_idle_time"`
	StatusTTL     int    `mapstructure:"status_ttl"`
}

type WorkerConfig struct {
	MaxWorkers int `mapstructure:"max_workers"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file (config.yaml in the working directory
// when file is empty) with environment variable overrides. A missing default
// config file is not an error: defaults and the environment still apply.
func Load(file string) (*Config, error) {
	if file != "" {
		viper.SetConfigFile(file)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "localhost")

	viper.SetDefault("catalog.base_url", "")
	viper.SetDefault("catalog.timeout", 30)
	viper.SetDefault("catalog.max_requests_per_second", 5)
	viper.SetDefault("catalog.courses_file", "")
	viper.SetDefault("catalog.majors_dir", "")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "advisor")
	viper.SetDefault("database.user", "advisor_user")
	viper.SetDefault("database.password", "advisor_pass")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.database", 0)
	viper.SetDefault("redis.consumer_group", "advisor_consumer")
	viper.SetDefault("redis.min_idle_time", 120)
	viper.SetDefault("redis.status_ttl", 86400)

	viper.SetDefault("worker.max_workers", 4)

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
}
