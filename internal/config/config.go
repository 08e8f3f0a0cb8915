package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	MongoDB MongoDBConfig
	JWT     JWTConfig
	Push    PushConfig
	Rewards RewardsConfig
	Jobs    JobsConfig
	Log     LogConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port            string
	AllowedHosts    []string
	ShutdownTimeout time.Duration
}

// StorageConfig selects the repository backend
type StorageConfig struct {
	// Driver is "mongodb" or "memory"
	Driver string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret string
}

// PushConfig holds push provider and fan-out configuration
type PushConfig struct {
	// Provider is "fcm" or "mock"
	Provider        string
	ProjectID       string
	CredentialsFile string
	BaseURL         string
	// Timeout bounds each individual send
	Timeout       time.Duration
	Concurrency   int
	RatePerSecond float64
	Burst         int
}

// RewardsConfig holds reward amounts
type RewardsConfig struct {
	ReferralBonus int
}

// JobsConfig holds the maintenance scheduler configuration
type JobsConfig struct {
	Enabled             bool
	MaintenanceSchedule string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Load loads configuration from a .env file, an optional config file and
// environment variables. An empty path searches for config.yaml in the usual places.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(path == "" && errors.Is(err, fs.ErrNotExist)) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks values that have no safe default
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "mongodb":
		if c.MongoDB.URI == "" {
			return errors.New("config: MongoDB.URI is required for the mongodb driver")
		}
	case "memory":
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Push.Provider {
	case "fcm":
		if c.Push.CredentialsFile == "" {
			return errors.New("config: Push.CredentialsFile is required for the fcm provider")
		}
	case "mock":
	default:
		return fmt.Errorf("config: unknown push provider %q", c.Push.Provider)
	}

	if c.JWT.Secret == "" {
		return errors.New("config: JWT.Secret is required")
	}
	if c.Push.Concurrency < 1 {
		return errors.New("config: Push.Concurrency must be at least 1")
	}
	if c.Push.Timeout <= 0 {
		return errors.New("config: Push.Timeout must be positive")
	}
	if c.Rewards.ReferralBonus < 0 {
		return errors.New("config: Rewards.ReferralBonus must not be negative")
	}
	return nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("Server.Port", "4000")
	v.SetDefault("Server.AllowedHosts", []string{"localhost:3000"})
	v.SetDefault("Server.ShutdownTimeout", 15*time.Second)
	v.SetDefault("Storage.Driver", "mongodb")
	v.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	v.SetDefault("MongoDB.Database", "safeplate")
	v.SetDefault("MongoDB.ConnectTimeout", 10*time.Second)
	v.SetDefault("JWT.Secret", "")
	v.SetDefault("Push.Provider", "mock")
	v.SetDefault("Push.ProjectID", "")
	v.SetDefault("Push.CredentialsFile", "")
	v.SetDefault("Push.BaseURL", "")
	v.SetDefault("Push.Timeout", 5*time.Second)
	v.SetDefault("Push.Concurrency", 16)
	v.SetDefault("Push.RatePerSecond", 100.0)
	v.SetDefault("Push.Burst", 20)
	v.SetDefault("Rewards.ReferralBonus", 50)
	v.SetDefault("Jobs.Enabled", true)
	v.SetDefault("Jobs.MaintenanceSchedule", "@every 15m")
	v.SetDefault("Log.Level", "info")
	v.SetDefault("Log.Format", "text")
	v.SetDefault("Log.File", "")
	v.SetDefault("Log.MaxSizeMB", 100)
	v.SetDefault("Log.MaxBackups", 5)
	v.SetDefault("Log.MaxAgeDays", 30)
}
