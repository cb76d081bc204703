// Package config provides configuration management for the graph analytics engine.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Engine   EngineConfig   `mapstructure:"engine"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Runtime  RuntimeConfig  `mapstructure:"runtime"`
	Log      LogConfig      `mapstructure:"log"`
}

// EngineConfig holds algorithm-run related configuration: where result
// artifacts land and the default stepping parameters used when a CLI
// invocation does not override them with -p.
type EngineConfig struct {
	Version      string  `mapstructure:"version"`
	DataDir      string  `mapstructure:"data_dir"`
	DefaultRho   int     `mapstructure:"default_rho"`
	DefaultDelta int     `mapstructure:"default_delta"`
	DefaultBeta  float64 `mapstructure:"default_beta"`
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Type     string `mapstructure:"type"` // postgres, mysql or sqlite
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	MaxConns int    `mapstructure:"max_conns"`
}

// StorageConfig holds object storage configuration.
type StorageConfig struct {
	Type      string `mapstructure:"type"` // cos or local
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	SecretID  string `mapstructure:"secret_id"`
	SecretKey string `mapstructure:"secret_key"`
	Domain    string `mapstructure:"domain"`     // e.g., "myqcloud.com"
	Scheme    string `mapstructure:"scheme"`     // e.g., "https" or "http"
	LocalPath string `mapstructure:"local_path"` // for local storage
}

// TelemetryConfig holds tracing exporter configuration.
type TelemetryConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Protocol string `mapstructure:"protocol"` // grpc or http
	Enabled  bool   `mapstructure:"enabled"`
}

// RuntimeConfig tunes the fork-join parallel runtime shared by every
// algorithm driver: worker count, and the granularity below which a
// parallel_for/blocked_for call degrades to sequential execution.
type RuntimeConfig struct {
	MaxWorkers     int `mapstructure:"max_workers"`
	DefaultBlock   int `mapstructure:"default_block"`
	SeqThreshold   int `mapstructure:"seq_threshold"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"` // json or text
}

// Load reads configuration from the specified file path.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// Determine config file path
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/pasgal")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		// Check if it's a "file not found" error (either viper's type or os error)
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, use defaults
			fmt.Println("Config file not found, using defaults")
		} else if os.IsNotExist(err) {
			// File specified but doesn't exist, use defaults
			fmt.Printf("Config file %s not found, using defaults\n", configPath)
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Allow environment variables to override config
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadFromReader loads configuration from an io.Reader (useful for testing).
func LoadFromReader(configType string, content []byte) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Engine defaults
	v.SetDefault("engine.version", "1.0.0")
	v.SetDefault("engine.data_dir", "./data")
	v.SetDefault("engine.default_rho", 1<<20)
	v.SetDefault("engine.default_delta", 1<<15)
	v.SetDefault("engine.default_beta", 0.2)

	// Database defaults
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.database", "./data/pasgal.db")
	v.SetDefault("database.max_conns", 10)

	// Storage defaults
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "./storage")

	// Runtime defaults
	v.SetDefault("runtime.max_workers", 0) // 0 = GOMAXPROCS
	v.SetDefault("runtime.default_block", 1024)
	v.SetDefault("runtime.seq_threshold", 1024)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.output_path", "./logs")
	v.SetDefault("log.format", "text")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "postgres", "mysql":
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required for %s", c.Database.Type)
		}
	case "sqlite", "":
		// file-based, no host required
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}

	if c.Runtime.MaxWorkers < 0 {
		return fmt.Errorf("runtime.max_workers must be >= 0")
	}

	return nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *Config) EnsureDataDir() error {
	if c.Engine.DataDir == "" {
		return nil
	}
	return os.MkdirAll(c.Engine.DataDir, 0755)
}

// GetRunDir returns the run-specific output directory path.
func (c *Config) GetRunDir(runID string) string {
	return filepath.Join(c.Engine.DataDir, runID)
}
