// Package config provides configuration management for the objreg tool.
package config

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/objectregistry/pkg/errors"
)

// EnvPrefix prefixes environment variable overrides, e.g. OBJREG_LOG_LEVEL.
const EnvPrefix = "OBJREG"

// Config holds all configuration for the application.
type Config struct {
	Registry    RegistryConfig    `mapstructure:"registry"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Workload    WorkloadConfig    `mapstructure:"workload"`
	Log         LogConfig         `mapstructure:"log"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
}

// RegistryConfig holds identity registry sizing.
type RegistryConfig struct {
	InitialCapacity int     `mapstructure:"initial_capacity"`
	HashDensity     float64 `mapstructure:"hash_density"`
}

// MaintenanceConfig holds the periodic maintenance policy.
type MaintenanceConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Interval    int     `mapstructure:"interval"` // in seconds
	CleanUp     bool    `mapstructure:"cleanup"`
	Shrink      bool    `mapstructure:"shrink"`
	ShrinkRatio float64 `mapstructure:"shrink_ratio"` // shrink when size/capacity drops below
}

// IntervalDuration returns the maintenance interval as a duration.
func (m MaintenanceConfig) IntervalDuration() time.Duration {
	return time.Duration(m.Interval) * time.Second
}

// DatabaseConfig holds snapshot database configuration.
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Type     string `mapstructure:"type"` // sqlite, postgres or mysql
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Path     string `mapstructure:"path"` // sqlite file
	MaxConns int    `mapstructure:"max_conns"`
}

// StorageConfig holds report storage configuration.
type StorageConfig struct {
	Type        string `mapstructure:"type"` // cos or local
	Bucket      string `mapstructure:"bucket"`
	Region      string `mapstructure:"region"`
	SecretID    string `mapstructure:"secret_id"`
	SecretKey   string `mapstructure:"secret_key"`
	Domain      string `mapstructure:"domain"` // e.g., "myqcloud.com"
	Scheme      string `mapstructure:"scheme"` // e.g., "https" or "http"
	Endpoint    string `mapstructure:"endpoint"` // overrides the bucket URL built from the fields above
	LocalPath   string `mapstructure:"local_path"`
	Compression string `mapstructure:"compression"` // none, gzip or zstd
}

// WorkloadConfig drives the registry simulator.
type WorkloadConfig struct {
	Producers   int     `mapstructure:"producers"`
	Objects     int     `mapstructure:"objects"`
	Types       int     `mapstructure:"types"`
	RetainRatio float64 `mapstructure:"retain_ratio"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text, console or json
}

// TelemetryConfig holds tracing configuration. OTEL_* environment variables
// take precedence, see the telemetry package.
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
	Endpoint    string `mapstructure:"endpoint"`
	Protocol    string `mapstructure:"protocol"`
	Insecure    bool   `mapstructure:"insecure"`
	Sampler     string `mapstructure:"sampler"`
	SamplerArg  string `mapstructure:"sampler_arg"`
}

// Load reads configuration from the specified file path. A missing file is
// not an error; defaults and environment overrides apply.
func Load(configPath string) (*Config, error) {
	v := newViper()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("objreg")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/objreg")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, errors.Wrap(errors.CodeConfigError, "failed to read config file", err)
		}
	}

	return decode(v)
}

// LoadFromReader loads configuration from raw content (useful for testing).
func LoadFromReader(configType string, content []byte) (*Config, error) {
	v := newViper()
	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, errors.Wrap(errors.CodeConfigError, "failed to read config", err)
	}
	return decode(v)
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg, err := decode(newViper())
	if err != nil {
		panic(err)
	}
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.CodeConfigError, "failed to unmarshal config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(errors.CodeConfigError, "config validation failed", err)
	}
	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Registry defaults
	v.SetDefault("registry.initial_capacity", 1024)
	v.SetDefault("registry.hash_density", 1.0)

	// Maintenance defaults
	v.SetDefault("maintenance.enabled", false)
	v.SetDefault("maintenance.interval", 30)
	v.SetDefault("maintenance.cleanup", true)
	v.SetDefault("maintenance.shrink", false)
	v.SetDefault("maintenance.shrink_ratio", 0.25)

	// Database defaults
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.path", "./objreg.db")
	v.SetDefault("database.max_conns", 10)

	// Storage defaults
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "./reports")
	v.SetDefault("storage.compression", "none")

	// Workload defaults
	v.SetDefault("workload.producers", 4)
	v.SetDefault("workload.objects", 10000)
	v.SetDefault("workload.types", 16)
	v.SetDefault("workload.retain_ratio", 0.5)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "objreg")
	v.SetDefault("telemetry.protocol", "grpc")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if d := c.Registry.HashDensity; d <= 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return fmt.Errorf("registry hash density must be a positive number, got %v", d)
	}
	if c.Registry.InitialCapacity < 0 {
		return fmt.Errorf("registry initial capacity must not be negative")
	}

	if c.Maintenance.Enabled && c.Maintenance.Interval < 1 {
		return fmt.Errorf("maintenance interval must be at least 1 second")
	}
	if r := c.Maintenance.ShrinkRatio; r < 0 || r > 1 {
		return fmt.Errorf("maintenance shrink ratio must be within [0, 1], got %v", r)
	}

	if c.Database.Enabled {
		switch c.Database.Type {
		case "sqlite":
			if c.Database.Path == "" {
				return fmt.Errorf("database path is required for sqlite")
			}
		case "postgres", "mysql":
			if c.Database.Host == "" {
				return fmt.Errorf("database host is required")
			}
		default:
			return fmt.Errorf("unsupported database type: %s", c.Database.Type)
		}
	}

	// Storage backend validation is delegated to the storage package
	switch c.Storage.Compression {
	case "", "none", "gzip", "zstd":
	default:
		return fmt.Errorf("unsupported compression: %s", c.Storage.Compression)
	}

	if c.Workload.Producers < 1 {
		return fmt.Errorf("workload producers must be at least 1")
	}
	if c.Workload.Objects < 0 || c.Workload.Types < 0 {
		return fmt.Errorf("workload object and type counts must not be negative")
	}
	if r := c.Workload.RetainRatio; r < 0 || r > 1 {
		return fmt.Errorf("workload retain ratio must be within [0, 1], got %v", r)
	}

	return nil
}
