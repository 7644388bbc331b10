package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/veilstore/veilstore/pkg/observability/logger"
)

// Loader defines the interface for loading configuration
type Loader interface {
	Load() (*Config, error)
	Validate(*Config) error
}

// ViperLoader implements Loader using Viper for configuration management.
// Precedence: flags > environment > config file > defaults.
type ViperLoader struct {
	configFile string
	envPrefix  string
	flags      *pflag.FlagSet
}

// NewViperLoader creates a new ViperLoader.
// configFile: path to configuration file (optional, can be empty)
// envPrefix: prefix for environment variables (optional; the store variables
// MONGO_URI and MONGO_DATABASE are always bound unprefixed as well)
func NewViperLoader(configFile, envPrefix string) *ViperLoader {
	return &ViperLoader{
		configFile: configFile,
		envPrefix:  envPrefix,
	}
}

// WithFlags registers a pflag set whose values override environment and file
// configuration. Only flags that are defined in the set are bound.
func (l *ViperLoader) WithFlags(flags *pflag.FlagSet) *ViperLoader {
	l.flags = flags
	return l
}

// Load loads configuration with precedence: flags > ENV > file > defaults
func (l *ViperLoader) Load() (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	l.setDefaults(v, defaults)

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", l.configFile, err)
		}
	}

	l.bindEnvVars(v)
	if err := l.bindFlags(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := l.Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the loaded configuration for fatal problems.
func (l *ViperLoader) Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Mongo.URI) == "" {
		return NewConfigurationError("MONGO_URI", "environment variable is not set")
	}
	if strings.TrimSpace(cfg.Mongo.Database) == "" {
		return NewConfigurationError("MONGO_DATABASE", "database name must not be empty")
	}
	if _, err := logger.ParseLogLevel(cfg.Logging.Level); err != nil {
		return NewConfigurationError("LOG_LEVEL", err.Error())
	}
	if _, err := logger.ParseLogFormat(cfg.Logging.Format); err != nil {
		return NewConfigurationError("LOG_FORMAT", err.Error())
	}
	return nil
}

// setDefaults seeds viper with the default configuration values
func (l *ViperLoader) setDefaults(v *viper.Viper, defaults Config) {
	v.SetDefault("service.name", defaults.Service.Name)
	v.SetDefault("service.environment", defaults.Service.Environment)

	v.SetDefault("mongo.uri", defaults.Mongo.URI)
	v.SetDefault("mongo.database", defaults.Mongo.Database)
	v.SetDefault("mongo.connect_timeout", defaults.Mongo.ConnectTimeout)
	v.SetDefault("mongo.operation_timeout", defaults.Mongo.OperationTimeout)

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.async.enabled", defaults.Logging.Async.Enabled)
	v.SetDefault("logging.async.queue_size", defaults.Logging.Async.QueueSize)
	v.SetDefault("logging.async.worker_count", defaults.Logging.Async.WorkerCount)
	v.SetDefault("logging.async.drop_when_full", defaults.Logging.Async.DropWhenFull)
}

// bindEnvVars explicitly binds environment variables for nested structs
func (l *ViperLoader) bindEnvVars(v *viper.Viper) {
	v.BindEnv("service.name", l.prefixedEnv("SERVICE_NAME"))
	v.BindEnv("service.environment", l.prefixedEnv("SERVICE_ENVIRONMENT"), l.prefixedEnv("ENVIRONMENT"))

	// The store variables keep their historical unprefixed names so existing
	// deployments keep working.
	v.BindEnv("mongo.uri", l.prefixedEnv("MONGO_URI"), "MONGO_URI")
	v.BindEnv("mongo.database", l.prefixedEnv("MONGO_DATABASE"), "MONGO_DATABASE")
	v.BindEnv("mongo.connect_timeout", l.prefixedEnv("MONGO_CONNECT_TIMEOUT"))
	v.BindEnv("mongo.operation_timeout", l.prefixedEnv("MONGO_OPERATION_TIMEOUT"))

	v.BindEnv("logging.level", l.prefixedEnv("LOG_LEVEL"))
	v.BindEnv("logging.format", l.prefixedEnv("LOG_FORMAT"))
	v.BindEnv("logging.async.enabled", l.prefixedEnv("LOG_ASYNC_ENABLED"))
	v.BindEnv("logging.async.queue_size", l.prefixedEnv("LOG_ASYNC_QUEUE_SIZE"))
	v.BindEnv("logging.async.worker_count", l.prefixedEnv("LOG_ASYNC_WORKER_COUNT"))
	v.BindEnv("logging.async.drop_when_full", l.prefixedEnv("LOG_ASYNC_DROP_WHEN_FULL"))
}

// bindFlags binds any registered command-line flags to their config keys
func (l *ViperLoader) bindFlags(v *viper.Viper) error {
	if l.flags == nil {
		return nil
	}
	bindings := map[string]string{
		"mongo.uri":      "mongo-uri",
		"mongo.database": "mongo-database",
		"logging.level":  "log-level",
		"logging.format": "log-format",
	}
	for key, flagName := range bindings {
		flag := l.flags.Lookup(flagName)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flagName, err)
		}
	}
	return nil
}

func (l *ViperLoader) prefixedEnv(name string) string {
	if l.envPrefix == "" {
		return name
	}
	return l.envPrefix + "_" + name
}

// LoggerConfig converts the logging section into a logger.Config.
func (c *Config) LoggerConfig() (logger.Config, error) {
	level, err := logger.ParseLogLevel(c.Logging.Level)
	if err != nil {
		return logger.Config{}, err
	}
	format, err := logger.ParseLogFormat(c.Logging.Format)
	if err != nil {
		return logger.Config{}, err
	}
	return logger.Config{
		Level:  level,
		Format: format,
		Async: logger.AsyncConfig{
			Enabled:      c.Logging.Async.Enabled,
			QueueSize:    c.Logging.Async.QueueSize,
			WorkerCount:  c.Logging.Async.WorkerCount,
			DropWhenFull: c.Logging.Async.DropWhenFull,
		},
	}, nil
}
