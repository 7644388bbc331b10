package config

import "time"

// DefaultDatabase is the logical database used when MONGO_DATABASE is unset.
const DefaultDatabase = "fitness_db"

// Config is the root configuration for the data-access layer.
type Config struct {
	Service ServiceConfig
	Mongo   MongoConfig
	Logging LoggingConfig
}

// ServiceConfig configures service identity metadata.
type ServiceConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// MongoConfig configures the connection to the document store.
type MongoConfig struct {
	// URI is the store connection string. Required; there is no default.
	URI string `mapstructure:"uri"`
	// Database is the logical database name.
	Database         string        `mapstructure:"database"`
	ConnectTimeout   time.Duration `mapstructure:"connect_timeout"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
}

// LoggingConfig configures structured logging output.
type LoggingConfig struct {
	Level  string             `mapstructure:"level"`
	Format string             `mapstructure:"format"`
	Async  AsyncLoggingConfig `mapstructure:"async"`
}

// AsyncLoggingConfig configures the async logging wrapper.
type AsyncLoggingConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	QueueSize    int  `mapstructure:"queue_size"`
	WorkerCount  int  `mapstructure:"worker_count"`
	DropWhenFull bool `mapstructure:"drop_when_full"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Service: ServiceConfig{
			Name:        "veilstore",
			Environment: "development",
		},
		Mongo: MongoConfig{
			Database:         DefaultDatabase,
			ConnectTimeout:   5 * time.Second,
			OperationTimeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Async: AsyncLoggingConfig{
				QueueSize:   1024,
				WorkerCount: 1,
			},
		},
	}
}
