// Package config provides configuration structures for the plan explorer CLI.
package config

import (
	"fmt"
	"time"
)

// Config represents the explorer configuration.
type Config struct {
	// Database connection string, libpq style or URL.
	DSN string `yaml:"dsn" json:"dsn"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// Resolution is the number of selectivity samples per predicate axis.
	Resolution int `yaml:"resolution" json:"resolution"`

	// QueryTimeout bounds each engine round trip.
	QueryTimeout time.Duration `yaml:"query_timeout" json:"query_timeout"`

	// Metrics configuration
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`

	// Connection pool configuration
	ConnectionPool ConnectionPoolConfig `yaml:"connection_pool" json:"connection_pool"`
}

// MetricsConfig represents metrics configuration.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Address string `yaml:"address" json:"address"`
	Path    string `yaml:"path" json:"path"`
}

// ConnectionPoolConfig represents connection pool configuration.
type ConnectionPoolConfig struct {
	MaxConnections    int32         `yaml:"max_connections" json:"max_connections"`
	MinConnections    int32         `yaml:"min_connections" json:"min_connections"`
	ConnMaxLifetime   time.Duration `yaml:"conn_max_lifetime" json:"conn_max_lifetime"`
	ConnMaxIdleTime   time.Duration `yaml:"conn_max_idle_time" json:"conn_max_idle_time"`
	HealthCheckPeriod time.Duration `yaml:"health_check_period" json:"health_check_period"`
	ConnectTimeout    time.Duration `yaml:"connect_timeout" json:"connect_timeout"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.DSN == "" {
		return fmt.Errorf("dsn is required")
	}

	if c.Resolution <= 0 {
		c.Resolution = 10
	}
	if 100%c.Resolution != 0 {
		return fmt.Errorf("resolution must divide 100, got %d", c.Resolution)
	}

	if c.QueryTimeout <= 0 {
		c.QueryTimeout = 1 * time.Minute
	}

	if c.Metrics.Enabled {
		if c.Metrics.Address == "" {
			c.Metrics.Address = ":9090"
		}
		if c.Metrics.Path == "" {
			c.Metrics.Path = "/metrics"
		}
	}

	if c.ConnectionPool.MaxConnections <= 0 {
		c.ConnectionPool.MaxConnections = 4
	}
	if c.ConnectionPool.MinConnections < 0 {
		c.ConnectionPool.MinConnections = 0
	}

	return nil
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		DSN:          "",
		LogLevel:     "info",
		Resolution:   10,
		QueryTimeout: 1 * time.Minute,
		Metrics: MetricsConfig{
			Enabled: false,
			Address: ":9090",
			Path:    "/metrics",
		},
		ConnectionPool: ConnectionPoolConfig{
			MaxConnections:    4,
			MinConnections:    0,
			ConnMaxLifetime:   30 * time.Minute,
			ConnMaxIdleTime:   10 * time.Minute,
			HealthCheckPeriod: 1 * time.Minute,
			ConnectTimeout:    10 * time.Second,
		},
	}
}
