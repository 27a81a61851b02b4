package config

import (
	env "github.com/caarlos0/env/v11"
)

type DatabaseType string

const (
	DatabaseTypePostgreSQL DatabaseType = "postgresql"
	DatabaseTypeMongoDB    DatabaseType = "mongodb"
	DatabaseTypeMemory     DatabaseType = "memory"
)

// Config holds the application configuration
// Every field is read from a DAVINCI_ prefixed environment variable
type Config struct {
	ServerAddress  string       `env:"SERVER_ADDRESS" envDefault:":8080"`
	DatabaseType   DatabaseType `env:"DATABASE_TYPE" envDefault:"memory"`
	DatabaseURL    string       `env:"DATABASE_URL" envDefault:"postgres://localhost:5432/davinci?sslmode=disable"`
	DatabaseName   string       `env:"DATABASE_NAME" envDefault:"davinci"`
	CollectionName string       `env:"COLLECTION_NAME" envDefault:"snapshots"`
	SeedFrom       string       `env:"SEED_FROM" envDefault:""`
	Version        string       `env:"VERSION" envDefault:"dev"`

	// OpenAPI document
	DocTitle        string `env:"DOC_TITLE" envDefault:"Davinci API"`
	DocDescription  string `env:"DOC_DESCRIPTION" envDefault:""`
	SchemaRefPrefix string `env:"SCHEMA_REF_PREFIX" envDefault:""`

	// SnapshotSchedule is a cron expression with a seconds field; "off" disables the job
	SnapshotSchedule string `env:"SNAPSHOT_SCHEDULE" envDefault:"0 */15 * * * *"`
	APIBasePath      string `env:"API_BASE_PATH" envDefault:"/v0"`
}

// SnapshotJobEnabled reports whether the scheduled snapshot job should run
func (c *Config) SnapshotJobEnabled() bool {
	return c.SnapshotSchedule != "" && c.SnapshotSchedule != "off"
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	cfg, err := Parse(nil)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Parse reads the configuration from the process environment, or from
// environment when it is not nil.
func Parse(environment map[string]string) (*Config, error) {
	var cfg Config
	err := env.ParseWithOptions(&cfg, env.Options{
		Prefix:      "DAVINCI_",
		Environment: environment,
	})
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
