// Package config loads the process configuration of the fare export from the
// environment, optionally seeded from a .env file.
//
// Every variable is read with the FAREEXPORT_ prefix. When the prefixed name
// is not set the unprefixed name is used instead, so the ACCESS_KEY and
// SECRET_KEY variables of existing deployments keep working.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/faretracker/fareexport/csvfile"
	"github.com/faretracker/fareexport/export"
	"github.com/faretracker/fareexport/logging"
	"github.com/faretracker/fareexport/postgres"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is the environment variable prefix.
const Prefix = "FAREEXPORT"

// Store backends.
const (
	StoreDynamoDB = "dynamodb"
	StorePostgres = "postgres"
)

// Config is the process configuration.
type Config struct {
	Year  int `envconfig:"YEAR"`
	Month int `envconfig:"MONTH"`

	Store        string `envconfig:"STORE" default:"dynamodb"`
	TableName    string `envconfig:"TABLE_NAME"`
	PartitionKey string `envconfig:"PARTITION_KEY" default:"date"`
	Region       string `envconfig:"REGION" default:"us-east-2"`
	AccessKey    string `envconfig:"ACCESS_KEY"`
	SecretKey    string `envconfig:"SECRET_KEY"`
	MaxAttempts  int    `envconfig:"MAX_ATTEMPTS" default:"1"`

	ConsistentRead   bool `envconfig:"CONSISTENT_READ" default:"false"`
	FollowPagination bool `envconfig:"FOLLOW_PAGINATION" default:"false"`

	PostgresHost     string `envconfig:"PG_HOST" default:"localhost"`
	PostgresPort     int    `envconfig:"PG_PORT" default:"5432"`
	PostgresUser     string `envconfig:"PG_USER"`
	PostgresPassword string `envconfig:"PG_PASSWORD"`
	PostgresDatabase string `envconfig:"PG_DATABASE"`
	PostgresSSLMode  string `envconfig:"PG_SSLMODE" default:"prefer"`
	PostgresTable    string `envconfig:"PG_TABLE" default:"fares"`

	OutputDir     string        `envconfig:"OUTPUT_DIR" default:"data"`
	WritePolicy   string        `envconfig:"WRITE_POLICY" default:"overwrite"`
	FailurePolicy string        `envconfig:"FAILURE_POLICY" default:"abort"`
	StrictPrices  bool          `envconfig:"STRICT_PRICES" default:"false"`
	Threshold     int           `envconfig:"THRESHOLD" default:"700"`
	QueryTimeout  time.Duration `envconfig:"QUERY_TIMEOUT" default:"0s"`

	NotifyQueue string `envconfig:"NOTIFY_QUEUE"`
	MetricsFile string `envconfig:"METRICS_FILE"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

// Load reads the given .env files (".env" when none are given) into the
// environment and processes the FAREEXPORT_ variables. Missing .env files are
// ignored and variables already set in the environment take precedence.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	var cfg Config

	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	return &cfg, nil
}

// Validate checks required fields and enumerated values.
func (c *Config) Validate() error {
	if c.Month < 1 || c.Month > 12 {
		return fmt.Errorf("month must be between 1 and 12, got %d", c.Month)
	}

	if c.Year < 1000 {
		return fmt.Errorf("year must have four digits, got %d", c.Year)
	}

	switch c.Store {
	case StoreDynamoDB:
		if c.TableName == "" {
			return errors.New("table name is required for the dynamodb store")
		}

		if c.PartitionKey == "" {
			return errors.New("partition key is required")
		}

		if c.MaxAttempts < 1 || c.MaxAttempts > 10 {
			return fmt.Errorf("max attempts must be between 1 and 10, got %d", c.MaxAttempts)
		}

		if (c.AccessKey == "") != (c.SecretKey == "") {
			return errors.New("access key and secret key must be set together")
		}
	case StorePostgres:
		if c.PostgresUser == "" || c.PostgresDatabase == "" {
			return errors.New("postgres user and database are required for the postgres store")
		}

		if _, err := postgres.ParseSSLMode(c.PostgresSSLMode); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid store: %s", c.Store)
	}

	if c.OutputDir == "" {
		return errors.New("output directory is required")
	}

	if _, err := csvfile.ParseWritePolicy(c.WritePolicy); err != nil {
		return err
	}

	if _, err := export.ParseFailurePolicy(c.FailurePolicy); err != nil {
		return err
	}

	if c.Threshold < 0 {
		return fmt.Errorf("threshold must not be negative, got %d", c.Threshold)
	}

	if c.QueryTimeout < 0 {
		return fmt.Errorf("query timeout must not be negative, got %s", c.QueryTimeout)
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	switch logging.Format(c.LogFormat) {
	case logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("invalid log format: %s", c.LogFormat)
	}

	return nil
}
