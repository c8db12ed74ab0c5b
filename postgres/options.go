package postgres

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// validIdentifier matches valid PostgreSQL unquoted identifiers.
// Must start with letter or underscore, followed by letters, digits, or underscores.
var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// SSLMode represents PostgreSQL SSL connection modes.
type SSLMode string

const (
	SSLModeDisable    SSLMode = "disable"     // No SSL
	SSLModeAllow      SSLMode = "allow"       // Try non-SSL first, then SSL
	SSLModePrefer     SSLMode = "prefer"      // Try SSL first, then non-SSL (default)
	SSLModeRequire    SSLMode = "require"     // Only SSL (no certificate verification)
	SSLModeVerifyCA   SSLMode = "verify-ca"   // SSL with CA verification
	SSLModeVerifyFull SSLMode = "verify-full" // SSL with CA and hostname verification
)

// ParseSSLMode converts a configuration string into an SSLMode.
func ParseSSLMode(s string) (SSLMode, error) {
	mode := SSLMode(s)
	if !mode.isValid() {
		return "", fmt.Errorf("invalid SSL mode: %s", s)
	}

	return mode, nil
}

// Option is a functional option for configuring a Client.
type Option func(*options)

type options struct {
	host                      string
	port                      int
	user                      string
	password                  string
	database                  string
	sslMode                   SSLMode
	poolMaxConnections        *int32
	poolMinConnections        *int32
	poolMaxConnectionLifetime *time.Duration
	poolMaxConnectionIdleTime *time.Duration
	schema                    string
	table                     string
	dayKeyColumn              string
	timeColumn                string
	priceColumn               string
}

func newOptions() *options {
	return &options{
		host:         "localhost",
		port:         5432,
		sslMode:      SSLModePrefer,
		schema:       "public",
		table:        "fares",
		dayKeyColumn: "day_key",
		timeColumn:   "time",
		priceColumn:  "price",
	}
}

func WithHost(host string) Option {
	return func(o *options) { o.host = host }
}

func WithPort(port int) Option {
	return func(o *options) { o.port = port }
}

func WithUser(user string) Option {
	return func(o *options) { o.user = user }
}

func WithPassword(password string) Option {
	return func(o *options) { o.password = password }
}

func WithDatabase(database string) Option {
	return func(o *options) { o.database = database }
}

func WithSSLMode(mode SSLMode) Option {
	return func(o *options) { o.sslMode = mode }
}

func WithPoolMaxConnections(n int32) Option {
	return func(o *options) { o.poolMaxConnections = &n }
}

func WithPoolMinConnections(n int32) Option {
	return func(o *options) { o.poolMinConnections = &n }
}

func WithPoolMaxConnectionLifetime(d time.Duration) Option {
	return func(o *options) { o.poolMaxConnectionLifetime = &d }
}

func WithPoolMaxConnectionIdleTime(d time.Duration) Option {
	return func(o *options) { o.poolMaxConnectionIdleTime = &d }
}

// WithSchema sets the schema holding the fares table. Default: "public".
func WithSchema(name string) Option {
	return func(o *options) { o.schema = name }
}

// WithTable sets the fares table name. Default: "fares".
func WithTable(name string) Option {
	return func(o *options) { o.table = name }
}

// WithDayKeyColumn sets the column holding the YY-MM-DD day key. It plays
// the role of the partition key. Default: "day_key".
func WithDayKeyColumn(name string) Option {
	return func(o *options) { o.dayKeyColumn = name }
}

// WithTimeColumn sets the column holding the record time. Rows are returned
// ordered by this column. Default: "time".
func WithTimeColumn(name string) Option {
	return func(o *options) { o.timeColumn = name }
}

// WithPriceColumn sets the column holding the raw price string. Default:
// "price".
func WithPriceColumn(name string) Option {
	return func(o *options) { o.priceColumn = name }
}

type dbRow struct {
	DataType   string
	IsNullable string
}

func (o *options) validate() error {
	if o.port < 1 || o.port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", o.port)
	}

	if o.user == "" {
		return errors.New("user is required")
	}

	if o.database == "" {
		return errors.New("database is required")
	}

	if !o.sslMode.isValid() {
		return fmt.Errorf("invalid SSL mode: %s", o.sslMode)
	}

	if err := validateIdentifier(o.schema); err != nil {
		return fmt.Errorf("invalid schema name: %w", err)
	}

	if err := validateIdentifier(o.table); err != nil {
		return fmt.Errorf("invalid table name: %w", err)
	}

	if err := validateIdentifier(o.dayKeyColumn); err != nil {
		return fmt.Errorf("invalid day key column name: %w", err)
	}

	if err := validateIdentifier(o.timeColumn); err != nil {
		return fmt.Errorf("invalid time column name: %w", err)
	}

	if err := validateIdentifier(o.priceColumn); err != nil {
		return fmt.Errorf("invalid price column name: %w", err)
	}

	return nil
}

func validateIdentifier(name string) error {
	if !validIdentifier.MatchString(name) {
		return fmt.Errorf("identifier %q contains invalid characters", name)
	}

	return nil
}

// isValid returns true if the SSL mode is a valid PostgreSQL SSL mode.
func (s SSLMode) isValid() bool {
	switch s {
	case SSLModeDisable, SSLModeAllow, SSLModePrefer, SSLModeRequire, SSLModeVerifyCA, SSLModeVerifyFull:
		return true
	default:
		return false
	}
}

func (o *options) connectionString() string {
	host := net.JoinHostPort(o.host, strconv.Itoa(o.port))

	user := url.QueryEscape(o.user)

	if o.password != "" {
		user += ":" + url.QueryEscape(o.password)
	}

	return fmt.Sprintf("postgres://%s@%s/%s?sslmode=%s", user, host, o.database, o.sslMode)
}

// textTypes are the column types a day key, time or price may be stored as.
var textTypes = []string{"text", "character varying", "character"}

func (o *options) verifySchema(actualColumns map[string]*dbRow) error {
	for _, column := range []string{o.dayKeyColumn, o.timeColumn, o.priceColumn} {
		actual, ok := actualColumns[column]
		if !ok {
			return fmt.Errorf("expected column '%s.%s' not found in current database schema", o.table, column)
		}

		if !isTextType(actual.DataType) {
			return fmt.Errorf("data type mismatch for '%s.%s': expected one of %s, got %s", o.table, column, strings.Join(textTypes, ", "), actual.DataType)
		}
	}

	if !strings.EqualFold(actualColumns[o.dayKeyColumn].IsNullable, "NO") {
		return fmt.Errorf("nullability mismatch for '%s.%s': expected NO, got %s", o.table, o.dayKeyColumn, actualColumns[o.dayKeyColumn].IsNullable)
	}

	return nil
}

func isTextType(dataType string) bool {
	for _, t := range textTypes {
		if strings.EqualFold(dataType, t) {
			return true
		}
	}

	return false
}
