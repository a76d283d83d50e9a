package pgengine

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Connection holds the settings needed to reach the PostgreSQL server.
// Credentials must already be resolved; this package never performs
// cloud or IAM credential exchange.
type Connection struct {
	// Host is the PostgreSQL server hostname or IP address
	Host string

	// Port is the PostgreSQL server port
	Port string

	// User is the database user name
	User string

	// Password is the database user password
	Password string

	// DbName is the database to connect to
	DbName string

	// SSLMode is the libpq sslmode setting ("disable", "require", ...)
	// Default: "disable"
	SSLMode string
}

const defaultConnMaxLifetime = 1 * time.Minute

// Pool holds connection pool tuning parameters.
type Pool struct {
	// MaxConns is the maximum number of pooled connections.
	// Default: 50
	MaxConns int32

	// MinConns is the number of idle connections the pool keeps open.
	// Default: 2
	MinConns int32

	// ConnMaxLifetime is the maximum age of a pooled connection.
	// Default: 1 minute
	ConnMaxLifetime time.Duration
}

// Config contains all configuration for engine creation.
type Config struct {
	Connection Connection
	Pool       Pool

	// Logger is an optional structured logger (satisfied by logger.Logger).
	Logger Logger
}

// Logger is the minimal logging surface this package needs.
// logger.Logger satisfies it.
type Logger interface {
	Error(msg string, err error, fields ...map[string]interface{})
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
}

// NewConfig reads the engine configuration from PGENGINE_* environment
// variables.
func NewConfig() Config {
	maxConns := int32(0)
	if v := os.Getenv("PGENGINE_MAX_CONNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxConns = int32(n)
		}
	}

	return Config{
		Connection: Connection{
			Host:     os.Getenv("PGENGINE_HOST"),
			Port:     os.Getenv("PGENGINE_PORT"),
			User:     os.Getenv("PGENGINE_USER"),
			Password: os.Getenv("PGENGINE_PASSWORD"),
			DbName:   os.Getenv("PGENGINE_DBNAME"),
			SSLMode:  os.Getenv("PGENGINE_SSLMODE"),
		},
		Pool: Pool{MaxConns: maxConns},
	}
}

// Validate ensures required fields are present.
func (c *Config) Validate() error {
	if c.Connection.Host == "" {
		return fmt.Errorf("pgengine: missing connection host")
	}
	if c.Connection.User == "" {
		return fmt.Errorf("pgengine: missing connection user")
	}
	if c.Connection.DbName == "" {
		return fmt.Errorf("pgengine: missing database name")
	}
	return nil
}

// connString assembles the libpq-style connection string, applying defaults
// for unset fields.
func (c *Config) connString() string {
	port := c.Connection.Port
	if port == "" {
		port = "5432"
	}
	sslMode := c.Connection.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Connection.Host,
		port,
		c.Connection.User,
		c.Connection.Password,
		c.Connection.DbName,
		sslMode)
}
