package db

import (
	"errors"
	"fmt"
	"log/slog"
)

// DefaultPort is the MySQL port used when none is given.
const DefaultPort = 3306

// ConnectionConfig locates and authenticates against one database. It is an
// immutable value: the With* methods return modified copies.
type ConnectionConfig struct {
	driver   string
	host     string
	user     string
	password string
	database string
	port     int
}

// NewConnectionConfig stores the parameters verbatim for the mysql driver on
// DefaultPort. Nothing is validated until Open.
func NewConnectionConfig(host, user, password, database string) ConnectionConfig {
	return ConnectionConfig{
		driver:   MySQLDriver{}.Name(),
		host:     host,
		user:     user,
		password: password,
		database: database,
		port:     DefaultPort,
	}
}

// WithPort returns a copy of c using port.
func (c ConnectionConfig) WithPort(port int) ConnectionConfig {
	c.port = port
	return c
}

// WithDriver returns a copy of c using a different registered driver
// (e.g. "sqlite3", where database is the file path).
func (c ConnectionConfig) WithDriver(name string) ConnectionConfig {
	c.driver = name
	return c
}

func (c ConnectionConfig) Driver() string   { return c.driver }
func (c ConnectionConfig) Host() string     { return c.host }
func (c ConnectionConfig) User() string     { return c.user }
func (c ConnectionConfig) Password() string { return c.password }
func (c ConnectionConfig) Database() string { return c.database }
func (c ConnectionConfig) Port() int        { return c.port }

// Descriptor returns the connection descriptor, e.g.
// "mysql:host=localhost;dbname=my_database;port=3306". It never contains
// credentials and is safe to log.
func (c ConnectionConfig) Descriptor() string {
	return fmt.Sprintf("%s:host=%s;dbname=%s;port=%d", c.driver, c.host, c.database, c.port)
}

// String implements fmt.Stringer without exposing the password.
func (c ConnectionConfig) String() string { return c.Descriptor() }

// LogValue implements slog.LogValuer without exposing the password.
func (c ConnectionConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("driver", c.driver),
		slog.String("host", c.host),
		slog.String("user", c.user),
		slog.String("database", c.database),
		slog.Int("port", c.port),
	)
}

// DSN returns the driver-native data source name, credentials included.
func (c ConnectionConfig) DSN() (string, error) {
	drv, err := LookupDriver(c.driver)
	if err != nil {
		return "", err
	}
	return drv.DSN(c.driverOptions())
}

// Open opens a database handle for c. Tuning fields of cfg (pool, timeout,
// retry, hooks) are honoured; its DSN, DriverName and ErrorMapper are
// replaced. Connect failures are returned as *ConnectionError so the caller
// decides whether to abort; use MustOpen to crash instead.
func (c ConnectionConfig) Open(cfg Config) (*DB, error) {
	cfg.Target = c.Descriptor()
	d, err := OpenWithDriver(c.driver, c.driverOptions(), cfg)
	if err != nil {
		var ce *ConnectionError
		if errors.As(err, &ce) {
			return nil, err
		}
		return nil, &ConnectionError{Driver: c.driver, Descriptor: c.Descriptor(), Cause: err}
	}
	return d, nil
}

// MustOpen is like Open but panics with the connection error.
func (c ConnectionConfig) MustOpen(cfg Config) *DB {
	d, err := c.Open(cfg)
	if err != nil {
		panic(err)
	}
	return d
}

func (c ConnectionConfig) driverOptions() DriverOptions {
	return DriverOptions{
		Host:     c.host,
		Port:     c.port,
		User:     c.user,
		Password: c.password,
		Database: c.database,
	}
}
