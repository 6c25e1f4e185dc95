package db_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skryldev/userdb/db"
)

func TestNewConnectionConfig_Defaults(t *testing.T) {
	c := db.NewConnectionConfig("localhost", "root", "", "my_database")

	assert.Equal(t, "mysql", c.Driver())
	assert.Equal(t, "localhost", c.Host())
	assert.Equal(t, "root", c.User())
	assert.Equal(t, "", c.Password())
	assert.Equal(t, "my_database", c.Database())
	assert.Equal(t, db.DefaultPort, c.Port())
	assert.Equal(t, 3306, c.Port())
}

func TestConnectionConfig_Descriptor(t *testing.T) {
	base := db.NewConnectionConfig("localhost", "root", "secret", "my_database")
	assert.Equal(t, "mysql:host=localhost;dbname=my_database;port=3306", base.Descriptor())
	assert.Equal(t, base.Descriptor(), base.Descriptor())

	variants := map[string]db.ConnectionConfig{
		"host":     db.NewConnectionConfig("db.internal", "root", "secret", "my_database"),
		"database": db.NewConnectionConfig("localhost", "root", "secret", "other"),
		"port":     base.WithPort(3307),
	}
	for name, v := range variants {
		t.Run(name, func(t *testing.T) {
			assert.NotEqual(t, base.Descriptor(), v.Descriptor())
		})
	}

	// credentials never change or appear in the descriptor
	other := db.NewConnectionConfig("localhost", "admin", "hunter2", "my_database")
	assert.Equal(t, base.Descriptor(), other.Descriptor())
	assert.NotContains(t, other.Descriptor(), "hunter2")
}

func TestConnectionConfig_WithIsCopy(t *testing.T) {
	base := db.NewConnectionConfig("localhost", "root", "", "app")
	moved := base.WithPort(4000).WithDriver("sqlite3")

	assert.Equal(t, 3306, base.Port())
	assert.Equal(t, "mysql", base.Driver())
	assert.Equal(t, 4000, moved.Port())
	assert.Equal(t, "sqlite3", moved.Driver())
}

func TestConnectionConfig_NoPasswordInLogs(t *testing.T) {
	c := db.NewConnectionConfig("localhost", "root", "hunter2", "app")

	var buf bytes.Buffer
	slog.New(slog.NewTextHandler(&buf, nil)).Info("connecting", "db", c)

	assert.Contains(t, buf.String(), "db.host=localhost")
	assert.NotContains(t, buf.String(), "hunter2")
	assert.NotContains(t, c.String(), "hunter2")
}

func TestConnectionConfig_MySQLDSN(t *testing.T) {
	c := db.NewConnectionConfig("db.example.com", "app", "p@ss", "users").WithPort(3307)

	dsn, err := c.DSN()
	require.NoError(t, err)

	parsed, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "tcp", parsed.Net)
	assert.Equal(t, "db.example.com:3307", parsed.Addr)
	assert.Equal(t, "app", parsed.User)
	assert.Equal(t, "p@ss", parsed.Passwd)
	assert.Equal(t, "users", parsed.DBName)
	assert.True(t, parsed.ParseTime)
}

func TestConnectionConfig_DSNUnknownDriver(t *testing.T) {
	_, err := db.NewConnectionConfig("h", "u", "p", "d").WithDriver("oracle").DSN()
	require.Error(t, err)
}

func TestConnectionConfig_DSNRequiresHost(t *testing.T) {
	_, err := db.NewConnectionConfig("", "u", "p", "d").DSN()
	require.Error(t, err)
}

func TestConnectionConfig_OpenSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "open.db")
	c := db.NewConnectionConfig("", "", "", path).WithDriver("sqlite3")

	d, err := c.Open(db.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	require.NoError(t, d.Ping(context.Background()))
	assert.Equal(t, "sqlite3", d.DriverName())
}

func TestConnectionConfig_OpenFailureIsConnectionError(t *testing.T) {
	// nothing listens on port 1
	c := db.NewConnectionConfig("127.0.0.1", "root", "hunter2", "my_database").WithPort(1)

	_, err := c.Open(db.Config{})
	require.Error(t, err)

	var ce *db.ConnectionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "mysql", ce.Driver)
	assert.Equal(t, c.Descriptor(), ce.Descriptor)
	assert.NotNil(t, ce.Cause)
	assert.True(t, errors.Is(err, db.ErrConnectionFailed))
	assert.Contains(t, err.Error(), ce.Cause.Error())
	assert.False(t, strings.Contains(err.Error(), "hunter2"), "password leaked: %v", err)
}

func TestConnectionConfig_OpenInvalidOptions(t *testing.T) {
	_, err := db.NewConnectionConfig("", "root", "", "").Open(db.Config{})
	assert.True(t, db.IsConnectionFailed(err), "expected connection error, got %v", err)
}

func TestConnectionConfig_MustOpenPanics(t *testing.T) {
	c := db.NewConnectionConfig("127.0.0.1", "root", "", "my_database").WithPort(1)
	assert.Panics(t, func() { c.MustOpen(db.Config{}) })
}

func TestSQLiteDriver_DSN(t *testing.T) {
	dsn, err := db.SQLiteDriver{}.DSN(db.DriverOptions{
		Database: "users.db",
		Extra:    map[string]string{"_fk": "1", "_busy_timeout": "5000"},
	})
	require.NoError(t, err)
	assert.Equal(t, "users.db?_busy_timeout=5000&_fk=1", dsn)

	_, err = db.SQLiteDriver{}.DSN(db.DriverOptions{})
	require.Error(t, err)
}

func TestMySQLErrorMapper(t *testing.T) {
	m := db.ChainMapper(db.MySQLErrorMapper(), db.DefaultErrorMapper())

	cases := []struct {
		number uint16
		is     error
	}{
		{1062, db.ErrDuplicateKey},
		{1213, db.ErrDeadlock},
		{3024, db.ErrTimeout},
		{1048, db.ErrCheckViolation},
		{1054, db.ErrBadField},
		{1045, db.ErrConnectionFailed},
	}
	for _, tc := range cases {
		raw := &mysql.MySQLError{Number: tc.number, Message: "x"}
		mapped := m.Map(raw)
		assert.ErrorIs(t, mapped, tc.is, "code %d", tc.number)

		var me *mysql.MySQLError
		require.ErrorAs(t, mapped, &me)
		assert.Equal(t, tc.number, me.Number)
	}

	unknown := &mysql.MySQLError{Number: 1064, Message: "syntax"}
	assert.Same(t, unknown, m.Map(unknown))
	assert.True(t, db.IsConnectionFailed(m.Map(mysql.ErrInvalidConn)))
}

func TestLookupDriver(t *testing.T) {
	drv, err := db.LookupDriver("mysql")
	require.NoError(t, err)
	assert.Equal(t, "mysql", drv.Name())

	_, err = db.LookupDriver("nope")
	require.Error(t, err)

	assert.Panics(t, func() { db.RegisterDriver(db.MySQLDriver{}) })
}
