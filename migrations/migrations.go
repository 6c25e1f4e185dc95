// Package migrations embeds the users table DDL for each supported driver and
// runs it through golang-migrate. Nothing in the library applies migrations
// implicitly; cmd/migrate and tests call in here.
package migrations

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/Skryldev/userdb/db"
)

//go:embed mysql/*.sql sqlite3/*.sql
var files embed.FS

// DatabaseURL turns conn into the URL form golang-migrate expects.
func DatabaseURL(conn db.ConnectionConfig) (string, error) {
	switch conn.Driver() {
	case "mysql":
		dsn, err := conn.DSN()
		if err != nil {
			return "", err
		}
		return "mysql://" + dsn, nil
	case "sqlite3":
		if conn.Database() == "" {
			return "", fmt.Errorf("migrations: sqlite3 database path is empty")
		}
		return "sqlite3://" + conn.Database(), nil
	}
	return "", fmt.Errorf("migrations: no migrations for driver %q", conn.Driver())
}

// New returns a migrator for conn using the embedded files of its driver.
// The caller must Close it.
func New(conn db.ConnectionConfig) (*migrate.Migrate, error) {
	url, err := DatabaseURL(conn)
	if err != nil {
		return nil, err
	}
	src, err := iofs.New(files, conn.Driver())
	if err != nil {
		return nil, fmt.Errorf("migrations: source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return nil, fmt.Errorf("migrations: init %s: %w", conn.Descriptor(), err)
	}
	m.Log = &logger{log: slog.Default()}
	return m, nil
}

// Up applies every pending migration for conn. An up-to-date schema is not an
// error.
func Up(conn db.ConnectionConfig) error {
	m, err := New(conn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrations: up: %w", err)
	}
	return nil
}

type logger struct{ log *slog.Logger }

func (l *logger) Printf(format string, v ...any) {
	l.log.Info(fmt.Sprintf(format, v...))
}

func (l *logger) Verbose() bool { return false }
