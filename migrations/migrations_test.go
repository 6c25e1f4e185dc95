package migrations_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skryldev/userdb/db"
	"github.com/Skryldev/userdb/migrations"
)

func TestDatabaseURL(t *testing.T) {
	u, err := migrations.DatabaseURL(db.NewConnectionConfig("localhost", "root", "", "my_database"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "mysql://root@tcp(localhost:3306)/my_database"), u)

	u, err = migrations.DatabaseURL(db.NewConnectionConfig("", "", "", "/tmp/users.db").WithDriver("sqlite3"))
	require.NoError(t, err)
	assert.Equal(t, "sqlite3:///tmp/users.db", u)

	_, err = migrations.DatabaseURL(db.NewConnectionConfig("", "", "", "").WithDriver("sqlite3"))
	assert.Error(t, err)

	_, err = migrations.DatabaseURL(db.NewConnectionConfig("h", "u", "p", "d").WithDriver("oracle"))
	assert.Error(t, err)
}

func TestUp_CreatesUsersTable(t *testing.T) {
	conn := db.NewConnectionConfig("", "", "", filepath.Join(t.TempDir(), "users.db")).WithDriver("sqlite3")

	require.NoError(t, migrations.Up(conn))
	require.NoError(t, migrations.Up(conn), "second run is a no-op")

	d, err := conn.Open(db.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	ctx := context.Background()
	_, err = d.Exec(ctx, `INSERT INTO users (first_name, last_name, email, password, birthday)
		VALUES ('John', 'Doe', 'john.doe@example.com', 'password', '2000-01-01')`)
	require.NoError(t, err)

	var status int
	require.NoError(t, d.QueryRow(ctx, `SELECT status FROM users WHERE email = ?`, "john.doe@example.com").Scan(&status))
	assert.Equal(t, 0, status)
}

func TestDown_DropsUsersTable(t *testing.T) {
	conn := db.NewConnectionConfig("", "", "", filepath.Join(t.TempDir(), "users.db")).WithDriver("sqlite3")
	require.NoError(t, migrations.Up(conn))

	m, err := migrations.New(conn)
	require.NoError(t, err)
	v, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
	assert.False(t, dirty)

	require.NoError(t, m.Down())
	_, _ = m.Close()

	d, err := conn.Open(db.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	_, err = d.Exec(context.Background(), `SELECT 1 FROM users`)
	assert.Error(t, err)
}
