package metrics_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skryldev/userdb/db"
	"github.com/Skryldev/userdb/metrics"
	"github.com/Skryldev/userdb/migrations"
	"github.com/Skryldev/userdb/models"
	"github.com/Skryldev/userdb/repo"
)

func TestCollector_RecordQuery(t *testing.T) {
	c := metrics.NewCollector(prometheus.NewRegistry())

	c.RecordQuery("get_email", 3*time.Millisecond, true)
	c.RecordQuery("get_email", 5*time.Millisecond, true)
	c.RecordQuery("get_email", time.Millisecond, false)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.QueriesTotal.WithLabelValues("get_email", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.QueriesTotal.WithLabelValues("get_email", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.QueryDuration))
}

func TestCollector_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.NewCollector(reg)
	assert.Panics(t, func() { metrics.NewCollector(reg) })
}

func TestCollector_CountsRepositoryOperations(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)

	conn := db.NewConnectionConfig("", "", "", filepath.Join(t.TempDir(), "metrics.db")).WithDriver("sqlite3")
	require.NoError(t, migrations.Up(conn))
	store, err := repo.Connect(conn, db.Config{Hooks: []db.Hook{c.Hook()}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	id, err := store.Add(ctx, models.CreateUserParams{
		FirstName: "John",
		LastName:  "Doe",
		Email:     "john.doe@example.com",
		Password:  "password",
		Birthday:  time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	_, err = store.GetEmail(ctx, id)
	require.NoError(t, err)
	missing, err := store.GetEmail(ctx, id+100)
	require.NoError(t, err)
	assert.False(t, missing.Valid)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.QueriesTotal.WithLabelValues("add_user", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.QueriesTotal.WithLabelValues("get_email", "ok")))

	_, err = store.DB().Exec(ctx, `DROP TABLE users`)
	require.NoError(t, err)
	_, err = store.GetEmail(ctx, id)
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.QueriesTotal.WithLabelValues("get_email", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.QueriesTotal.WithLabelValues("drop", "ok")))
}
