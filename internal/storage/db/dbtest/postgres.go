//go:build integration

package dbtest

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/inventory-backoffice/internal/config"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/storage/db"
)

// Postgres is a migrated throwaway PostgreSQL container.
type Postgres struct {
	Pool   *pgxpool.Pool
	Client *db.Client
}

// StartPostgres runs postgres in docker, applies the embedded migrations and
// registers cleanup on t.
func StartPostgres(t testing.TB) *Postgres {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "connect to docker")
	pool.MaxWait = 2 * time.Minute

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=inventory_test",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "start postgres container")

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("purge postgres container: %v", err)
		}
	})

	port, err := strconv.Atoi(resource.GetPort("5432/tcp"))
	require.NoError(t, err)

	cfg := config.Postgres{
		Host:            "localhost",
		Port:            port,
		User:            "test",
		Password:        "test",
		DB:              "inventory_test",
		SSLMode:         "disable",
		MaxConns:        10,
		MinConns:        1,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: time.Minute,
		ConnectTimeout:  5 * time.Second,
	}

	ctx := context.Background()

	var pgxPool *pgxpool.Pool
	err = pool.Retry(func() error {
		var err error
		pgxPool, err = db.NewPgxPool(ctx, cfg)
		return err
	})
	require.NoError(t, err, "connect to postgres")
	t.Cleanup(pgxPool.Close)

	require.NoError(t, db.Migrate(ctx, pgxPool, slog.New(slog.NewTextHandler(io.Discard, nil))), "migrate")

	return &Postgres{
		Pool:   pgxPool,
		Client: db.NewClient(pgxPool),
	}
}

// Truncate empties every table so each test starts from a clean inventory.
func (p *Postgres) Truncate(t testing.TB) {
	t.Helper()

	_, err := p.Pool.Exec(context.Background(),
		`TRUNCATE stock_movements, outbox_messages, products, categories, suppliers`)
	require.NoError(t, err, "truncate tables")
}
