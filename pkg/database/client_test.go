package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// newTestClient starts a throwaway PostgreSQL container, points a Client
// at it, and lets NewClient apply the embedded migrations — exercising
// the exact path production takes, just against a container instead of
// a long-lived instance.
func newTestClient(t *testing.T) *Client {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("deepresearch_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	client, err := NewClient(ctx, Config{
		Host:     host,
		Port:     port.Int(),
		User:     "test",
		Password: "test",
		Database: "deepresearch_test",
		SSLMode:  "disable",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNewClient_AppliesMigrationsAndConnects(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	var tableName string
	err := client.Pool.QueryRow(ctx,
		`SELECT table_name FROM information_schema.tables WHERE table_name = 'sessions'`,
	).Scan(&tableName)
	require.NoError(t, err)
	require.Equal(t, "sessions", tableName)
}

func TestHealth_ReportsHealthyAgainstLiveContainer(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	status, err := Health(ctx, client.Pool)
	require.NoError(t, err)
	require.NotNil(t, status)
}
