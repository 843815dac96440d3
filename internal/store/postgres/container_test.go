package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/waybook/waybook/internal/store"
	"github.com/waybook/waybook/internal/store/storetest"
)

// TestComplianceContainer spins up a disposable PostgreSQL via testcontainers
// for environments without a standing database. Opt in with
// WAYBOOK_TEST_CONTAINERS=1 (requires a local Docker daemon).
func TestComplianceContainer(t *testing.T) {
	if os.Getenv("WAYBOOK_TEST_CONTAINERS") == "" {
		t.Skip("WAYBOOK_TEST_CONTAINERS not set")
	}

	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("waybook_test"),
		tcpostgres.WithUsername("waybook"),
		tcpostgres.WithPassword("waybook"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start container: %v", err)
	}
	t.Cleanup(func() { _ = ctr.Terminate(ctx) })

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	db, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := EnsureSchema(ctx, db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	storetest.Run(t, func(t *testing.T) store.Store {
		truncateAll(t, db)
		return NewWithDB(db)
	})
}
