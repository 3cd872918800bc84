package pgutil

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"

	"github.com/goonhub/goonhub/pkg/config"
)

const (
	testDatabase = "goonhub_test"
	testUser     = "goonhub"
	testPassword = "goonhub"
)

// RequireDocker skips the test unless a Docker daemon socket is reachable.
func RequireDocker(t *testing.T) {
	t.Helper()

	candidates := []string{
		"/var/run/docker.sock",
		filepath.Join(os.Getenv("HOME"), ".docker/run/docker.sock"),
	}
	if host := os.Getenv("DOCKER_HOST"); host != "" {
		// remote daemons are left to testcontainers to resolve
		return
	}

	for _, sock := range candidates {
		if _, err := os.Stat(sock); err != nil {
			continue
		}
		conn, err := (&net.Dialer{Timeout: time.Second}).DialContext(context.Background(), "unix", sock)
		if err == nil {
			_ = conn.Close()
			return
		}
	}
	t.Skip("docker is not available, skipping postgres test")
}

// SetupTestDB starts a PostgreSQL container and returns a connection to it.
// The container is terminated when the test finishes.
func SetupTestDB(t *testing.T) *bun.DB {
	t.Helper()
	RequireDocker(t)
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase(testDatabase),
		postgres.WithUsername(testUser),
		postgres.WithPassword(testPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	cfg := &config.DatabaseConfig{
		Host:     host,
		Port:     port.Int(),
		User:     testUser,
		Password: testPassword,
		Database: testDatabase,
		SSLMode:  "disable",
	}

	var db *bun.DB
	const maxRetries = 8
	for i := range maxRetries {
		db, err = ConnectDB(cfg, nil)
		if err == nil {
			break
		}
		if i == maxRetries-1 {
			t.Fatalf("failed to connect to test database after %d attempts: %v", maxRetries, err)
		}
		time.Sleep(time.Duration(100<<i) * time.Millisecond)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func exists(t *testing.T, db *bun.DB, query string, args ...any) bool {
	t.Helper()

	var ok bool
	if err := db.NewSelect().ColumnExpr("EXISTS ("+query+")", args...).Scan(context.Background(), &ok); err != nil {
		t.Fatalf("existence query failed: %v", err)
	}
	return ok
}

// AssertTableExists fails the test when tableName is missing from the public schema.
func AssertTableExists(t *testing.T, db *bun.DB, tableName string) {
	t.Helper()
	if !exists(t, db, "SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = ?", tableName) {
		t.Errorf("table %s does not exist", tableName)
	}
}

// AssertTableNotExists fails the test when tableName is present.
func AssertTableNotExists(t *testing.T, db *bun.DB, tableName string) {
	t.Helper()
	if exists(t, db, "SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = ?", tableName) {
		t.Errorf("table %s should not exist but it does", tableName)
	}
}

// AssertIndexExists fails the test when indexName is missing.
func AssertIndexExists(t *testing.T, db *bun.DB, indexName string) {
	t.Helper()
	if !exists(t, db, "SELECT 1 FROM pg_indexes WHERE schemaname = 'public' AND indexname = ?", indexName) {
		t.Errorf("index %s does not exist", indexName)
	}
}

// AssertRowCount fails the test when tableName does not hold expected rows.
func AssertRowCount(t *testing.T, db *bun.DB, tableName string, expected int) {
	t.Helper()

	var count int
	err := db.NewSelect().
		TableExpr("?", bun.Ident(tableName)).
		ColumnExpr("COUNT(*)").
		Scan(context.Background(), &count)
	if err != nil {
		t.Fatalf("failed to count rows in table %s: %v", tableName, err)
	}
	if count != expected {
		t.Errorf("table %s: expected %d rows, got %d", tableName, expected, count)
	}
}
