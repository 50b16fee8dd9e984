package integration

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"storefront/internal/database"
	"storefront/internal/model"
	"storefront/internal/notify"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a migrated test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB starts a PostgreSQL container, applies the migrations and
// returns a connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	if err := database.Migrate(connStr, zerolog.Nop()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SeedProducts inserts test product data into the database.
func SeedProducts(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	products := []struct {
		id       string
		name     string
		price    string
		category string
	}{
		{"P001", "Test Product 1", "10.00", "Category A"},
		{"P002", "Test Product 2", "20.50", "Category B"},
		{"P003", "Test Product 3", "30.00", "Category A"},
	}

	for _, p := range products {
		_, err := pool.Exec(context.Background(),
			"INSERT INTO products (id, name, price, category) VALUES ($1, $2, $3::numeric, $4)",
			p.id, p.name, p.price, p.category,
		)
		if err != nil {
			t.Fatalf("failed to seed product %s: %v", p.id, err)
		}
	}
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	for _, table := range []string{"order_items", "orders", "products"} {
		if _, err := pool.Exec(context.Background(), fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

// manualClock is a Clock the test moves forward explicitly.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// sentEmail is one message captured by recordingDispatcher.
type sentEmail struct {
	To      string
	Subject string
	Body    string
}

// recordingDispatcher captures outgoing messages instead of delivering them.
type recordingDispatcher struct {
	mu   sync.Mutex
	sent []sentEmail
}

func (d *recordingDispatcher) Send(_ context.Context, recipients []notify.Recipient, subject, htmlBody string) error {
	if len(recipients) == 0 {
		return model.ErrMissingRecipient
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, r := range recipients {
		d.sent = append(d.sent, sentEmail{To: r.Email, Subject: subject, Body: htmlBody})
	}
	return nil
}

func (d *recordingDispatcher) Sent() []sentEmail {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]sentEmail(nil), d.sent...)
}
