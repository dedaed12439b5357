package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	// Create connection pool
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	// Create schema
	createSchema(t, pool)

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

// createSchema creates the database schema for testing.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS products (
			id VARCHAR(50) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			price DECIMAL(10, 2) NOT NULL,
			image_ref VARCHAR(255) NOT NULL DEFAULT '',
			in_stock BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS product_variants (
			product_id VARCHAR(50) NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			variant_key VARCHAR(50) NOT NULL,
			price DECIMAL(10, 2) NOT NULL,
			discount_price DECIMAL(10, 2),
			in_stock BOOLEAN NOT NULL DEFAULT TRUE,
			PRIMARY KEY (product_id, variant_key)
		);

		CREATE TABLE IF NOT EXISTS carts (
			owner_kind VARCHAR(10) NOT NULL,
			owner_id VARCHAR(100) NOT NULL,
			lines JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (owner_kind, owner_id)
		);

		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			code VARCHAR(8) NOT NULL,
			owner_kind VARCHAR(10) NOT NULL,
			owner_id VARCHAR(100) NOT NULL,
			email VARCHAR(255) NOT NULL,
			lines JSONB NOT NULL,
			subtotal DECIMAL(10, 2) NOT NULL,
			shipping_cost DECIMAL(10, 2) NOT NULL,
			total DECIMAL(10, 2) NOT NULL,
			shipping_method VARCHAR(50) NOT NULL,
			shipping JSONB NOT NULL,
			status VARCHAR(20) NOT NULL,
			payment_ref VARCHAR(100) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_orders_owner ON orders(owner_kind, owner_id);
	`

	_, err := pool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// SeedCatalog inserts test product data into the database.
func SeedCatalog(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	products := []struct {
		id      string
		name    string
		price   float64
		inStock bool
	}{
		{"P001", "Masala Chips", 45.00, true},
		{"P002", "Roasted Khakhra", 120.00, true},
		{"P003", "Banana Wafers", 60.00, true},
		{"P004", "Dry Fruit Mix", 350.00, false},
	}

	for _, p := range products {
		_, err := pool.Exec(ctx,
			"INSERT INTO products (id, name, price, in_stock) VALUES ($1, $2, $3, $4)",
			p.id, p.name, p.price, p.inStock,
		)
		if err != nil {
			t.Fatalf("failed to seed product %s: %v", p.id, err)
		}
	}

	variants := []struct {
		productID     string
		key           string
		price         float64
		discountPrice *float64
		inStock       bool
	}{
		{"P002", "200g", 120.00, nil, true},
		{"P002", "500g", 280.00, ptr(250.00), true},
		{"P003", "100g", 60.00, nil, false},
	}

	for _, v := range variants {
		_, err := pool.Exec(ctx,
			"INSERT INTO product_variants (product_id, variant_key, price, discount_price, in_stock) VALUES ($1, $2, $3, $4, $5)",
			v.productID, v.key, v.price, v.discountPrice, v.inStock,
		)
		if err != nil {
			t.Fatalf("failed to seed variant %s/%s: %v", v.productID, v.key, err)
		}
	}
}

func ptr(f float64) *float64 { return &f }

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"orders", "carts", "product_variants", "products"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
