package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/RbroH99/les-sha-accesories/internal/config"
	"github.com/RbroH99/les-sha-accesories/pkg/logger"
)

// Database represents a database connection
type Database struct {
	DB     *sqlx.DB
	logger logger.Logger
}

// New creates a new database connection
func New(cfg *config.Config, logger logger.Logger) (*Database, error) {
	db, err := sqlx.Connect("postgres", cfg.GetDBConnString())

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	logger.Info("Connected to database", "host", cfg.DB.Host, "database", cfg.DB.Name)

	return &Database{
		DB:     db,
		logger: logger,
	}, nil
}

// Ping checks the database connection
func (d *Database) Ping(ctx context.Context) error {
	return d.DB.PingContext(ctx)
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.DB.Close()
}

// RunMigrations bootstraps the schema directly; enough for a single
// service owning its own database.
func (d *Database) RunMigrations() error {
	schema := `
	CREATE TABLE IF NOT EXISTS categories (
		id VARCHAR(50) PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS tags (
		id VARCHAR(50) PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS products (
		id VARCHAR(50) PRIMARY KEY,
		name VARCHAR(200) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price DECIMAL(10, 2) NOT NULL,
		image TEXT NOT NULL DEFAULT '',
		category_id VARCHAR(50) REFERENCES categories(id),
		stock INT NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id);
	CREATE INDEX IF NOT EXISTS idx_products_active ON products(is_active);

	CREATE TABLE IF NOT EXISTS product_tags (
		product_id VARCHAR(50) NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		tag_id VARCHAR(50) NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		PRIMARY KEY (product_id, tag_id)
	);

	CREATE TABLE IF NOT EXISTS discounts (
		id VARCHAR(50) PRIMARY KEY,
		name VARCHAR(200) NOT NULL,
		type VARCHAR(20) NOT NULL,
		value DECIMAL(10, 2) NOT NULL,
		is_generic BOOLEAN NOT NULL DEFAULT FALSE,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		starts_at TIMESTAMP,
		ends_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_discounts_active ON discounts(is_active);

	CREATE TABLE IF NOT EXISTS discount_products (
		discount_id VARCHAR(50) NOT NULL REFERENCES discounts(id) ON DELETE CASCADE,
		product_id VARCHAR(50) NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		PRIMARY KEY (discount_id, product_id)
	);

	CREATE TABLE IF NOT EXISTS orders (
		id VARCHAR(50) PRIMARY KEY,
		user_id VARCHAR(50) NOT NULL,
		customer_name VARCHAR(200) NOT NULL,
		customer_email VARCHAR(200) NOT NULL,
		customer_phone VARCHAR(50),
		shipping_address TEXT,
		shipping_city VARCHAR(100),
		shipping_state VARCHAR(100),
		shipping_zip_code VARCHAR(20),
		shipping_country VARCHAR(100),
		total_amount DECIMAL(10, 2) NOT NULL,
		status VARCHAR(20) NOT NULL,
		notes TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id);
	CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);

	CREATE TABLE IF NOT EXISTS order_items (
		id SERIAL PRIMARY KEY,
		order_id VARCHAR(50) NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id VARCHAR(50) NOT NULL,
		name VARCHAR(200) NOT NULL,
		image TEXT NOT NULL DEFAULT '',
		quantity INT NOT NULL,
		original_price DECIMAL(10, 2) NOT NULL,
		final_price DECIMAL(10, 2) NOT NULL,
		discount_type VARCHAR(20),
		discount_value DECIMAL(10, 2)
	);

	CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);

	CREATE TABLE IF NOT EXISTS outbox_messages (
		id SERIAL PRIMARY KEY,
		aggregate_type VARCHAR(50) NOT NULL,
		aggregate_id VARCHAR(50) NOT NULL,
		event_type VARCHAR(50) NOT NULL,
		payload JSONB NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		processed_at TIMESTAMP,
		processing_attempts INT NOT NULL DEFAULT 0,
		last_error TEXT,
		status VARCHAR(20) NOT NULL DEFAULT 'pending'
	);

	CREATE INDEX IF NOT EXISTS idx_outbox_status ON outbox_messages(status);
	CREATE INDEX IF NOT EXISTS idx_outbox_aggregate ON outbox_messages(aggregate_type, aggregate_id);
	`

	_, err := d.DB.Exec(schema)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.logger.Info("Database migrations completed successfully")
	return nil
}
