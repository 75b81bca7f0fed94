package db

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

func InitDB(driver, dbURL string, logger zerolog.Logger) (*sql.DB, error) {
	if driver != DriverMySQL && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer; serialize access instead of failing with SQLITE_BUSY.
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database not responding: %w", err)
	}

	logger.Info().Str("driver", driver).Msg("Connected to database")
	return db, nil
}

func RunMigrations(db *sql.DB, driver string, logger zerolog.Logger) error {
	queries := mysqlSchema
	if driver == DriverSQLite {
		queries = sqliteSchema
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	logger.Info().Int("statements", len(queries)).Msg("Migrations completed")
	return nil
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(200) NOT NULL,
		price DECIMAL(12,2) NOT NULL DEFAULT 0,
		description TEXT,
		image VARCHAR(500),
		category VARCHAR(100),
		stock INT NOT NULL DEFAULT 0
	);`,
	`CREATE TABLE IF NOT EXISTS categories (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		description TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS cart_items (
		id INT AUTO_INCREMENT PRIMARY KEY,
		owner_id INT NOT NULL,
		product_id INT NOT NULL,
		quantity INT NOT NULL,
		product_snapshot TEXT NOT NULL,
		UNIQUE KEY uq_owner_product (owner_id, product_id),
		INDEX idx_owner_id (owner_id)
	);`,
	`CREATE TABLE IF NOT EXISTS orders (
		id INT AUTO_INCREMENT PRIMARY KEY,
		owner_id INT NOT NULL,
		placed_at VARCHAR(40) NOT NULL,
		items TEXT NOT NULL,
		total DECIMAL(12,2) NOT NULL,
		INDEX idx_orders_owner_id (owner_id)
	);`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		price REAL NOT NULL DEFAULT 0,
		description TEXT,
		image TEXT,
		category TEXT,
		stock INTEGER NOT NULL DEFAULT 0
	);`,
	`CREATE TABLE IF NOT EXISTS categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS cart_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_id INTEGER NOT NULL,
		product_id INTEGER NOT NULL,
		quantity INTEGER NOT NULL,
		product_snapshot TEXT NOT NULL,
		UNIQUE (owner_id, product_id)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_cart_owner_id ON cart_items (owner_id);`,
	`CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_id INTEGER NOT NULL,
		placed_at TEXT NOT NULL,
		items TEXT NOT NULL,
		total REAL NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_orders_owner_id ON orders (owner_id);`,
}
