package db

import (
	"database/sql"
	"fmt"

	"mobilehub/internal/models"

	"github.com/rs/zerolog"
)

var seedCategories = []models.Category{
	{Name: "Smartphones", Description: "Latest flagship and budget phones"},
	{Name: "Accessories", Description: "Cases, chargers and cables"},
	{Name: "Tablets", Description: "Tablets for work and play"},
}

var seedProducts = []models.Product{
	{Name: "Pixel Lite", Price: 10, Description: "Entry-level phone", Image: "https://via.placeholder.com/150", Category: "Smartphones", Stock: 50},
	{Name: "Galaxy Nova", Price: 799.99, Description: "6.5\" AMOLED flagship", Image: "https://via.placeholder.com/150", Category: "Smartphones", Stock: 20},
	{Name: "USB-C Fast Charger", Price: 24.5, Description: "30W charger", Image: "https://via.placeholder.com/150", Category: "Accessories", Stock: 200},
	{Name: "Tab S Mini", Price: 349, Description: "8\" tablet", Image: "https://via.placeholder.com/150", Category: "Tablets", Stock: 15},
}

// SeedCatalog inserts the demo catalog when the products table is empty.
func SeedCatalog(db *sql.DB, logger zerolog.Logger) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	for _, c := range seedCategories {
		if _, err := tx.Exec("INSERT INTO categories (name, description) VALUES (?, ?)", c.Name, c.Description); err != nil {
			return fmt.Errorf("failed to seed category: %w", err)
		}
	}
	for _, p := range seedProducts {
		_, err := tx.Exec(
			"INSERT INTO products (name, price, description, image, category, stock) VALUES (?, ?, ?, ?, ?, ?)",
			p.Name, p.Price, p.Description, p.Image, p.Category, p.Stock,
		)
		if err != nil {
			return fmt.Errorf("failed to seed product: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}

	logger.Info().Int("products", len(seedProducts)).Int("categories", len(seedCategories)).Msg("Catalog seeded")
	return nil
}
