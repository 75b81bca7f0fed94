package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"mobilehub/internal/models"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
)

// CatalogService owns the product and category collections.
type CatalogService struct {
	db       *sql.DB
	logger   zerolog.Logger
	sanitize *bluemonday.Policy
}

func NewCatalogService(db *sql.DB, logger zerolog.Logger) *CatalogService {
	return &CatalogService{
		db:       db,
		logger:   logger,
		sanitize: bluemonday.StrictPolicy(),
	}
}

func (s *CatalogService) clean(v string) string {
	return strings.TrimSpace(s.sanitize.Sanitize(v))
}

func (s *CatalogService) cleanProduct(p *models.Product) {
	p.Name = s.clean(p.Name)
	p.Description = s.clean(p.Description)
	p.Category = s.clean(p.Category)
	p.Image = strings.TrimSpace(p.Image)
}

func (s *CatalogService) cleanCategory(c *models.Category) {
	c.Name = s.clean(c.Name)
	c.Description = s.clean(c.Description)
}

func (s *CatalogService) ListProducts() ([]*models.Product, error) {
	rows, err := s.db.Query("SELECT id, name, price, description, image, category, stock FROM products ORDER BY id")
	if err != nil {
		s.logger.Error().Err(err).Msg("Error listing products")
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	products := []*models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *CatalogService) GetProductByID(productID int) (*models.Product, error) {
	row := s.db.QueryRow("SELECT id, name, price, description, image, category, stock FROM products WHERE id = ?", productID)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Int("product_id", productID).Msg("Error fetching product")
		return nil, fmt.Errorf("database error: %w", err)
	}
	return p, nil
}

func (s *CatalogService) CreateProduct(p *models.Product) (*models.Product, error) {
	s.cleanProduct(p)
	if err := validateStruct(p); err != nil {
		return nil, err
	}

	result, err := s.db.Exec(
		"INSERT INTO products (name, price, description, image, category, stock) VALUES (?, ?, ?, ?, ?, ?)",
		p.Name, p.Price, p.Description, p.Image, p.Category, p.Stock,
	)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error creating product")
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	productID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get product ID: %w", err)
	}

	s.logger.Info().Int64("product_id", productID).Str("name", p.Name).Msg("Product created")
	return s.GetProductByID(int(productID))
}

func (s *CatalogService) UpdateProduct(productID int, p *models.Product) (*models.Product, error) {
	s.cleanProduct(p)
	if err := validateStruct(p); err != nil {
		return nil, err
	}
	if _, err := s.GetProductByID(productID); err != nil {
		return nil, err
	}

	_, err := s.db.Exec(
		"UPDATE products SET name = ?, price = ?, description = ?, image = ?, category = ?, stock = ? WHERE id = ?",
		p.Name, p.Price, p.Description, p.Image, p.Category, p.Stock, productID,
	)
	if err != nil {
		s.logger.Error().Err(err).Int("product_id", productID).Msg("Error updating product")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.logger.Info().Int("product_id", productID).Msg("Product updated")
	return s.GetProductByID(productID)
}

func (s *CatalogService) DeleteProduct(productID int) error {
	result, err := s.db.Exec("DELETE FROM products WHERE id = ?", productID)
	if err != nil {
		s.logger.Error().Err(err).Int("product_id", productID).Msg("Error deleting product")
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrProductNotFound
	}

	s.logger.Info().Int("product_id", productID).Msg("Product deleted")
	return nil
}

func (s *CatalogService) ListCategories() ([]*models.Category, error) {
	rows, err := s.db.Query("SELECT id, name, description FROM categories ORDER BY id")
	if err != nil {
		s.logger.Error().Err(err).Msg("Error listing categories")
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	categories := []*models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("error scanning category: %w", err)
		}
		categories = append(categories, &c)
	}
	return categories, rows.Err()
}

func (s *CatalogService) GetCategoryByID(categoryID int) (*models.Category, error) {
	var c models.Category
	err := s.db.QueryRow("SELECT id, name, description FROM categories WHERE id = ?", categoryID).
		Scan(&c.ID, &c.Name, &c.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Int("category_id", categoryID).Msg("Error fetching category")
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &c, nil
}

func (s *CatalogService) CreateCategory(c *models.Category) (*models.Category, error) {
	s.cleanCategory(c)
	if err := validateStruct(c); err != nil {
		return nil, err
	}

	result, err := s.db.Exec("INSERT INTO categories (name, description) VALUES (?, ?)", c.Name, c.Description)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error creating category")
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	categoryID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category ID: %w", err)
	}

	s.logger.Info().Int64("category_id", categoryID).Str("name", c.Name).Msg("Category created")
	return s.GetCategoryByID(int(categoryID))
}

func (s *CatalogService) UpdateCategory(categoryID int, c *models.Category) (*models.Category, error) {
	s.cleanCategory(c)
	if err := validateStruct(c); err != nil {
		return nil, err
	}
	if _, err := s.GetCategoryByID(categoryID); err != nil {
		return nil, err
	}

	_, err := s.db.Exec("UPDATE categories SET name = ?, description = ? WHERE id = ?", c.Name, c.Description, categoryID)
	if err != nil {
		s.logger.Error().Err(err).Int("category_id", categoryID).Msg("Error updating category")
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return s.GetCategoryByID(categoryID)
}

func (s *CatalogService) DeleteCategory(categoryID int) error {
	result, err := s.db.Exec("DELETE FROM categories WHERE id = ?", categoryID)
	if err != nil {
		s.logger.Error().Err(err).Int("category_id", categoryID).Msg("Error deleting category")
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrCategoryNotFound
	}

	s.logger.Info().Int("category_id", categoryID).Msg("Category deleted")
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	var description, image, category sql.NullString
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &description, &image, &category, &p.Stock); err != nil {
		return nil, err
	}
	p.Description = description.String
	p.Image = image.String
	p.Category = category.String
	return &p, nil
}
