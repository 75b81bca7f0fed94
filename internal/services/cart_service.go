package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"mobilehub/internal/models"

	"github.com/rs/zerolog"
)

// CartService stores cart items per owner. Adding a product that is already
// in the owner's cart increments its quantity.
type CartService struct {
	db      *sql.DB
	logger  zerolog.Logger
	catalog *CatalogService
	mu      sync.Map
}

func NewCartService(db *sql.DB, logger zerolog.Logger, catalog *CatalogService) *CartService {
	return &CartService{
		db:      db,
		logger:  logger,
		catalog: catalog,
	}
}

func (s *CartService) getMutex(ownerID int) *sync.Mutex {
	mu, _ := s.mu.LoadOrStore(ownerID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *CartService) ListItems(ownerID int) ([]*models.CartItem, error) {
	return listCartItems(s.db, ownerID)
}

func (s *CartService) GetItem(ownerID, itemID int) (*models.CartItem, error) {
	row := s.db.QueryRow(
		"SELECT id, product_id, quantity, product_snapshot FROM cart_items WHERE id = ? AND owner_id = ?",
		itemID, ownerID,
	)
	item, err := scanCartItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartItemNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Int("item_id", itemID).Msg("Error fetching cart item")
		return nil, fmt.Errorf("database error: %w", err)
	}
	return item, nil
}

func (s *CartService) AddItem(ownerID int, req *models.CreateCartItemRequest) (*models.CartItem, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	snapshot := req.Product
	if snapshot.ID != req.ProductID {
		p, err := s.catalog.GetProductByID(req.ProductID)
		if err != nil {
			return nil, err
		}
		snapshot = *p
	}
	encoded, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode product snapshot: %w", err)
	}

	mu := s.getMutex(ownerID)
	mu.Lock()
	defer mu.Unlock()

	var existingID, existingQty int
	err = s.db.QueryRow(
		"SELECT id, quantity FROM cart_items WHERE owner_id = ? AND product_id = ?",
		ownerID, req.ProductID,
	).Scan(&existingID, &existingQty)

	switch {
	case err == nil:
		_, err = s.db.Exec("UPDATE cart_items SET quantity = ? WHERE id = ?", existingQty+req.Quantity, existingID)
		if err != nil {
			s.logger.Error().Err(err).Int("item_id", existingID).Msg("Error incrementing cart item")
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
		s.logger.Info().Int("owner_id", ownerID).Int("product_id", req.ProductID).Msg("Cart item incremented")
		return s.GetItem(ownerID, existingID)
	case !errors.Is(err, sql.ErrNoRows):
		s.logger.Error().Err(err).Int("owner_id", ownerID).Msg("Error checking cart item")
		return nil, fmt.Errorf("database error: %w", err)
	}

	result, err := s.db.Exec(
		"INSERT INTO cart_items (owner_id, product_id, quantity, product_snapshot) VALUES (?, ?, ?, ?)",
		ownerID, req.ProductID, req.Quantity, string(encoded),
	)
	if err != nil {
		s.logger.Error().Err(err).Int("owner_id", ownerID).Msg("Error creating cart item")
		return nil, fmt.Errorf("failed to create cart item: %w", err)
	}

	itemID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get cart item ID: %w", err)
	}

	s.logger.Info().Int("owner_id", ownerID).Int("product_id", req.ProductID).Int64("item_id", itemID).Msg("Cart item created")
	return s.GetItem(ownerID, int(itemID))
}

func (s *CartService) UpdateQuantity(ownerID, itemID int, req *models.UpdateCartItemRequest) (*models.CartItem, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	mu := s.getMutex(ownerID)
	mu.Lock()
	defer mu.Unlock()

	_, err := s.db.Exec(
		"UPDATE cart_items SET quantity = ? WHERE id = ? AND owner_id = ?",
		req.Quantity, itemID, ownerID,
	)
	if err != nil {
		s.logger.Error().Err(err).Int("item_id", itemID).Msg("Error updating cart item")
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	// RowsAffected is zero on MySQL when the quantity is unchanged, so existence
	// is decided by the read-back.
	return s.GetItem(ownerID, itemID)
}

func (s *CartService) RemoveItem(ownerID, itemID int) error {
	result, err := s.db.Exec("DELETE FROM cart_items WHERE id = ? AND owner_id = ?", itemID, ownerID)
	if err != nil {
		s.logger.Error().Err(err).Int("item_id", itemID).Msg("Error deleting cart item")
		return fmt.Errorf("failed to delete cart item: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrCartItemNotFound
	}

	s.logger.Info().Int("owner_id", ownerID).Int("item_id", itemID).Msg("Cart item removed")
	return nil
}

type queryer interface {
	Query(query string, args ...interface{}) (*sql.Rows, error)
}

func listCartItems(q queryer, ownerID int) ([]*models.CartItem, error) {
	rows, err := q.Query(
		"SELECT id, product_id, quantity, product_snapshot FROM cart_items WHERE owner_id = ? ORDER BY id",
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	items := []*models.CartItem{}
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning cart item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanCartItem(row rowScanner) (*models.CartItem, error) {
	var item models.CartItem
	var snapshot string
	if err := row.Scan(&item.ID, &item.ProductID, &item.Quantity, &snapshot); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(snapshot), &item.Product); err != nil {
		return nil, fmt.Errorf("corrupt product snapshot: %w", err)
	}
	return &item, nil
}
