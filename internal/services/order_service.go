package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"mobilehub/internal/models"

	"github.com/rs/zerolog"
)

type OrderService struct {
	db     *sql.DB
	logger zerolog.Logger
	now    func() time.Time
}

func NewOrderService(db *sql.DB, logger zerolog.Logger) *OrderService {
	return &OrderService{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// PlaceOrder turns the owner's cart into an order and empties the cart in the
// same transaction.
func (s *OrderService) PlaceOrder(ownerID int) (*models.Order, error) {
	tx, err := s.db.Begin()
	if err != nil {
		s.logger.Error().Err(err).Msg("Error starting order transaction")
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	items, err := listCartItems(tx, ownerID)
	if err != nil {
		s.logger.Error().Err(err).Int("owner_id", ownerID).Msg("Error reading cart for order")
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	order := &models.Order{
		Date:  s.now().UTC().Format(time.RFC3339),
		Items: make([]models.OrderLine, 0, len(items)),
	}
	for _, item := range items {
		order.Items = append(order.Items, models.OrderLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Product: models.OrderProduct{
				Name:  item.Product.Name,
				Price: item.Product.Price,
			},
		})
		order.Total += item.Product.Price * float64(item.Quantity)
	}
	order.Total = math.Round(order.Total*100) / 100

	encoded, err := json.Marshal(order.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order items: %w", err)
	}

	result, err := tx.Exec(
		"INSERT INTO orders (owner_id, placed_at, items, total) VALUES (?, ?, ?, ?)",
		ownerID, order.Date, string(encoded), order.Total,
	)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error creating order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	orderID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get order ID: %w", err)
	}
	order.ID = int(orderID)

	if _, err = tx.Exec("DELETE FROM cart_items WHERE owner_id = ?", ownerID); err != nil {
		s.logger.Error().Err(err).Int("owner_id", ownerID).Msg("Error clearing cart")
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	if err = tx.Commit(); err != nil {
		s.logger.Error().Err(err).Msg("Error committing order")
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info().
		Int("order_id", order.ID).
		Int("owner_id", ownerID).
		Int("lines", len(order.Items)).
		Float64("total", order.Total).
		Msg("Order placed")

	return order, nil
}

func (s *OrderService) GetOrderByID(ownerID, orderID int) (*models.Order, error) {
	row := s.db.QueryRow("SELECT id, placed_at, items, total FROM orders WHERE id = ? AND owner_id = ?", orderID, ownerID)
	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.New("order not found")
	}
	if err != nil {
		s.logger.Error().Err(err).Int("order_id", orderID).Msg("Error fetching order")
		return nil, fmt.Errorf("database error: %w", err)
	}
	return order, nil
}

func (s *OrderService) ListOrders(ownerID int) ([]*models.Order, error) {
	rows, err := s.db.Query(
		"SELECT id, placed_at, items, total FROM orders WHERE owner_id = ? ORDER BY id DESC",
		ownerID,
	)
	if err != nil {
		s.logger.Error().Err(err).Int("owner_id", ownerID).Msg("Error fetching orders")
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	orders := []*models.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning order: %w", err)
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var order models.Order
	var items string
	if err := row.Scan(&order.ID, &order.Date, &items, &order.Total); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(items), &order.Items); err != nil {
		return nil, fmt.Errorf("corrupt order items: %w", err)
	}
	return &order, nil
}
