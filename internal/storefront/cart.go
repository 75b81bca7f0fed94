package storefront

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"mobilehub/internal/models"

	"github.com/rs/zerolog"
)

// CartRemote is the part of the collection API the cart talks to.
type CartRemote interface {
	ListCartItems(ctx context.Context) ([]models.CartItem, error)
	CreateCartItem(ctx context.Context, req models.CreateCartItemRequest) (*models.CartItem, error)
	PatchCartItem(ctx context.Context, id, quantity int) (*models.CartItem, error)
	DeleteCartItem(ctx context.Context, id int) error
}

type Authenticator interface {
	IsAuthenticated() bool
}

// CartService caches the signed-in user's cart. A failed remote call leaves
// the cache as it was and records the error.
type CartService struct {
	remote CartRemote
	auth   Authenticator
	logger zerolog.Logger

	mu      sync.RWMutex
	items   []models.CartItem
	lastErr error

	inflight     atomic.Int32
	productLocks sync.Map
}

func NewCartService(remote CartRemote, auth Authenticator, logger zerolog.Logger) *CartService {
	return &CartService{
		remote: remote,
		auth:   auth,
		logger: logger,
	}
}

func (s *CartService) getProductLock(productID int) *sync.Mutex {
	mu, _ := s.productLocks.LoadOrStore(productID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// FetchCartItems replaces the cache with the remote cart. Signed out, the
// cache is emptied without a remote call.
func (s *CartService) FetchCartItems(ctx context.Context) error {
	if !s.auth.IsAuthenticated() {
		s.Reset()
		return nil
	}

	done := s.begin()
	defer done()

	items, err := s.remote.ListCartItems(ctx)
	if err != nil {
		return s.fail("failed to fetch cart items", err)
	}

	s.mu.Lock()
	s.items = items
	s.lastErr = nil
	s.mu.Unlock()
	return nil
}

func (s *CartService) AddToCart(ctx context.Context, product models.Product) error {
	if !s.auth.IsAuthenticated() {
		return s.fail("failed to add item to cart", ErrNotAuthenticated)
	}

	lock := s.getProductLock(product.ID)
	lock.Lock()
	defer lock.Unlock()

	done := s.begin()
	defer done()

	if existing, ok := s.findByProduct(product.ID); ok {
		return s.UpdateQuantity(ctx, existing.ID, existing.Quantity+1)
	}

	item, err := s.remote.CreateCartItem(ctx, models.CreateCartItemRequest{
		ProductID: product.ID,
		Quantity:  1,
		Product:   product,
	})
	if err != nil {
		return s.fail("failed to add item to cart", err)
	}

	s.store(*item)
	s.logger.Debug().Int("product_id", product.ID).Int("quantity", item.Quantity).Msg("Added to cart")
	return nil
}

func (s *CartService) RemoveFromCart(ctx context.Context, id int) error {
	if !s.auth.IsAuthenticated() {
		return s.fail("failed to remove item from cart", ErrNotAuthenticated)
	}

	done := s.begin()
	defer done()

	if err := s.remote.DeleteCartItem(ctx, id); err != nil {
		return s.fail("failed to remove item from cart", err)
	}

	s.mu.Lock()
	kept := make([]models.CartItem, 0, len(s.items))
	for _, item := range s.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	s.items = kept
	s.lastErr = nil
	s.mu.Unlock()
	return nil
}

// UpdateQuantity sets the quantity of item id. Below 1 the item is removed.
func (s *CartService) UpdateQuantity(ctx context.Context, id, quantity int) error {
	if quantity < 1 {
		return s.RemoveFromCart(ctx, id)
	}
	if !s.auth.IsAuthenticated() {
		return s.fail("failed to update quantity", ErrNotAuthenticated)
	}

	done := s.begin()
	defer done()

	item, err := s.remote.PatchCartItem(ctx, id, quantity)
	if err != nil {
		return s.fail("failed to update quantity", err)
	}

	s.store(*item)
	return nil
}

func (s *CartService) Items() []models.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.CartItem(nil), s.items...)
}

func (s *CartService) Total() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total float64
	for _, item := range s.items {
		total += item.Product.Price * float64(item.Quantity)
	}
	return total
}

func (s *CartService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

func (s *CartService) Loading() bool {
	return s.inflight.Load() > 0
}

func (s *CartService) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *CartService) ClearError() {
	s.mu.Lock()
	s.lastErr = nil
	s.mu.Unlock()
}

// Reset empties the cache without touching the remote cart.
func (s *CartService) Reset() {
	s.mu.Lock()
	s.items = nil
	s.lastErr = nil
	s.mu.Unlock()
}

func (s *CartService) begin() func() {
	s.inflight.Add(1)
	return func() { s.inflight.Add(-1) }
}

func (s *CartService) fail(msg string, err error) error {
	wrapped := fmt.Errorf("%s: %w", msg, err)
	s.mu.Lock()
	s.lastErr = wrapped
	s.mu.Unlock()
	s.logger.Error().Err(err).Msg(msg)
	return wrapped
}

func (s *CartService) findByProduct(productID int) (models.CartItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return models.CartItem{}, false
}

// store replaces the cached item with the same id or appends it.
func (s *CartService) store(item models.CartItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = nil
	for i := range s.items {
		if s.items[i].ID == item.ID {
			s.items[i] = item
			return
		}
	}
	s.items = append(s.items, item)
}
