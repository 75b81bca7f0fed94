package storefront

import (
	"context"
	"fmt"
	"sync"

	"mobilehub/internal/models"

	"github.com/rs/zerolog"
)

type Step int

const (
	StepShipping Step = iota
	StepPayment
	StepReview
	stepCompleted
)

var stepLabels = [...]string{"Shipping", "Payment", "Review"}

func (s Step) String() string {
	if s >= 0 && int(s) < len(stepLabels) {
		return stepLabels[s]
	}
	return "Completed"
}

// OrderPlacer turns the signed-in user's remote cart into an order.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context) (*models.Order, error)
}

// Checkout walks Shipping, Payment and Review before placing the order.
type Checkout struct {
	mu     sync.Mutex
	step   Step
	orders OrderPlacer
	cart   *CartService
	auth   Authenticator
	logger zerolog.Logger
}

func NewCheckout(orders OrderPlacer, cart *CartService, auth Authenticator, logger zerolog.Logger) *Checkout {
	return &Checkout{orders: orders, cart: cart, auth: auth, logger: logger}
}

func (c *Checkout) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

func (c *Checkout) Completed() bool {
	return c.Step() == stepCompleted
}

// Next advances up to Review. Leaving Review requires PlaceOrder.
func (c *Checkout) Next() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step < StepReview {
		c.step++
	}
	return c.step
}

func (c *Checkout) Back() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step > StepShipping && c.step != stepCompleted {
		c.step--
	}
	return c.step
}

func (c *Checkout) Reset() {
	c.mu.Lock()
	c.step = StepShipping
	c.mu.Unlock()
}

func (c *Checkout) PlaceOrder(ctx context.Context) (*models.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.auth.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	if c.step != StepReview {
		return nil, ErrCheckoutPending
	}

	order, err := c.orders.PlaceOrder(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	c.cart.Reset()
	c.step = stepCompleted
	c.logger.Info().Int("order_id", order.ID).Float64("total", order.Total).Msg("Order placed")
	return order, nil
}
