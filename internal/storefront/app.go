// Package storefront is the client side of MobileHub: the signed-in session,
// the credential directory, the cart cache and the REST gateway to the
// collection API.
package storefront

import (
	"context"
	"net/http"

	"mobilehub/internal/config"
	"mobilehub/internal/localstore"
	"mobilehub/internal/models"
	"mobilehub/internal/services"

	"github.com/rs/zerolog"
)

// App holds the shared client state. It is created at start-up and closed at
// shutdown.
type App struct {
	Store     localstore.Store
	Session   *SessionStore
	Directory *Directory
	Auth      *AuthService
	Gateway   *Gateway
	Cart      *CartService
	Checkout  *Checkout

	logger zerolog.Logger
}

type Option func(*appOptions)

type appOptions struct {
	httpClient *http.Client
}

func WithHTTPClient(client *http.Client) Option {
	return func(o *appOptions) { o.httpClient = client }
}

func New(cfg config.Config, store localstore.Store, logger zerolog.Logger, opts ...Option) (*App, error) {
	var o appOptions
	for _, opt := range opts {
		opt(&o)
	}

	session, err := NewSessionStore(store)
	if err != nil {
		return nil, err
	}
	directory, err := NewDirectory(store, cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	tokens := services.NewTokenService(cfg.JWTSecret, logger)
	auth := NewAuthService(directory, session, tokens, cfg.AuthLatency, logger)
	gateway := NewGateway(cfg.APIURL, o.httpClient, session.Token, logger)
	cart := NewCartService(gateway, auth, logger)
	checkout := NewCheckout(gateway, cart, auth, logger)

	auth.OnSessionChange(func(ctx context.Context, s *models.Session) {
		checkout.Reset()
		if s == nil {
			cart.Reset()
			return
		}
		// The error stays in the cart's error slot.
		_ = cart.FetchCartItems(ctx)
	})

	return &App{
		Store:     store,
		Session:   session,
		Directory: directory,
		Auth:      auth,
		Gateway:   gateway,
		Cart:      cart,
		Checkout:  checkout,
		logger:    logger,
	}, nil
}

// Restore brings a freshly constructed App back to the persisted state. A
// session whose identity is no longer in the directory is dropped.
func (a *App) Restore(ctx context.Context) error {
	current, ok := a.Session.Current()
	if !ok {
		return nil
	}

	identity, found := a.Directory.FindByEmail(current.Email)
	if !found || identity.ID != current.ID {
		a.logger.Warn().Str("email", current.Email).Msg("Session identity no longer registered, clearing session")
		return a.Auth.Logout(ctx)
	}
	if identity.Role != current.Role {
		if err := a.Session.Update(func(s *models.Session) { s.Role = identity.Role }); err != nil {
			return err
		}
	}

	if err := a.Auth.Refresh(); err != nil {
		return err
	}
	return a.Cart.FetchCartItems(ctx)
}

func (a *App) Close() error {
	return a.Store.Close()
}
