package storefront

import (
	"context"
	"crypto/rand"
	"math/big"
	"regexp"
	"time"

	"mobilehub/internal/models"
	"mobilehub/internal/services"

	"github.com/rs/zerolog"
)

const (
	minSecretLength = 6
	resetSecretLen  = 8
	resetAlphabet   = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// Any 8-character alphanumeric secret counts as temporary, including ones
// chosen by the user.
var temporarySecretPattern = regexp.MustCompile(`^[a-zA-Z0-9]{8}$`)

// SessionListener is told about every session change made by AuthService.
// A nil session means signed out.
type SessionListener func(ctx context.Context, session *models.Session)

type AuthService struct {
	directory *Directory
	session   *SessionStore
	tokens    *services.TokenService
	latency   time.Duration
	logger    zerolog.Logger
	listeners []SessionListener
}

func NewAuthService(directory *Directory, session *SessionStore, tokens *services.TokenService, latency time.Duration, logger zerolog.Logger) *AuthService {
	return &AuthService{
		directory: directory,
		session:   session,
		tokens:    tokens,
		latency:   latency,
		logger:    logger,
	}
}

func (s *AuthService) OnSessionChange(fn SessionListener) {
	s.listeners = append(s.listeners, fn)
}

func (s *AuthService) CurrentUser() (*models.Session, bool) {
	return s.session.Current()
}

func (s *AuthService) IsAuthenticated() bool {
	return s.session.Active()
}

func (s *AuthService) IsAdmin() bool {
	current, ok := s.session.Current()
	return ok && current.IsAdmin()
}

func (s *AuthService) Login(ctx context.Context, email, secret string) (*models.Session, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	identity, err := s.directory.Verify(email, secret)
	if err != nil {
		s.logger.Warn().Str("email", email).Msg("Login rejected")
		return nil, err
	}

	session, err := s.startSession(ctx, identity, temporarySecretPattern.MatchString(secret))
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int("user_id", identity.ID).Bool("temp_password", session.IsTempPassword).Msg("User logged in")
	return session, nil
}

func (s *AuthService) Signup(ctx context.Context, email, secret string) (*models.Session, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	identity, err := s.directory.Add(email, secret, models.RoleUser)
	if err != nil {
		return nil, err
	}

	session, err := s.startSession(ctx, identity, false)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int("user_id", identity.ID).Str("email", identity.Email).Msg("User registered")
	return session, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.session.Clear(); err != nil {
		return err
	}
	s.notify(ctx, nil)
	s.logger.Info().Msg("User logged out")
	return nil
}

// ResetSecret replaces the secret of email with a generated one and returns it.
func (s *AuthService) ResetSecret(ctx context.Context, email string) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", err
	}

	if _, ok := s.directory.FindByEmail(email); !ok {
		return "", ErrEmailNotFound
	}

	secret, err := generateSecret(resetSecretLen)
	if err != nil {
		return "", err
	}
	if err := s.directory.SetSecret(email, secret); err != nil {
		return "", err
	}

	s.logger.Info().Str("email", email).Msg("Password reset")
	return secret, nil
}

func (s *AuthService) ChangeSecret(ctx context.Context, current, next string) error {
	if err := s.wait(ctx); err != nil {
		return err
	}

	session, ok := s.session.Current()
	if !ok {
		return ErrNoActiveSession
	}
	if _, err := s.directory.Verify(session.Email, current); err != nil {
		return ErrInvalidCredentials
	}
	if err := s.directory.SetSecret(session.Email, next); err != nil {
		return err
	}
	if err := s.session.Update(func(sess *models.Session) { sess.IsTempPassword = false }); err != nil {
		return err
	}

	s.logger.Info().Int("user_id", session.ID).Msg("Password changed")
	return nil
}

// Refresh re-mints the token of the current session.
func (s *AuthService) Refresh() error {
	session, ok := s.session.Current()
	if !ok {
		return ErrNoActiveSession
	}
	token, err := s.tokens.GenerateToken(session.ID, session.Email, session.Role)
	if err != nil {
		return err
	}
	return s.session.Update(func(sess *models.Session) { sess.Token = token })
}

// ValidateNewSecret checks a new secret and its confirmation before any
// service call is made.
func ValidateNewSecret(secret, confirm string) error {
	if secret != confirm {
		return ErrSecretMismatch
	}
	if len(secret) < minSecretLength {
		return ErrSecretTooShort
	}
	return nil
}

func (s *AuthService) startSession(ctx context.Context, identity models.Identity, temp bool) (*models.Session, error) {
	token, err := s.tokens.GenerateToken(identity.ID, identity.Email, identity.Role)
	if err != nil {
		return nil, err
	}

	session := models.Session{
		ID:             identity.ID,
		Email:          identity.Email,
		Role:           identity.Role,
		IsTempPassword: temp,
		Token:          token,
	}
	if err := s.session.Set(session); err != nil {
		return nil, err
	}
	s.notify(ctx, &session)
	return &session, nil
}

func (s *AuthService) notify(ctx context.Context, session *models.Session) {
	for _, fn := range s.listeners {
		fn(ctx, session)
	}
}

func (s *AuthService) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func generateSecret(n int) (string, error) {
	limit := big.NewInt(int64(len(resetAlphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		out[i] = resetAlphabet[idx.Int64()]
	}
	return string(out), nil
}
