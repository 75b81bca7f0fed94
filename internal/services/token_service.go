package services

import (
	"errors"
	"time"

	"mobilehub/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

const TokenTTL = 24 * time.Hour

// TokenService signs and validates the session tokens that carry an identity
// from the storefront to the collection API.
type TokenService struct {
	secretKey []byte
	logger    zerolog.Logger
	now       func() time.Time
}

type Claims struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func NewTokenService(secret string, logger zerolog.Logger) *TokenService {
	if secret == "" {
		secret = "default-secret-key-change-in-production"
		logger.Warn().Msg("JWT secret not set, using default key")
	}

	return &TokenService{
		secretKey: []byte(secret),
		logger:    logger,
		now:       time.Now,
	}
}

func (s *TokenService) GenerateToken(userID int, email string, role models.UserRole) (string, error) {
	now := s.now()

	claims := &Claims{
		UserID: userID,
		Email:  email,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error generating token")
		return "", err
	}

	return tokenString, nil
}

func (s *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secretKey, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
