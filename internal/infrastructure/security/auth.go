// Package security provides bearer token validation and password hashing
package security

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/alchemorsel/foodgram/internal/infrastructure/config"
	"github.com/alchemorsel/foodgram/internal/ports/outbound"
)

const (
	audience      = "foodgram-api"
	revokedPrefix = "revoked_token:"
)

// Token validation errors
var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrTokenRevoked = errors.New("token has been revoked")
	ErrNoSecret     = errors.New("jwt secret is not configured")
)

// AuthService issues and validates access tokens and hashes passwords
type AuthService struct {
	config    config.AuthConfig
	logger    *zap.Logger
	revoked   outbound.CacheRepository
	jwtSecret []byte
	now       func() time.Time
}

// NewAuthService creates a new authentication service. revoked stores the
// ids of revoked tokens; it may be nil, which disables revocation.
func NewAuthService(cfg config.AuthConfig, logger *zap.Logger, revoked outbound.CacheRepository) *AuthService {
	if cfg.BCryptCost == 0 {
		cfg.BCryptCost = bcrypt.DefaultCost
	}
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "foodgram"
	}
	return &AuthService{
		config:    cfg,
		logger:    logger.Named("auth"),
		revoked:   revoked,
		jwtSecret: []byte(cfg.JWTSecret),
		now:       time.Now,
	}
}

// Claims represents JWT claims structure. Subject carries the user id.
type Claims struct {
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses the subject as a user id
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// GenerateAccessToken signs an access token for userID
func (a *AuthService) GenerateAccessToken(userID int64, username string) (string, error) {
	if len(a.jwtSecret) == 0 {
		return "", ErrNoSecret
	}

	now := a.now()
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.config.JWTIssuer,
			Subject:   strconv.FormatInt(userID, 10),
			Audience:  []string{audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(a.config.JWTExpiration)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(a.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken validates and parses a JWT token
func (a *AuthService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	if len(a.jwtSecret) == 0 {
		return nil, ErrNoSecret
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return a.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.config.JWTIssuer),
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}

	if a.isTokenRevoked(ctx, claims.ID) {
		return nil, ErrTokenRevoked
	}

	return claims, nil
}

// RevokeToken adds the token id to the revocation list until it expires
func (a *AuthService) RevokeToken(ctx context.Context, claims *Claims) error {
	if a.revoked == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return a.revoked.Set(ctx, revokedPrefix+claims.ID, []byte("1"), ttl)
}

func (a *AuthService) isTokenRevoked(ctx context.Context, tokenID string) bool {
	if a.revoked == nil {
		return false
	}
	_, err := a.revoked.Get(ctx, revokedPrefix+tokenID)
	switch {
	case err == nil:
		return true
	case errors.Is(err, outbound.ErrCacheMiss):
		return false
	default:
		a.logger.Warn("Failed to check token revocation", zap.Error(err))
		return false
	}
}

// HashPassword securely hashes a password using bcrypt
func (a *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.config.BCryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword verifies a password against its hash
func (a *AuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
