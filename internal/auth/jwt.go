package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("authorization token required")
)

// Token types carried in the token_type claim. An access token is never
// accepted where a refresh token is expected and vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenManager handles JWT access/refresh token generation and validation.
type TokenManager struct {
	secretKey  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// Claims represents the custom JWT claims for a user session.
type Claims struct {
	UserID    int64  `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is the result of a successful login.
type TokenPair struct {
	Access  string
	Refresh string
}

// NewTokenManager creates a token manager.
// secretKey should be a strong random string (at least 32 bytes).
func NewTokenManager(secretKey string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secretKey:  []byte(secretKey),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// AccessTTL is how long access tokens remain valid.
func (m *TokenManager) AccessTTL() time.Duration { return m.accessTTL }

// GeneratePair issues a fresh access and refresh token for userID.
func (m *TokenManager) GeneratePair(userID int64) (TokenPair, error) {
	access, err := m.GenerateAccess(userID)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := m.generate(userID, TokenTypeRefresh, m.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// GenerateAccess issues a new access token for userID.
func (m *TokenManager) GenerateAccess(userID int64) (string, error) {
	return m.generate(userID, TokenTypeAccess, m.accessTTL)
}

func (m *TokenManager) generate(userID int64, tokenType string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := &Claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Validate parses tokenString, checks signature, expiry and that its
// token_type matches tokenType, and returns the claims.
func (m *TokenManager) Validate(tokenString, tokenType string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			// Verify the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != tokenType {
		return nil, fmt.Errorf("%w: token has wrong type", ErrInvalidToken)
	}
	if claims.UserID <= 0 {
		return nil, fmt.Errorf("%w: token has no user", ErrInvalidToken)
	}

	return claims, nil
}
