package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token kinds. Access tokens authenticate API and WebSocket requests;
// refresh tokens are only good for the refresh endpoint.
const (
	kindAccess  = "access"
	kindRefresh = "refresh"
)

const tokenIssuer = "broadside"

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrTokenKind    = errors.New("wrong token kind")
)

// Claims carries the player identity inside a signed token.
type Claims struct {
	UserID string `json:"user_id"`
	Kind   string `json:"kind"`
	jwt.RegisteredClaims
}

// JWTManager signs and verifies guest-session tokens. Access tokens last
// an hour so they outlive a slow game. Guests have no password to log
// back in with, so the refresh token lasts 30 days.
type JWTManager struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewJWTManager creates a JWTManager with the given signing secret.
func NewJWTManager(secret string) *JWTManager {
	return &JWTManager{
		key:        []byte(secret),
		accessTTL:  time.Hour,
		refreshTTL: 30 * 24 * time.Hour,
	}
}

func (m *JWTManager) sign(userID, kind string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

func (m *JWTManager) parse(tokenStr, kind string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{},
		func(*jwt.Token) (any, error) { return m.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if claims.Kind != kind {
		return nil, ErrTokenKind
	}
	return claims, nil
}

// ValidateAccessToken checks an API credential and returns its claims.
func (m *JWTManager) ValidateAccessToken(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, kindAccess)
}

// ValidateRefreshToken checks a token presented to the refresh endpoint.
func (m *JWTManager) ValidateRefreshToken(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, kindRefresh)
}

// TokenPair is the credential set handed to a guest on login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"` // access token lifetime in seconds
}

// GenerateTokenPair issues a fresh access and refresh token for a player.
func (m *JWTManager) GenerateTokenPair(userID string) (*TokenPair, error) {
	access, err := m.sign(userID, kindAccess, m.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := m.sign(userID, kindRefresh, m.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(m.accessTTL.Seconds()),
	}, nil
}
