package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const testSecret = "harbor-master-signing-key"

func TestTokenPairRoundTrip(t *testing.T) {
	mgr := NewJWTManager(testSecret)
	pair, err := mgr.GenerateTokenPair("guest-c4f1")
	if err != nil {
		t.Fatalf("generate token pair: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens to be issued")
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Error("access and refresh tokens must differ")
	}
	if pair.ExpiresIn != 3600 {
		t.Errorf("expected expires_in=3600, got %d", pair.ExpiresIn)
	}

	claims, err := mgr.ValidateAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("validate access token: %v", err)
	}
	if claims.UserID != "guest-c4f1" {
		t.Errorf("expected user_id=guest-c4f1, got %s", claims.UserID)
	}
	if claims.Subject != "guest-c4f1" {
		t.Errorf("expected subject=guest-c4f1, got %s", claims.Subject)
	}

	claims, err = mgr.ValidateRefreshToken(pair.RefreshToken)
	if err != nil {
		t.Fatalf("validate refresh token: %v", err)
	}
	if claims.UserID != "guest-c4f1" {
		t.Errorf("expected user_id=guest-c4f1, got %s", claims.UserID)
	}
}

func TestTokenKindsNotInterchangeable(t *testing.T) {
	mgr := NewJWTManager(testSecret)
	pair, err := mgr.GenerateTokenPair("guest-9")
	if err != nil {
		t.Fatalf("generate token pair: %v", err)
	}

	if _, err := mgr.ValidateAccessToken(pair.RefreshToken); !errors.Is(err, ErrTokenKind) {
		t.Errorf("refresh token as API credential: expected ErrTokenKind, got %v", err)
	}
	if _, err := mgr.ValidateRefreshToken(pair.AccessToken); !errors.Is(err, ErrTokenKind) {
		t.Errorf("access token at refresh endpoint: expected ErrTokenKind, got %v", err)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	pair, err := NewJWTManager("first-key").GenerateTokenPair("guest-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	other := NewJWTManager("second-key")
	if _, err := other.ValidateAccessToken(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken with wrong secret, got %v", err)
	}
}

func TestValidateTokenTampered(t *testing.T) {
	mgr := NewJWTManager(testSecret)
	pair, err := mgr.GenerateTokenPair("guest-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// Flip a character in the payload segment.
	parts := strings.Split(pair.AccessToken, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 token segments, got %d", len(parts))
	}
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	if _, err := mgr.ValidateAccessToken(tampered); err == nil {
		t.Error("expected tampered token to be rejected")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	mgr := NewJWTManager(testSecret)
	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := mgr.ValidateAccessToken(tok); err == nil {
			t.Errorf("expected error for token %q", tok)
		}
	}
}

func TestExpiredAccessToken(t *testing.T) {
	mgr := &JWTManager{
		key:        []byte(testSecret),
		accessTTL:  -time.Minute,
		refreshTTL: 30 * 24 * time.Hour,
	}
	pair, err := mgr.GenerateTokenPair("guest-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := mgr.ValidateAccessToken(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
	// The refresh token is still live and lets the guest recover.
	if _, err := mgr.ValidateRefreshToken(pair.RefreshToken); err != nil {
		t.Errorf("refresh token should still validate: %v", err)
	}
}

func TestDifferentPlayersGetDifferentTokens(t *testing.T) {
	mgr := NewJWTManager(testSecret)
	p1, err := mgr.GenerateTokenPair("guest-ada")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	p2, err := mgr.GenerateTokenPair("guest-bly")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if p1.AccessToken == p2.AccessToken {
		t.Error("different players should get different access tokens")
	}
}
