package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	cfg := &JWTConfig{Secret: []byte("secret"), Issuer: "translachat", Audience: "translachat-clients", TTL: time.Hour}

	token, err := GenerateToken(cfg, "u-1", "Alice", "fr")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := ValidateToken(cfg, token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "u-1" || claims.Name != "Alice" || claims.Language != "fr" || claims.Subject != "u-1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestValidateTokenRejects(t *testing.T) {
	cfg := &JWTConfig{Secret: []byte("secret"), Issuer: "translachat", Audience: "clients", TTL: time.Hour}
	good, _ := GenerateToken(cfg, "u-1", "Alice", "en")

	expiredCfg := *cfg
	expiredCfg.TTL = -time.Minute
	expired, _ := GenerateToken(&expiredCfg, "u-1", "Alice", "en")

	otherSecret := *cfg
	otherSecret.Secret = []byte("other")

	otherIssuer := *cfg
	otherIssuer.Issuer = "someone-else"

	otherAudience := *cfg
	otherAudience.Audience = "elsewhere"

	tests := []struct {
		name  string
		cfg   *JWTConfig
		token string
	}{
		{"garbage", cfg, "not-a-token"},
		{"expired", cfg, expired},
		{"wrong secret", &otherSecret, good},
		{"wrong issuer", &otherIssuer, good},
		{"wrong audience", &otherAudience, good},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ValidateToken(tt.cfg, tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
