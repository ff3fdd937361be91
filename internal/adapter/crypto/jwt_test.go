package crypto

import (
	"context"
	"errors"
	"testing"
	"time"

	"gitlab.com/fcv-judge.net/internal/config"
	"gitlab.com/fcv-judge.net/internal/static/errs"
)

func TestHMACRoundTrip(t *testing.T) {
	svc := NewJWTService(&config.JwtConfig{Secret: "s3cret", Method: "HS256"})
	ctx := context.Background()

	token, err := svc.GenerateTokenHMAC(ctx, "HS256", map[string]interface{}{"sub": "app-server"})
	if err != nil {
		t.Fatalf("GenerateTokenHMAC: %v", err)
	}

	ok, err := svc.VerifyTokenHMAC(ctx, token, "HS256")
	if err != nil || !ok {
		t.Fatalf("VerifyTokenHMAC: %v, %v", ok, err)
	}
	claims, err := svc.ClaimsHMAC(ctx, token, "HS256")
	if err != nil {
		t.Fatalf("ClaimsHMAC: %v", err)
	}
	if claims["sub"] != "app-server" {
		t.Errorf("unexpected subject %v", claims["sub"])
	}
}

func TestVerify_RejectsWrongSecret(t *testing.T) {
	ctx := context.Background()
	issuer := NewJWTService(&config.JwtConfig{Secret: "one"})
	verifier := NewJWTService(&config.JwtConfig{Secret: "two"})

	token, _ := issuer.GenerateTokenHMAC(ctx, "HS256", map[string]interface{}{"sub": "x"})
	if _, err := verifier.VerifyTokenHMAC(ctx, token, "HS256"); !errors.Is(err, errs.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_RejectsExpiredAndMissingExpiry(t *testing.T) {
	ctx := context.Background()
	svc := NewJWTService(&config.JwtConfig{Secret: "s3cret"})

	expired, _ := svc.GenerateTokenHMAC(ctx, "HS256", map[string]interface{}{"exp": time.Now().Add(-time.Minute).Unix()})
	if _, err := svc.VerifyTokenHMAC(ctx, expired, "HS256"); err == nil {
		t.Error("expired token should be rejected")
	}
	if _, err := svc.VerifyTokenHMAC(ctx, "not.a.token", "HS256"); err == nil {
		t.Error("garbage should be rejected")
	}
}

func TestVerify_RejectsOtherAlgorithm(t *testing.T) {
	ctx := context.Background()
	svc := NewJWTService(&config.JwtConfig{Secret: "s3cret"})

	token, _ := svc.GenerateTokenHMAC(ctx, "HS512", map[string]interface{}{"sub": "x"})
	if _, err := svc.VerifyTokenHMAC(ctx, token, "HS256"); err == nil {
		t.Error("token signed with another algorithm should be rejected")
	}
}

func TestGenerate_RejectsNonHMAC(t *testing.T) {
	svc := NewJWTService(&config.JwtConfig{Secret: "s3cret"})
	if _, err := svc.GenerateTokenHMAC(context.Background(), "RS256", map[string]interface{}{}); err == nil {
		t.Error("RS256 should be rejected")
	}
}
