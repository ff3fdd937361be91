package crypto

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"gitlab.com/fcv-judge.net/internal/config"
	"gitlab.com/fcv-judge.net/internal/core/ports/primary"
	"gitlab.com/fcv-judge.net/internal/static/errs"
)

var _ primary.TokenService = (*JWTServiceImpl)(nil)

const defaultTokenTTL = time.Hour

type JWTServiceImpl struct {
	HMACSecretKey string
}

func NewJWTService(jwtConfig *config.JwtConfig) *JWTServiceImpl {
	return &JWTServiceImpl{
		HMACSecretKey: jwtConfig.Secret,
	}
}

func (j *JWTServiceImpl) GenerateTokenHMAC(ctx context.Context, method string, claims map[string]interface{}) (string, error) {
	signingMethod := jwt.GetSigningMethod(method)
	if _, ok := signingMethod.(*jwt.SigningMethodHMAC); !ok {
		return "", fmt.Errorf("unsupported signing method: %s", method)
	}

	if _, exists := claims["exp"]; !exists {
		claims["exp"] = time.Now().Add(defaultTokenTTL).Unix()
	}

	tok := jwt.NewWithClaims(signingMethod, jwt.MapClaims(claims))
	return tok.SignedString([]byte(j.HMACSecretKey))
}

func (j *JWTServiceImpl) VerifyTokenHMAC(ctx context.Context, token string, method string) (bool, error) {
	if _, err := j.ClaimsHMAC(ctx, token, method); err != nil {
		return false, err
	}
	return true, nil
}

func (j *JWTServiceImpl) ClaimsHMAC(ctx context.Context, token string, method string) (map[string]interface{}, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(j.HMACSecretKey), nil
	}, jwt.WithValidMethods([]string{method}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, errs.ErrInvalidToken
	}
	return claims, nil
}
