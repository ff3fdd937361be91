package primary

import "context"

// TokenService issues and verifies the bearer tokens that callers of the execution
// boundary present.
type TokenService interface {
	GenerateTokenHMAC(ctx context.Context, method string, claims map[string]interface{}) (string, error)
	VerifyTokenHMAC(ctx context.Context, token string, method string) (bool, error)
	// ClaimsHMAC verifies token and returns its claims.
	ClaimsHMAC(ctx context.Context, token string, method string) (map[string]interface{}, error)
}
