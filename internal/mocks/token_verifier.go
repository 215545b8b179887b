package mocks

import (
	"context"

	"github.com/phrazzld/accounts-api/internal/service/auth"
)

// MockTokenVerifier implements auth.TokenVerifier for testing
type MockTokenVerifier struct {
	// VerifyTokenFn allows for custom verification logic in tests
	VerifyTokenFn func(ctx context.Context, token string) (*auth.Claims, error)

	// Claims is returned when VerifyTokenFn is nil
	Claims *auth.Claims
	// Err is returned when VerifyTokenFn is nil
	Err error

	// LastToken stores the last token passed to VerifyToken
	LastToken string
}

// VerifyToken implements the auth.TokenVerifier interface
func (m *MockTokenVerifier) VerifyToken(ctx context.Context, token string) (*auth.Claims, error) {
	m.LastToken = token
	if m.VerifyTokenFn != nil {
		return m.VerifyTokenFn(ctx, token)
	}
	return m.Claims, m.Err
}
