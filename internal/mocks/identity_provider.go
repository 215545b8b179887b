package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockIdentityProvider is a mock of service.IdentityProvider for use with testify/mock
type MockIdentityProvider struct {
	mock.Mock
}

// CreateUser is a mock implementation of IdentityProvider.CreateUser
func (m *MockIdentityProvider) CreateUser(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

// SetRoleClaim is a mock implementation of IdentityProvider.SetRoleClaim
func (m *MockIdentityProvider) SetRoleClaim(ctx context.Context, identityRef, role string) error {
	return m.Called(ctx, identityRef, role).Error(0)
}

// UpdateEmail is a mock implementation of IdentityProvider.UpdateEmail
func (m *MockIdentityProvider) UpdateEmail(ctx context.Context, identityRef, email string) error {
	return m.Called(ctx, identityRef, email).Error(0)
}

// UpdatePassword is a mock implementation of IdentityProvider.UpdatePassword
func (m *MockIdentityProvider) UpdatePassword(ctx context.Context, identityRef, password string) error {
	return m.Called(ctx, identityRef, password).Error(0)
}

// DeleteUser is a mock implementation of IdentityProvider.DeleteUser
func (m *MockIdentityProvider) DeleteUser(ctx context.Context, identityRef string) error {
	return m.Called(ctx, identityRef).Error(0)
}

// UserExists is a mock implementation of IdentityProvider.UserExists
func (m *MockIdentityProvider) UserExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// GenerateResetLink is a mock implementation of IdentityProvider.GenerateResetLink
func (m *MockIdentityProvider) GenerateResetLink(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}
