package mocks

import (
	"context"
	"iter"

	"github.com/phrazzld/accounts-api/internal/domain"
	"github.com/phrazzld/accounts-api/internal/service"
	"github.com/stretchr/testify/mock"
)

// MockUserService is a mock of service.UserService for use with testify/mock
type MockUserService struct {
	mock.Mock
}

var _ service.UserService = (*MockUserService)(nil)

func publicResult(args mock.Arguments) (*domain.PublicProfile, error) {
	if p, ok := args.Get(0).(*domain.PublicProfile); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

// ListUsers is a mock implementation of UserService.ListUsers.
// The first return value is the slice of profiles to yield, the second an
// error yielded after them.
func (m *MockUserService) ListUsers(ctx context.Context) iter.Seq2[*domain.PublicProfile, error] {
	args := m.Called(ctx)
	profiles, _ := args.Get(0).([]*domain.PublicProfile)
	err := args.Error(1)
	return func(yield func(*domain.PublicProfile, error) bool) {
		for _, p := range profiles {
			if !yield(p, nil) {
				return
			}
		}
		if err != nil {
			yield(nil, err)
		}
	}
}

// GetUser is a mock implementation of UserService.GetUser
func (m *MockUserService) GetUser(ctx context.Context, id int64) (*domain.PublicProfile, error) {
	return publicResult(m.Called(ctx, id))
}

// GetUserByEmail is a mock implementation of UserService.GetUserByEmail
func (m *MockUserService) GetUserByEmail(ctx context.Context, email string) (*domain.PublicProfile, error) {
	return publicResult(m.Called(ctx, email))
}

// GetMyProfile is a mock implementation of UserService.GetMyProfile
func (m *MockUserService) GetMyProfile(ctx context.Context, identityRef string) (*domain.PublicProfile, error) {
	return publicResult(m.Called(ctx, identityRef))
}

// CreateUser is a mock implementation of UserService.CreateUser
func (m *MockUserService) CreateUser(ctx context.Context, in service.CreateUserInput) (*domain.PublicProfile, error) {
	return publicResult(m.Called(ctx, in))
}

// UpdateUser is a mock implementation of UserService.UpdateUser
func (m *MockUserService) UpdateUser(
	ctx context.Context,
	id int64,
	in service.UpdateUserInput,
) (*domain.PublicProfile, error) {
	return publicResult(m.Called(ctx, id, in))
}

// DeleteUser is a mock implementation of UserService.DeleteUser
func (m *MockUserService) DeleteUser(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// ChangeEmail is a mock implementation of UserService.ChangeEmail
func (m *MockUserService) ChangeEmail(ctx context.Context, identityRef, newEmail string) error {
	return m.Called(ctx, identityRef, newEmail).Error(0)
}

// ChangePassword is a mock implementation of UserService.ChangePassword
func (m *MockUserService) ChangePassword(ctx context.Context, identityRef, newPassword string) error {
	return m.Called(ctx, identityRef, newPassword).Error(0)
}

// UpdateMyProfile is a mock implementation of UserService.UpdateMyProfile
func (m *MockUserService) UpdateMyProfile(
	ctx context.Context,
	identityRef string,
	in service.UpdateProfileInput,
) (*domain.PublicProfile, error) {
	return publicResult(m.Called(ctx, identityRef, in))
}

// RequestPasswordReset is a mock implementation of UserService.RequestPasswordReset
func (m *MockUserService) RequestPasswordReset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}
