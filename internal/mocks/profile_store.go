package mocks

import (
	"context"
	"iter"

	"github.com/phrazzld/accounts-api/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockProfileStore is a mock of store.ProfileStore for use with testify/mock
type MockProfileStore struct {
	mock.Mock
}

func profileResult(args mock.Arguments) (*domain.UserProfile, error) {
	if p, ok := args.Get(0).(*domain.UserProfile); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetByID is a mock implementation of store.ProfileStore.GetByID
func (m *MockProfileStore) GetByID(ctx context.Context, id int64) (*domain.UserProfile, error) {
	return profileResult(m.Called(ctx, id))
}

// GetByEmail is a mock implementation of store.ProfileStore.GetByEmail
func (m *MockProfileStore) GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	return profileResult(m.Called(ctx, email))
}

// GetByIdentityRef is a mock implementation of store.ProfileStore.GetByIdentityRef
func (m *MockProfileStore) GetByIdentityRef(ctx context.Context, identityRef string) (*domain.UserProfile, error) {
	return profileResult(m.Called(ctx, identityRef))
}

// List is a mock implementation of store.ProfileStore.List.
// The first return value is the slice of profiles to yield, the second an
// error yielded after them.
func (m *MockProfileStore) List(ctx context.Context) iter.Seq2[*domain.UserProfile, error] {
	args := m.Called(ctx)
	profiles, _ := args.Get(0).([]*domain.UserProfile)
	err := args.Error(1)
	return func(yield func(*domain.UserProfile, error) bool) {
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

// Create is a mock implementation of store.ProfileStore.Create
func (m *MockProfileStore) Create(ctx context.Context, profile *domain.UserProfile) error {
	return m.Called(ctx, profile).Error(0)
}

// Update is a mock implementation of store.ProfileStore.Update
func (m *MockProfileStore) Update(ctx context.Context, profile *domain.UserProfile) error {
	return m.Called(ctx, profile).Error(0)
}

// Delete is a mock implementation of store.ProfileStore.Delete
func (m *MockProfileStore) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
