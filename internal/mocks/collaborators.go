package mocks

import (
	"context"

	"github.com/phrazzld/accounts-api/internal/events"
	"github.com/stretchr/testify/mock"
)

// MockImageStore is a mock of service.ImageStore for use with testify/mock
type MockImageStore struct {
	mock.Mock
}

// Upload is a mock implementation of ImageStore.Upload
func (m *MockImageStore) Upload(ctx context.Context, folder, payload string) (string, error) {
	args := m.Called(ctx, folder, payload)
	return args.String(0), args.Error(1)
}

// Delete is a mock implementation of ImageStore.Delete
func (m *MockImageStore) Delete(ctx context.Context, imageURL string) error {
	return m.Called(ctx, imageURL).Error(0)
}

// MockResetNotifier is a mock of service.ResetNotifier for use with testify/mock
type MockResetNotifier struct {
	mock.Mock
}

// SendResetLink is a mock implementation of ResetNotifier.SendResetLink
func (m *MockResetNotifier) SendResetLink(ctx context.Context, address, link string) error {
	return m.Called(ctx, address, link).Error(0)
}

// MockPasswordHasher is a mock of auth.PasswordHasher for use with testify/mock
type MockPasswordHasher struct {
	mock.Mock
}

// Hash is a mock implementation of auth.PasswordHasher.Hash
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

// MockEventEmitter is a mock of events.EventEmitter for use with testify/mock
type MockEventEmitter struct {
	mock.Mock
}

// EmitEvent is a mock implementation of events.EventEmitter.EmitEvent
func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.Event) error {
	return m.Called(ctx, event).Error(0)
}

// EventOfType matches an *events.Event argument by type.
func EventOfType(eventType string) any {
	return mock.MatchedBy(func(e *events.Event) bool {
		return e != nil && e.Type == eventType
	})
}
