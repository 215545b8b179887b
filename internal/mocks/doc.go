// Package mocks provides centralized mock implementations for testing.
//
// Collaborators of the user service are mocked with testify/mock so tests
// can assert call order and arguments. The token verifier uses function
// fields, which is simpler for middleware tests that only need a fixed
// answer.
//
// Usage:
//
//	import "github.com/phrazzld/accounts-api/internal/mocks"
//
//	func TestSomething(t *testing.T) {
//	    identity := new(mocks.MockIdentityProvider)
//	    identity.On("CreateUser", mock.Anything, "a@b.co", "secret1").Return("uid-1", nil)
//
//	    // Use the mock in your test...
//
//	    identity.AssertExpectations(t)
//	}
package mocks
