package service

import (
	"errors"
	"fmt"
)

// Service error kinds. Every error returned by UserService matches exactly
// one of these with errors.Is. The API layer maps kinds to status codes and
// never shows the wrapped cause to callers.
var (
	// ErrValidation indicates a missing or malformed input field.
	// Returned before any external call.
	ErrValidation = errors.New("invalid input")

	// ErrDuplicateEmail indicates a create for an email that is already
	// registered.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrEmailInUse indicates an email change to an address owned by
	// another profile.
	ErrEmailInUse = errors.New("email in use by another account")

	// ErrUserNotFound is the parent of the lookup specific not found errors.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserNotFoundByID indicates no profile has the requested id.
	ErrUserNotFoundByID = fmt.Errorf("%w by id", ErrUserNotFound)

	// ErrUserNotFoundByEmail indicates no profile has the requested email.
	ErrUserNotFoundByEmail = fmt.Errorf("%w by email", ErrUserNotFound)

	// ErrUserNotFoundByIdentityRef indicates no profile has the requested
	// identity reference.
	ErrUserNotFoundByIdentityRef = fmt.Errorf("%w by identity reference", ErrUserNotFound)

	// ErrProfileMissing indicates an authenticated identity with no backing
	// profile. This is a data integrity problem, not a normal not found.
	ErrProfileMissing = errors.New("authenticated identity has no profile")

	// ErrProfileLookup indicates the profile store could not be read.
	ErrProfileLookup = errors.New("profile lookup failed")

	// ErrIdentityProvider wraps any failed identity provider call other than
	// a claim assignment.
	ErrIdentityProvider = errors.New("identity provider call failed")

	// ErrClaimAssignment indicates the role claim could not be pushed.
	ErrClaimAssignment = errors.New("role claim assignment failed")

	// ErrImageStore indicates the image store rejected an upload.
	ErrImageStore = errors.New("image store call failed")

	// ErrProfileWrite indicates the profile store rejected a write.
	ErrProfileWrite = errors.New("profile write failed")

	// ErrNotFoundInProvider indicates a reset was requested for an address
	// the identity provider does not know.
	ErrNotFoundInProvider = errors.New("email not registered with identity provider")

	// ErrNotFoundInStore indicates a reset was requested for an identity
	// that has no profile.
	ErrNotFoundInStore = errors.New("email has no profile")

	// ErrResetDelivery indicates a reset link could not be generated or sent.
	ErrResetDelivery = errors.New("password reset delivery failed")
)

// UserServiceError wraps errors from the user service with context.
type UserServiceError struct {
	// Operation is the operation that failed (e.g., "create_user", "change_email")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Kind is the sentinel callers branch on
	Kind error
	// Err is the underlying error that caused the failure, if any
	Err error
}

// Error implements the error interface for UserServiceError.
func (e *UserServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("user service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("user service %s failed: %s", e.Operation, e.Message)
}

// Unwrap exposes both the kind and the cause to errors.Is/errors.As.
func (e *UserServiceError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewUserServiceError creates a UserServiceError of the given kind.
func NewUserServiceError(operation string, kind error, message string, err error) error {
	return &UserServiceError{
		Operation: operation,
		Message:   message,
		Kind:      kind,
		Err:       err,
	}
}
