package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// It is usually wrapped with the name of the offending field.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrEmptyEmail is returned when an email address is missing.
	ErrEmptyEmail = errors.New("email cannot be empty")

	// ErrPasswordTooShort is returned when a password is below the provider minimum.
	ErrPasswordTooShort = errors.New("password must be at least 6 characters long")

	// ErrPasswordTooLong is returned when a password exceeds bcrypt's input limit.
	ErrPasswordTooLong = errors.New("password must be at most 72 characters long")

	// ErrMissingName is returned when the name attribute is empty.
	ErrMissingName = errors.New("name cannot be empty")

	// ErrMissingLastName is returned when the last name attribute is empty.
	ErrMissingLastName = errors.New("last name cannot be empty")

	// ErrMissingDocumentNumber is returned when the document number is empty.
	ErrMissingDocumentNumber = errors.New("document number cannot be empty")

	// ErrEmptyIdentityRef is returned when a profile has no identity reference.
	ErrEmptyIdentityRef = errors.New("identity reference cannot be empty")

	// ErrInvalidImage is returned when an image payload cannot be decoded or
	// has a media type that is not accepted.
	ErrInvalidImage = errors.New("invalid image payload")
)

// Identity provider outcomes that callers act on. Provider clients wrap
// their transport errors with these so the orchestration layer can react
// without knowing the provider's error codes.
var (
	// ErrIdentityNotFound is returned when the provider has no record for the
	// given identity reference or email.
	ErrIdentityNotFound = errors.New("identity record not found")

	// ErrIdentityEmailExists is returned when the provider already has a
	// record for the email.
	ErrIdentityEmailExists = errors.New("identity email already exists")
)
