package service

import (
	"context"
)

// IdentityProvider manages authentication records and role claims.
// Implementations wrap "no such record" failures with
// domain.ErrIdentityNotFound and "email taken" failures with
// domain.ErrIdentityEmailExists.
type IdentityProvider interface {
	// CreateUser creates an enabled, unverified record and returns its reference.
	CreateUser(ctx context.Context, email, password string) (string, error)

	// SetRoleClaim replaces the record's role claim.
	SetRoleClaim(ctx context.Context, identityRef, role string) error

	// UpdateEmail changes the record's email.
	UpdateEmail(ctx context.Context, identityRef, email string) error

	// UpdatePassword changes the record's credential.
	UpdatePassword(ctx context.Context, identityRef, password string) error

	// DeleteUser removes the record.
	DeleteUser(ctx context.Context, identityRef string) error

	// UserExists reports whether a record exists for the email.
	UserExists(ctx context.Context, email string) (bool, error)

	// GenerateResetLink returns a password reset link for the email.
	GenerateResetLink(ctx context.Context, email string) (string, error)
}

// ImageStore stores profile images addressed by public URL.
// Upload wraps undecodable payloads with domain.ErrInvalidImage.
type ImageStore interface {
	// Upload stores an encoded image payload under folder and returns its
	// public URL.
	Upload(ctx context.Context, folder, payload string) (string, error)

	// Delete removes the image behind a public URL.
	Delete(ctx context.Context, imageURL string) error
}

// ResetNotifier delivers password reset links.
type ResetNotifier interface {
	SendResetLink(ctx context.Context, address, link string) error
}
