package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultRole is the claim value used when a profile carries no roles.
const DefaultRole = "USER"

// Password length bounds. The lower bound is the identity provider's minimum,
// the upper bound is bcrypt's input limit.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

// UserProfile is the durable part of a user account. Authentication data and
// the role claim live in the identity provider; the profile keeps the
// queryable attributes plus cached copies of email and password hash.
type UserProfile struct {
	ID             int64     `json:"id"`
	IdentityRef    string    `json:"identity_ref"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	LastName       string    `json:"last_name"`
	DocumentType   string    `json:"document_type"`
	DocumentNumber string    `json:"document_number"`
	CellPhone      string    `json:"cell_phone"`
	PasswordHash   string    `json:"-"`
	Roles          []string  `json:"roles"`
	ProfileImage   *string   `json:"profile_image,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PublicProfile is the shape of a profile returned to API callers.
type PublicProfile struct {
	ID             int64     `json:"id"`
	IdentityRef    string    `json:"identity_ref"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	LastName       string    `json:"last_name"`
	DocumentType   string    `json:"document_type"`
	DocumentNumber string    `json:"document_number"`
	CellPhone      string    `json:"cell_phone"`
	Roles          []string  `json:"roles"`
	ProfileImage   *string   `json:"profile_image"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Public maps the profile to its public shape. The password hash is dropped
// and the roles slice is copied so callers cannot mutate the profile.
func (p *UserProfile) Public() *PublicProfile {
	roles := make([]string, len(p.Roles))
	copy(roles, p.Roles)

	return &PublicProfile{
		ID:             p.ID,
		IdentityRef:    p.IdentityRef,
		Email:          p.Email,
		Name:           p.Name,
		LastName:       p.LastName,
		DocumentType:   p.DocumentType,
		DocumentNumber: p.DocumentNumber,
		CellPhone:      p.CellPhone,
		Roles:          roles,
		ProfileImage:   p.ProfileImage,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// PrimaryRole returns the role pushed to the identity provider as a claim.
func (p *UserProfile) PrimaryRole() string {
	return PrimaryRole(p.Roles)
}

// HasImage reports whether the profile references a stored image.
func (p *UserProfile) HasImage() bool {
	return p.ProfileImage != nil && *p.ProfileImage != ""
}

// Validate checks the fields every persisted profile must carry.
func (p *UserProfile) Validate() error {
	if p.IdentityRef == "" {
		return ErrEmptyIdentityRef
	}
	if err := ValidateEmail(p.Email); err != nil {
		return err
	}
	return ValidateRequiredAttributes(p.Name, p.LastName, p.DocumentNumber)
}

// PrimaryRole returns the upper-cased first role, or DefaultRole when the
// list is empty. The list itself is never rewritten.
func PrimaryRole(roles []string) string {
	if len(roles) == 0 || strings.TrimSpace(roles[0]) == "" {
		return DefaultRole
	}
	return strings.ToUpper(strings.TrimSpace(roles[0]))
}

// RolesEqual compares two role lists element by element. Order matters
// because the first element decides the claim.
func RolesEqual(a, b []string) bool {
	return slices.Equal(a, b)
}

// EmailRule is the validator rule applied to every email address, both on
// request payloads and inside the domain.
const EmailRule = "email,max=254"

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateEmail checks that the address is present and matches EmailRule.
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return ErrEmptyEmail
	}
	if err := validate.Var(email, EmailRule); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword checks the password length bounds.
func ValidatePassword(password string) error {
	switch {
	case len(password) < MinPasswordLength:
		return ErrPasswordTooShort
	case len(password) > MaxPasswordLength:
		return ErrPasswordTooLong
	}
	return nil
}

// ValidateRequiredAttributes checks the attributes that must be non-empty on
// every profile write.
func ValidateRequiredAttributes(name, lastName, documentNumber string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrMissingName)
	}
	if strings.TrimSpace(lastName) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrMissingLastName)
	}
	if strings.TrimSpace(documentNumber) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrMissingDocumentNumber)
	}
	return nil
}
