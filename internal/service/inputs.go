package service

import (
	"strings"

	"github.com/phrazzld/accounts-api/internal/domain"
)

// CreateUserInput carries the attributes of a new user.
type CreateUserInput struct {
	Email          string
	Password       string
	Name           string
	LastName       string
	DocumentType   string
	DocumentNumber string
	CellPhone      string
	// Roles is stored as given; its first element becomes the role claim.
	Roles []string
	// ProfileImage is an optional base64 data URL.
	ProfileImage string
}

// UpdateUserInput carries the attributes an administrator may change.
type UpdateUserInput struct {
	Name           string
	LastName       string
	DocumentType   string
	DocumentNumber string
	CellPhone      string
	// Roles replaces the stored list. Nil keeps the current roles; an empty
	// non-nil slice clears them.
	Roles []string
	// ProfileImage, when set, replaces the current image.
	ProfileImage string
}

// UpdateProfileInput carries the attributes a user may change on their own
// profile. Email, password and roles have dedicated operations or are
// admin only.
type UpdateProfileInput struct {
	Name           string
	LastName       string
	DocumentType   string
	DocumentNumber string
	CellPhone      string
	ProfileImage   string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func copyRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, strings.TrimSpace(r))
	}
	return out
}

func (in CreateUserInput) validate(email string) error {
	if err := domain.ValidateEmail(email); err != nil {
		return err
	}
	if err := domain.ValidatePassword(in.Password); err != nil {
		return err
	}
	return domain.ValidateRequiredAttributes(in.Name, in.LastName, in.DocumentNumber)
}

func (in UpdateUserInput) validate() error {
	return domain.ValidateRequiredAttributes(in.Name, in.LastName, in.DocumentNumber)
}

func (in UpdateProfileInput) validate() error {
	return domain.ValidateRequiredAttributes(in.Name, in.LastName, in.DocumentNumber)
}

// applyAttributes copies the mutable attributes shared by both update paths.
func applyAttributes(p *domain.UserProfile, name, lastName, docType, docNumber, cellPhone string) {
	p.Name = strings.TrimSpace(name)
	p.LastName = strings.TrimSpace(lastName)
	p.DocumentType = strings.TrimSpace(docType)
	p.DocumentNumber = strings.TrimSpace(docNumber)
	p.CellPhone = strings.TrimSpace(cellPhone)
}
