package api

import (
	"github.com/phrazzld/accounts-api/internal/service"
)

// CreateUserRequest defines the payload for POST /api/admin/users.
type CreateUserRequest struct {
	Email          string   `json:"email"           validate:"required,email,max=254"`
	Password       string   `json:"password"        validate:"required,min=6,max=72"`
	Name           string   `json:"name"            validate:"required,max=100"`
	LastName       string   `json:"last_name"       validate:"required,max=100"`
	DocumentType   string   `json:"document_type"   validate:"max=20"`
	DocumentNumber string   `json:"document_number" validate:"required,max=40"`
	CellPhone      string   `json:"cell_phone"      validate:"max=30"`
	Roles          []string `json:"roles"           validate:"omitempty,dive,required,max=30"`

	// ProfileImage is an optional data URL such as data:image/png;base64,...
	ProfileImage string `json:"profile_image,omitempty"`
}

// ToInput converts the request to service input.
func (r CreateUserRequest) ToInput() service.CreateUserInput {
	return service.CreateUserInput{
		Email:          r.Email,
		Password:       r.Password,
		Name:           r.Name,
		LastName:       r.LastName,
		DocumentType:   r.DocumentType,
		DocumentNumber: r.DocumentNumber,
		CellPhone:      r.CellPhone,
		Roles:          r.Roles,
		ProfileImage:   r.ProfileImage,
	}
}

// UpdateUserRequest defines the payload for PUT /api/admin/users/{id}.
// Omitting roles keeps the current list; an empty list clears it.
type UpdateUserRequest struct {
	Name           string   `json:"name"            validate:"required,max=100"`
	LastName       string   `json:"last_name"       validate:"required,max=100"`
	DocumentType   string   `json:"document_type"   validate:"max=20"`
	DocumentNumber string   `json:"document_number" validate:"required,max=40"`
	CellPhone      string   `json:"cell_phone"      validate:"max=30"`
	Roles          []string `json:"roles"           validate:"omitempty,dive,required,max=30"`
	ProfileImage   string   `json:"profile_image,omitempty"`
}

// ToInput converts the request to service input.
func (r UpdateUserRequest) ToInput() service.UpdateUserInput {
	return service.UpdateUserInput{
		Name:           r.Name,
		LastName:       r.LastName,
		DocumentType:   r.DocumentType,
		DocumentNumber: r.DocumentNumber,
		CellPhone:      r.CellPhone,
		Roles:          r.Roles,
		ProfileImage:   r.ProfileImage,
	}
}

// UpdateProfileRequest defines the payload for PUT /api/users/me.
type UpdateProfileRequest struct {
	Name           string `json:"name"            validate:"required,max=100"`
	LastName       string `json:"last_name"       validate:"required,max=100"`
	DocumentType   string `json:"document_type"   validate:"max=20"`
	DocumentNumber string `json:"document_number" validate:"required,max=40"`
	CellPhone      string `json:"cell_phone"      validate:"max=30"`
	ProfileImage   string `json:"profile_image,omitempty"`
}

// ToInput converts the request to service input.
func (r UpdateProfileRequest) ToInput() service.UpdateProfileInput {
	return service.UpdateProfileInput{
		Name:           r.Name,
		LastName:       r.LastName,
		DocumentType:   r.DocumentType,
		DocumentNumber: r.DocumentNumber,
		CellPhone:      r.CellPhone,
		ProfileImage:   r.ProfileImage,
	}
}

// ChangeEmailRequest defines the payload for PUT /api/users/email.
type ChangeEmailRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

// ChangePasswordRequest defines the payload for PUT /api/users/password.
type ChangePasswordRequest struct {
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// ForgotPasswordRequest defines the payload for POST /api/auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}
