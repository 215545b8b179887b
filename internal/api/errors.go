package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/accounts-api/internal/api/shared"
	"github.com/phrazzld/accounts-api/internal/service"
	"github.com/phrazzld/accounts-api/internal/service/auth"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Bad request errors
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest

	// Not found errors
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrNotFoundInProvider),
		errors.Is(err, service.ErrNotFoundInStore):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, service.ErrDuplicateEmail),
		errors.Is(err, service.ErrEmailInUse),
		errors.Is(err, service.ErrProfileMissing):
		return http.StatusConflict

	// Upstream errors
	case errors.Is(err, service.ErrIdentityProvider),
		errors.Is(err, service.ErrClaimAssignment),
		errors.Is(err, service.ErrImageStore),
		errors.Is(err, service.ErrResetDelivery):
		return http.StatusBadGateway

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, service.ErrValidation):
		return "Invalid input"

	case errors.Is(err, service.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, service.ErrNotFoundInProvider),
		errors.Is(err, service.ErrNotFoundInStore):
		return "No account is registered with this email"

	case errors.Is(err, service.ErrDuplicateEmail):
		return "Email already registered"

	case errors.Is(err, service.ErrEmailInUse):
		return "Email already in use by another account"

	case errors.Is(err, service.ErrProfileMissing):
		return "Account profile is missing"

	case errors.Is(err, service.ErrClaimAssignment):
		return "Failed to assign user role"

	case errors.Is(err, service.ErrIdentityProvider):
		return "Identity provider request failed"

	case errors.Is(err, service.ErrImageStore):
		return "Failed to store profile image"

	case errors.Is(err, service.ErrResetDelivery):
		return "Failed to send password reset email"

	case errors.Is(err, service.ErrProfileWrite):
		return "Failed to save user profile"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps err to a status and safe message and writes it,
// logging the redacted error. A non-empty fallback replaces the generic
// message of unmapped server errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)

	var validationDetail string
	var svcErr *service.UserServiceError
	if status == http.StatusBadRequest && errors.As(err, &svcErr) && svcErr.Err != nil {
		validationDetail = svcErr.Err.Error()
	}
	if validationDetail != "" {
		message = "Invalid input: " + validationDetail
	}

	if status == http.StatusInternalServerError && fallback != "" && message == GetSafeErrorMessage(nil) {
		message = fallback
	}

	var opts []shared.ResponseOption
	if errors.Is(err, service.ErrProfileMissing) {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Example format: "Key: 'CreateUserRequest.email' Error:Field validation for 'email' failed on the 'required' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "dive", "required_without":
		return "invalid value"
	default:
		return "validation failed"
	}
}
