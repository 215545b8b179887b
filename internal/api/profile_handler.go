package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/accounts-api/internal/api/shared"
	"github.com/phrazzld/accounts-api/internal/platform/logger"
	"github.com/phrazzld/accounts-api/internal/service"
)

// ProfileHandler serves the self-service endpoints under /api/users. Every
// operation acts on the authenticated caller's own account.
type ProfileHandler struct {
	users  service.UserService
	logger *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(users service.UserService, logger *slog.Logger) *ProfileHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ProfileHandler")
	}

	return &ProfileHandler{
		users:  users,
		logger: logger.With(slog.String("component", "profile_handler")),
	}
}

// GetMyProfile handles GET /api/users/me
func (h *ProfileHandler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	p, ok := principalFromRequest(w, r, log)
	if !ok {
		return
	}

	profile, err := h.users.GetMyProfile(r.Context(), p.IdentityRef)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get profile")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, profile)
}

// UpdateMyProfile handles PUT /api/users/me
func (h *ProfileHandler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	p, ok := principalFromRequest(w, r, log)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	profile, err := h.users.UpdateMyProfile(r.Context(), p.IdentityRef, req.ToInput())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update profile")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, profile)
}

// ChangePassword handles PUT /api/users/password
func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	p, ok := principalFromRequest(w, r, log)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.users.ChangePassword(r.Context(), p.IdentityRef, req.Password); err != nil {
		HandleAPIError(w, r, err, "Failed to change password")
		return
	}
	shared.RespondWithMessage(w, r, http.StatusOK, "Password updated")
}

// ChangeEmail handles PUT /api/users/email
func (h *ProfileHandler) ChangeEmail(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	p, ok := principalFromRequest(w, r, log)
	if !ok {
		return
	}

	var req ChangeEmailRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.users.ChangeEmail(r.Context(), p.IdentityRef, req.Email); err != nil {
		HandleAPIError(w, r, err, "Failed to change email")
		return
	}
	shared.RespondWithMessage(w, r, http.StatusOK, "Email updated")
}
