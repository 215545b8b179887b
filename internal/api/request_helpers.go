package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/accounts-api/internal/api/shared"
)

// principalFromRequest returns the authenticated caller, writing a 401 when
// the auth middleware did not set one.
func principalFromRequest(w http.ResponseWriter, r *http.Request, log *slog.Logger) (shared.Principal, bool) {
	p, ok := shared.GetPrincipal(r.Context())
	if !ok {
		log.WarnContext(r.Context(), "principal not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return shared.Principal{}, false
	}
	return p, true
}

// pathID parses the positive integer path parameter name, writing a 400 when
// it is missing or malformed.
func pathID(w http.ResponseWriter, r *http.Request, name string, log *slog.Logger) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		log.DebugContext(r.Context(), "invalid path parameter", "param_name", name, "value", raw)
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// decodeAndValidate reads a JSON body into req and validates it, writing a
// 400 on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := shared.DecodeJSON(w, r, req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}
