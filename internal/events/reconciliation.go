package events

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/accounts-api/internal/platform/logger"
)

// ReconciliationLogger records events that describe state diverging between
// the identity provider and the profile store. Entries are logged at error
// level with a stable message so alerting can key on it.
type ReconciliationLogger struct {
	logger *slog.Logger
}

// ReconciliationMessage is the log message of every reconciliation entry.
const ReconciliationMessage = "account reconciliation required"

// NewReconciliationLogger creates a handler that logs reconciliation events.
func NewReconciliationLogger(log *slog.Logger) *ReconciliationLogger {
	if log == nil {
		log = slog.Default()
	}
	return &ReconciliationLogger{logger: log.With("component", "reconciliation")}
}

// HandleEvent logs the reconciliation event types and ignores the rest.
func (h *ReconciliationLogger) HandleEvent(ctx context.Context, event *Event) error {
	switch event.Type {
	case TypeIdentityOrphaned, TypeClaimPushFailed, TypeEmailDrift, TypeProfileOrphaned:
	default:
		return nil
	}

	var payload ReconciliationPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("decode %s payload: %w", event.Type, err)
	}

	logger.FromContextOrDefault(ctx, h.logger).ErrorContext(ctx, ReconciliationMessage,
		"event_id", event.ID,
		"event_type", event.Type,
		"identity_ref", payload.IdentityRef,
		"profile_id", payload.ProfileID,
		"role", payload.Role,
		"image_url", payload.ImageURL,
		"reason", payload.Reason)

	return nil
}
