package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the user service.
const (
	// TypeImageCleanup requests deletion of a profile image that is no
	// longer referenced by any profile.
	TypeImageCleanup = "image.cleanup"

	// TypeIdentityOrphaned reports an identity record created without a
	// matching profile.
	TypeIdentityOrphaned = "identity.orphaned"

	// TypeClaimPushFailed reports a profile whose role claim could not be
	// pushed to the identity provider.
	TypeClaimPushFailed = "claim.push_failed"

	// TypeEmailDrift reports an email changed in the identity provider but
	// not in the profile store.
	TypeEmailDrift = "email.drift"

	// TypeProfileOrphaned reports a profile whose identity record was
	// deleted while the profile row could not be.
	TypeProfileOrphaned = "profile.orphaned"
)

// Event represents something that happened and needs follow-up outside the
// request that caused it.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants
	Type string `json:"type"`

	// Payload contains the type-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// ImageCleanupPayload is the payload of TypeImageCleanup events.
type ImageCleanupPayload struct {
	ImageURL string `json:"image_url"`
}

// ReconciliationPayload is the payload of events that report state which
// diverged between the identity provider and the profile store.
type ReconciliationPayload struct {
	IdentityRef string `json:"identity_ref"`
	ProfileID   int64  `json:"profile_id,omitempty"`
	Email       string `json:"email,omitempty"`
	Role        string `json:"role,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	Reason      string `json:"reason"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates a new Event with the specified type and payload.
func NewEvent(eventType string, payload any) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
// Handlers must return quickly; long running work belongs on a task queue.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *Event) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *Event) error
}
