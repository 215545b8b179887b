package store

import (
	"context"
	"iter"

	"github.com/phrazzld/accounts-api/internal/domain"
)

// ProfileStore defines the interface for user profile persistence.
type ProfileStore interface {
	// GetByID retrieves a profile by its store-assigned ID.
	// Returns ErrProfileNotFound if the profile does not exist.
	GetByID(ctx context.Context, id int64) (*domain.UserProfile, error)

	// GetByEmail retrieves a profile through the unique email index.
	// Returns ErrProfileNotFound if the profile does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error)

	// GetByIdentityRef retrieves a profile through the unique identity
	// reference index. Returns ErrProfileNotFound if the profile does not exist.
	GetByIdentityRef(ctx context.Context, identityRef string) (*domain.UserProfile, error)

	// List yields every profile ordered by ID. Each range over the returned
	// sequence issues a fresh query; a failure is yielded as the final pair.
	List(ctx context.Context) iter.Seq2[*domain.UserProfile, error]

	// Create inserts a new profile and sets its ID and timestamps.
	// Returns ErrEmailExists or ErrIdentityRefExists on unique violations.
	Create(ctx context.Context, profile *domain.UserProfile) error

	// Update writes every mutable column of an existing profile.
	// Returns ErrProfileNotFound if the profile does not exist and
	// ErrEmailExists if the new email belongs to another profile.
	Update(ctx context.Context, profile *domain.UserProfile) error

	// Delete removes a profile by ID.
	// Returns ErrProfileNotFound if the profile does not exist.
	Delete(ctx context.Context, id int64) error
}

// CachedProfileReader is implemented by stores that can serve identity
// reference lookups from a cache. A cached profile may be stale, so it is
// for display only and must never be written back with Update.
type CachedProfileReader interface {
	GetCachedByIdentityRef(ctx context.Context, identityRef string) (*domain.UserProfile, error)
}
