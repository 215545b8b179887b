package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/accounts-api/internal/domain"
	"github.com/phrazzld/accounts-api/internal/platform/logger"
	"github.com/phrazzld/accounts-api/internal/store"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long a cached profile lives without invalidation.
const DefaultTTL = 15 * time.Minute

const keyPrefix = "user_profile:"

// NewClient parses a redis:// URL and returns a connected client.
func NewClient(ctx context.Context, rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("rediscache: parse url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("rediscache: ping: %w", err)
	}
	return client, nil
}

// cachedProfile is the cache representation of a profile. Unlike the domain
// type's JSON form it keeps the password hash.
type cachedProfile struct {
	ID             int64     `json:"id"`
	IdentityRef    string    `json:"identity_ref"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	LastName       string    `json:"last_name"`
	DocumentType   string    `json:"document_type"`
	DocumentNumber string    `json:"document_number"`
	CellPhone      string    `json:"cell_phone"`
	PasswordHash   string    `json:"password_hash"`
	Roles          []string  `json:"roles"`
	ProfileImage   *string   `json:"profile_image,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toCached(p *domain.UserProfile) cachedProfile {
	return cachedProfile{
		ID:             p.ID,
		IdentityRef:    p.IdentityRef,
		Email:          p.Email,
		Name:           p.Name,
		LastName:       p.LastName,
		DocumentType:   p.DocumentType,
		DocumentNumber: p.DocumentNumber,
		CellPhone:      p.CellPhone,
		PasswordHash:   p.PasswordHash,
		Roles:          p.Roles,
		ProfileImage:   p.ProfileImage,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (c cachedProfile) toDomain() *domain.UserProfile {
	return &domain.UserProfile{
		ID:             c.ID,
		IdentityRef:    c.IdentityRef,
		Email:          c.Email,
		Name:           c.Name,
		LastName:       c.LastName,
		DocumentType:   c.DocumentType,
		DocumentNumber: c.DocumentNumber,
		CellPhone:      c.CellPhone,
		PasswordHash:   c.PasswordHash,
		Roles:          c.Roles,
		ProfileImage:   c.ProfileImage,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// CachedProfileStore decorates a ProfileStore with a Redis cache served by
// GetCachedByIdentityRef. Every ProfileStore method, GetByIdentityRef
// included, reads the wrapped store, so loads that feed an Update never see
// a stale entry. Writes go to the wrapped store first and then drop the
// cached entry. Cache failures are logged and never fail the call.
type CachedProfileStore struct {
	store.ProfileStore

	client redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

var (
	_ store.ProfileStore        = (*CachedProfileStore)(nil)
	_ store.CachedProfileReader = (*CachedProfileStore)(nil)
)

// NewCachedProfileStore wraps next with a cache held in client.
func NewCachedProfileStore(
	next store.ProfileStore,
	client redis.Cmdable,
	ttl time.Duration,
	log *slog.Logger,
) (*CachedProfileStore, error) {
	if next == nil {
		return nil, errors.New("rediscache: profile store cannot be nil")
	}
	if client == nil {
		return nil, errors.New("rediscache: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = slog.Default()
	}

	return &CachedProfileStore{
		ProfileStore: next,
		client:       client,
		ttl:          ttl,
		logger:       log.With("component", "profile_cache"),
	}, nil
}

func cacheKey(identityRef string) string {
	return keyPrefix + identityRef
}

// GetCachedByIdentityRef serves the profile from the cache, falling back to
// the wrapped store on a miss and populating the cache with the result.
func (s *CachedProfileStore) GetCachedByIdentityRef(ctx context.Context, identityRef string) (*domain.UserProfile, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	key := cacheKey(identityRef)

	raw, err := s.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached cachedProfile
		jsonErr := json.Unmarshal(raw, &cached)
		if jsonErr == nil {
			log.DebugContext(ctx, "profile cache hit", "identity_ref", identityRef)
			return cached.toDomain(), nil
		}
		log.WarnContext(ctx, "discarding undecodable cache entry", "identity_ref", identityRef, "error", jsonErr)
	case errors.Is(err, redis.Nil):
	default:
		log.WarnContext(ctx, "profile cache read failed", "identity_ref", identityRef, "error", err)
	}

	profile, err := s.ProfileStore.GetByIdentityRef(ctx, identityRef)
	if err != nil {
		return nil, err
	}

	s.put(ctx, profile)
	return profile, nil
}

// Update writes through to the wrapped store and invalidates the entry.
func (s *CachedProfileStore) Update(ctx context.Context, profile *domain.UserProfile) error {
	if err := s.ProfileStore.Update(ctx, profile); err != nil {
		return err
	}
	s.invalidate(ctx, profile.IdentityRef)
	return nil
}

// Delete removes the profile from the wrapped store and invalidates the
// entry. The identity reference is resolved before deletion.
func (s *CachedProfileStore) Delete(ctx context.Context, id int64) error {
	var identityRef string
	if existing, err := s.ProfileStore.GetByID(ctx, id); err == nil {
		identityRef = existing.IdentityRef
	}

	if err := s.ProfileStore.Delete(ctx, id); err != nil {
		return err
	}

	if identityRef != "" {
		s.invalidate(ctx, identityRef)
	}
	return nil
}

func (s *CachedProfileStore) put(ctx context.Context, profile *domain.UserProfile) {
	data, err := json.Marshal(toCached(profile))
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).WarnContext(ctx, "failed to encode profile for cache", "error", err)
		return
	}
	if err := s.client.Set(ctx, cacheKey(profile.IdentityRef), data, s.ttl).Err(); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).WarnContext(ctx, "profile cache write failed",
			"identity_ref", profile.IdentityRef,
			"error", err)
	}
}

func (s *CachedProfileStore) invalidate(ctx context.Context, identityRef string) {
	if err := s.client.Del(ctx, cacheKey(identityRef)).Err(); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).WarnContext(ctx, "profile cache invalidation failed",
			"identity_ref", identityRef,
			"error", err)
	}
}
