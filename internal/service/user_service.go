package service

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"strings"

	"github.com/phrazzld/accounts-api/internal/domain"
	"github.com/phrazzld/accounts-api/internal/events"
	"github.com/phrazzld/accounts-api/internal/platform/logger"
	"github.com/phrazzld/accounts-api/internal/service/auth"
	"github.com/phrazzld/accounts-api/internal/store"
)

// UserService manages user accounts across the identity provider, the
// profile store and the image store.
type UserService interface {
	// ListUsers yields every profile in its public shape.
	ListUsers(ctx context.Context) iter.Seq2[*domain.PublicProfile, error]

	// GetUser retrieves a profile by its numeric id.
	GetUser(ctx context.Context, id int64) (*domain.PublicProfile, error)

	// GetUserByEmail retrieves a profile by email.
	GetUserByEmail(ctx context.Context, email string) (*domain.PublicProfile, error)

	// GetMyProfile retrieves the profile of an authenticated identity.
	// Returns ErrProfileMissing when the identity has no profile.
	GetMyProfile(ctx context.Context, identityRef string) (*domain.PublicProfile, error)

	// CreateUser creates the identity record, assigns its role claim, stores
	// the optional image and persists the profile, in that order.
	CreateUser(ctx context.Context, in CreateUserInput) (*domain.PublicProfile, error)

	// UpdateUser changes a profile's attributes, roles and image and pushes
	// the role claim when the role list changed. A new image is uploaded
	// before the profile is written; the previous image is deleted in the
	// background only after that write succeeds. A failed write schedules
	// the new upload for deletion instead.
	UpdateUser(ctx context.Context, id int64, in UpdateUserInput) (*domain.PublicProfile, error)

	// DeleteUser removes the image, the identity record and the profile, in
	// that order. The profile is kept if the identity record's deletion fails.
	DeleteUser(ctx context.Context, id int64) error

	// ChangeEmail moves an identity to a new email, provider first.
	ChangeEmail(ctx context.Context, identityRef, newEmail string) error

	// ChangePassword replaces an identity's credential, provider first.
	ChangePassword(ctx context.Context, identityRef, newPassword string) error

	// UpdateMyProfile changes the self-service attributes of the caller's
	// own profile.
	UpdateMyProfile(ctx context.Context, identityRef string, in UpdateProfileInput) (*domain.PublicProfile, error)

	// RequestPasswordReset sends a reset link to a registered email.
	RequestPasswordReset(ctx context.Context, email string) error
}

// Dependencies are the collaborators a UserService orchestrates.
type Dependencies struct {
	Profiles store.ProfileStore
	Identity IdentityProvider
	Images   ImageStore
	Notifier ResetNotifier
	Hasher   auth.PasswordHasher
	Events   events.EventEmitter
}

// Options tune a UserService.
type Options struct {
	// ImageFolder is the object store folder profile images are written to.
	ImageFolder string
}

// userServiceImpl implements the UserService interface
type userServiceImpl struct {
	profiles    store.ProfileStore
	displays    store.CachedProfileReader
	identity    IdentityProvider
	images      ImageStore
	notifier    ResetNotifier
	hasher      auth.PasswordHasher
	events      events.EventEmitter
	imageFolder string
	logger      *slog.Logger
}

// NewUserService creates a new UserService.
// It returns an error if any of the required dependencies are nil.
func NewUserService(deps Dependencies, opts Options, logger *slog.Logger) (UserService, error) {
	required := []struct {
		name    string
		missing bool
	}{
		{"profiles", deps.Profiles == nil},
		{"identity", deps.Identity == nil},
		{"images", deps.Images == nil},
		{"notifier", deps.Notifier == nil},
		{"hasher", deps.Hasher == nil},
		{"events", deps.Events == nil},
	}
	for _, r := range required {
		if r.missing {
			return nil, &UserServiceError{
				Operation: "create_service",
				Message:   r.name + " cannot be nil",
			}
		}
	}

	if logger == nil {
		logger = slog.Default()
	}
	folder := strings.Trim(opts.ImageFolder, "/")
	if folder == "" {
		folder = "profiles"
	}

	// Read-modify-write workflows always load from deps.Profiles; only
	// GetMyProfile may use a cached copy.
	displays, ok := deps.Profiles.(store.CachedProfileReader)
	if !ok {
		displays = uncachedReader{deps.Profiles}
	}

	return &userServiceImpl{
		profiles:    deps.Profiles,
		displays:    displays,
		identity:    deps.Identity,
		images:      deps.Images,
		notifier:    deps.Notifier,
		hasher:      deps.Hasher,
		events:      deps.Events,
		imageFolder: folder,
		logger:      logger.With("component", "user_service"),
	}, nil
}

type uncachedReader struct {
	store.ProfileStore
}

func (r uncachedReader) GetCachedByIdentityRef(ctx context.Context, identityRef string) (*domain.UserProfile, error) {
	return r.GetByIdentityRef(ctx, identityRef)
}

// commit is called right before a workflow's first external write. It stops
// the workflow if the caller already gave up, and otherwise returns a context
// that later steps run under so they are not abandoned half way.
func commit(ctx context.Context) (context.Context, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return context.WithoutCancel(ctx), nil
}

// lookupError maps a profile store read failure. Not found errors become
// the caller's sentinel directly.
func lookupError(op string, err error, notFound error) error {
	if store.IsNotFoundError(err) {
		return notFound
	}
	return NewUserServiceError(op, ErrProfileLookup, "failed to read profile", err)
}

// ListUsers implements UserService.
func (s *userServiceImpl) ListUsers(ctx context.Context) iter.Seq2[*domain.PublicProfile, error] {
	return func(yield func(*domain.PublicProfile, error) bool) {
		for p, err := range s.profiles.List(ctx) {
			if err != nil {
				logger.FromContextOrDefault(ctx, s.logger).ErrorContext(ctx, "failed to list profiles", "error", err)
				yield(nil, NewUserServiceError("list_users", ErrProfileLookup, "failed to list profiles", err))
				return
			}
			if !yield(p.Public(), nil) {
				return
			}
		}
	}
}

// GetUser implements UserService.
func (s *userServiceImpl) GetUser(ctx context.Context, id int64) (*domain.PublicProfile, error) {
	p, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("get_user", err, ErrUserNotFoundByID)
	}
	return p.Public(), nil
}

// GetUserByEmail implements UserService.
func (s *userServiceImpl) GetUserByEmail(ctx context.Context, email string) (*domain.PublicProfile, error) {
	p, err := s.profiles.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, lookupError("get_user_by_email", err, ErrUserNotFoundByEmail)
	}
	return p.Public(), nil
}

// GetMyProfile implements UserService.
func (s *userServiceImpl) GetMyProfile(ctx context.Context, identityRef string) (*domain.PublicProfile, error) {
	p, err := s.displays.GetCachedByIdentityRef(ctx, identityRef)
	if err != nil {
		if store.IsNotFoundError(err) {
			logger.FromContextOrDefault(ctx, s.logger).ErrorContext(ctx, "authenticated identity has no profile",
				"identity_ref", identityRef)
			return nil, ErrProfileMissing
		}
		return nil, lookupError("get_my_profile", err, ErrProfileMissing)
	}
	return p.Public(), nil
}

// CreateUser implements UserService.
func (s *userServiceImpl) CreateUser(ctx context.Context, in CreateUserInput) (*domain.PublicProfile, error) {
	const op = "create_user"
	log := logger.FromContextOrDefault(ctx, s.logger)

	email := normalizeEmail(in.Email)
	if err := in.validate(email); err != nil {
		return nil, NewUserServiceError(op, ErrValidation, "invalid user input", err)
	}

	if err := s.ensureEmailAvailable(ctx, op, email, 0, ErrDuplicateEmail); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, NewUserServiceError(op, ErrProfileWrite, "failed to hash password", err)
	}

	ctx, err = commit(ctx)
	if err != nil {
		return nil, err
	}

	identityRef, err := s.identity.CreateUser(ctx, email, in.Password)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityEmailExists) {
			return nil, NewUserServiceError(op, ErrDuplicateEmail, "email already registered with identity provider", err)
		}
		log.ErrorContext(ctx, "identity record creation failed", "error", err)
		return nil, NewUserServiceError(op, ErrIdentityProvider, "failed to create identity record", err)
	}
	log = log.With("identity_ref", identityRef)

	roles := copyRoles(in.Roles)
	role := domain.PrimaryRole(roles)
	if err := s.identity.SetRoleClaim(ctx, identityRef, role); err != nil {
		log.ErrorContext(ctx, "role claim assignment failed, identity record left without profile",
			"error", err,
			"role", role)
		s.emit(ctx, events.TypeIdentityOrphaned, events.ReconciliationPayload{
			IdentityRef: identityRef,
			Email:       email,
			Role:        role,
			Reason:      "role claim assignment failed during create",
		})
		return nil, NewUserServiceError(op, ErrClaimAssignment, "failed to assign role claim", err)
	}

	var image *string
	if in.ProfileImage != "" {
		url, err := s.images.Upload(ctx, s.imageFolder, in.ProfileImage)
		if err != nil {
			log.WarnContext(ctx, "profile image upload failed, creating user without image", "error", err)
		} else {
			image = &url
		}
	}

	profile := &domain.UserProfile{
		IdentityRef:    identityRef,
		Email:          email,
		Name:           strings.TrimSpace(in.Name),
		LastName:       strings.TrimSpace(in.LastName),
		DocumentType:   strings.TrimSpace(in.DocumentType),
		DocumentNumber: strings.TrimSpace(in.DocumentNumber),
		CellPhone:      strings.TrimSpace(in.CellPhone),
		PasswordHash:   hash,
		Roles:          roles,
		ProfileImage:   image,
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		log.ErrorContext(ctx, "profile write failed, identity record left without profile", "error", err)
		payload := events.ReconciliationPayload{
			IdentityRef: identityRef,
			Email:       email,
			Role:        role,
			Reason:      "profile write failed during create",
		}
		if image != nil {
			payload.ImageURL = *image
		}
		s.emit(ctx, events.TypeIdentityOrphaned, payload)

		if errors.Is(err, store.ErrEmailExists) {
			return nil, NewUserServiceError(op, ErrDuplicateEmail, "email already registered", err)
		}
		return nil, NewUserServiceError(op, ErrProfileWrite, "failed to save profile", err)
	}

	log.InfoContext(ctx, "user created", "profile_id", profile.ID, "role", role)
	return profile.Public(), nil
}

// UpdateUser implements UserService.
func (s *userServiceImpl) UpdateUser(ctx context.Context, id int64, in UpdateUserInput) (*domain.PublicProfile, error) {
	const op = "update_user"
	log := logger.FromContextOrDefault(ctx, s.logger).With("profile_id", id)

	if err := in.validate(); err != nil {
		return nil, NewUserServiceError(op, ErrValidation, "invalid user input", err)
	}

	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(op, err, ErrUserNotFoundByID)
	}

	roles := profile.Roles
	if in.Roles != nil {
		roles = copyRoles(in.Roles)
	}
	roleChanged := !domain.RolesEqual(profile.Roles, roles)

	ctx, err = commit(ctx)
	if err != nil {
		return nil, err
	}

	applyAttributes(profile, in.Name, in.LastName, in.DocumentType, in.DocumentNumber, in.CellPhone)
	profile.Roles = roles

	if err := s.saveWithImage(ctx, op, profile, in.ProfileImage, ErrUserNotFoundByID); err != nil {
		return nil, err
	}

	if roleChanged {
		role := profile.PrimaryRole()
		if err := s.identity.SetRoleClaim(ctx, profile.IdentityRef, role); err != nil {
			log.ErrorContext(ctx, "profile saved but role claim push failed",
				"error", err,
				"identity_ref", profile.IdentityRef,
				"role", role)
			s.emit(ctx, events.TypeClaimPushFailed, events.ReconciliationPayload{
				IdentityRef: profile.IdentityRef,
				ProfileID:   profile.ID,
				Role:        role,
				Reason:      "role claim push failed after profile update",
			})
			return nil, NewUserServiceError(op, ErrClaimAssignment, "profile saved but role claim push failed", err)
		}
		log.InfoContext(ctx, "role claim updated", "role", role)
	}

	return profile.Public(), nil
}

// DeleteUser implements UserService.
func (s *userServiceImpl) DeleteUser(ctx context.Context, id int64) error {
	const op = "delete_user"
	log := logger.FromContextOrDefault(ctx, s.logger).With("profile_id", id)

	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return lookupError(op, err, ErrUserNotFoundByID)
	}
	log = log.With("identity_ref", profile.IdentityRef)

	ctx, err = commit(ctx)
	if err != nil {
		return err
	}

	if profile.HasImage() {
		if err := s.images.Delete(ctx, *profile.ProfileImage); err != nil {
			log.WarnContext(ctx, "profile image delete failed, continuing", "error", err)
		}
	}

	if err := s.identity.DeleteUser(ctx, profile.IdentityRef); err != nil {
		if !errors.Is(err, domain.ErrIdentityNotFound) {
			log.ErrorContext(ctx, "identity record delete failed, keeping profile", "error", err)
			return NewUserServiceError(op, ErrIdentityProvider, "failed to delete identity record", err)
		}
		log.WarnContext(ctx, "identity record already absent")
	}

	if err := s.profiles.Delete(ctx, id); err != nil {
		if store.IsNotFoundError(err) {
			log.InfoContext(ctx, "profile already deleted")
			return nil
		}
		log.ErrorContext(ctx, "profile delete failed after identity record delete", "error", err)
		s.emit(ctx, events.TypeProfileOrphaned, events.ReconciliationPayload{
			IdentityRef: profile.IdentityRef,
			ProfileID:   profile.ID,
			Reason:      "profile delete failed after identity record delete",
		})
		return NewUserServiceError(op, ErrProfileWrite, "failed to delete profile", err)
	}

	log.InfoContext(ctx, "user deleted")
	return nil
}

// ChangeEmail implements UserService.
func (s *userServiceImpl) ChangeEmail(ctx context.Context, identityRef, newEmail string) error {
	const op = "change_email"
	log := logger.FromContextOrDefault(ctx, s.logger).With("identity_ref", identityRef)

	email := normalizeEmail(newEmail)
	if err := domain.ValidateEmail(email); err != nil {
		return NewUserServiceError(op, ErrValidation, "invalid email", err)
	}

	profile, err := s.profiles.GetByIdentityRef(ctx, identityRef)
	if err != nil {
		return lookupError(op, err, ErrUserNotFoundByIdentityRef)
	}
	if strings.EqualFold(profile.Email, email) {
		return nil
	}

	if err := s.ensureEmailAvailable(ctx, op, email, profile.ID, ErrEmailInUse); err != nil {
		return err
	}

	ctx, err = commit(ctx)
	if err != nil {
		return err
	}

	if err := s.identity.UpdateEmail(ctx, identityRef, email); err != nil {
		if errors.Is(err, domain.ErrIdentityEmailExists) {
			return NewUserServiceError(op, ErrEmailInUse, "email in use in identity provider", err)
		}
		log.ErrorContext(ctx, "identity provider email update failed", "error", err)
		return NewUserServiceError(op, ErrIdentityProvider, "failed to update email", err)
	}

	profile.Email = email
	if err := s.profiles.Update(ctx, profile); err != nil {
		log.ErrorContext(ctx, "email changed in identity provider but not in profile", "error", err)
		s.emit(ctx, events.TypeEmailDrift, events.ReconciliationPayload{
			IdentityRef: identityRef,
			ProfileID:   profile.ID,
			Email:       email,
			Reason:      "profile email update failed after provider update",
		})
		if errors.Is(err, store.ErrEmailExists) {
			return NewUserServiceError(op, ErrEmailInUse, "email in use by another profile", err)
		}
		return NewUserServiceError(op, ErrProfileWrite, "failed to save profile email", err)
	}

	log.InfoContext(ctx, "email changed", "profile_id", profile.ID)
	return nil
}

// ChangePassword implements UserService.
func (s *userServiceImpl) ChangePassword(ctx context.Context, identityRef, newPassword string) error {
	const op = "change_password"
	log := logger.FromContextOrDefault(ctx, s.logger).With("identity_ref", identityRef)

	if err := domain.ValidatePassword(newPassword); err != nil {
		return NewUserServiceError(op, ErrValidation, "invalid password", err)
	}

	profile, err := s.profiles.GetByIdentityRef(ctx, identityRef)
	if err != nil {
		return lookupError(op, err, ErrUserNotFoundByIdentityRef)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return NewUserServiceError(op, ErrProfileWrite, "failed to hash password", err)
	}

	ctx, err = commit(ctx)
	if err != nil {
		return err
	}

	if err := s.identity.UpdatePassword(ctx, identityRef, newPassword); err != nil {
		log.ErrorContext(ctx, "identity provider password update failed", "error", err)
		return NewUserServiceError(op, ErrIdentityProvider, "failed to update password", err)
	}

	profile.PasswordHash = hash
	if err := s.profiles.Update(ctx, profile); err != nil {
		log.WarnContext(ctx, "password changed but cached hash not updated", "error", err)
		return NewUserServiceError(op, ErrProfileWrite, "password changed but profile update failed", err)
	}

	log.InfoContext(ctx, "password changed", "profile_id", profile.ID)
	return nil
}

// UpdateMyProfile implements UserService.
func (s *userServiceImpl) UpdateMyProfile(
	ctx context.Context,
	identityRef string,
	in UpdateProfileInput,
) (*domain.PublicProfile, error) {
	const op = "update_my_profile"

	if err := in.validate(); err != nil {
		return nil, NewUserServiceError(op, ErrValidation, "invalid profile input", err)
	}

	profile, err := s.profiles.GetByIdentityRef(ctx, identityRef)
	if err != nil {
		return nil, lookupError(op, err, ErrUserNotFoundByIdentityRef)
	}

	ctx, err = commit(ctx)
	if err != nil {
		return nil, err
	}

	applyAttributes(profile, in.Name, in.LastName, in.DocumentType, in.DocumentNumber, in.CellPhone)

	if err := s.saveWithImage(ctx, op, profile, in.ProfileImage, ErrUserNotFoundByIdentityRef); err != nil {
		return nil, err
	}
	return profile.Public(), nil
}

// RequestPasswordReset implements UserService.
func (s *userServiceImpl) RequestPasswordReset(ctx context.Context, email string) error {
	const op = "request_password_reset"
	log := logger.FromContextOrDefault(ctx, s.logger)

	email = normalizeEmail(email)
	if err := domain.ValidateEmail(email); err != nil {
		return NewUserServiceError(op, ErrValidation, "invalid email", err)
	}

	exists, err := s.identity.UserExists(ctx, email)
	if err != nil {
		log.ErrorContext(ctx, "identity lookup for password reset failed", "error", err)
		return NewUserServiceError(op, ErrResetDelivery, "failed to look up identity", err)
	}
	if !exists {
		return ErrNotFoundInProvider
	}

	profile, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.WarnContext(ctx, "password reset requested for identity without profile")
			return ErrNotFoundInStore
		}
		log.ErrorContext(ctx, "profile lookup for password reset failed", "error", err)
		return NewUserServiceError(op, ErrResetDelivery, "failed to look up profile", err)
	}
	log = log.With("identity_ref", profile.IdentityRef)

	link, err := s.identity.GenerateResetLink(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return ErrNotFoundInProvider
		}
		log.ErrorContext(ctx, "reset link generation failed", "error", err)
		return NewUserServiceError(op, ErrResetDelivery, "failed to generate reset link", err)
	}

	if err := s.notifier.SendResetLink(ctx, email, link); err != nil {
		log.ErrorContext(ctx, "reset link delivery failed", "error", err)
		return NewUserServiceError(op, ErrResetDelivery, "failed to send reset link", err)
	}

	log.InfoContext(ctx, "password reset link sent")
	return nil
}

// ensureEmailAvailable rejects email with taken when a profile other than
// ownerID already holds it. The unique index stays the authoritative guard.
func (s *userServiceImpl) ensureEmailAvailable(
	ctx context.Context,
	op, email string,
	ownerID int64,
	taken error,
) error {
	existing, err := s.profiles.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.ID == ownerID {
			return nil
		}
		return taken
	case store.IsNotFoundError(err):
		return nil
	default:
		return NewUserServiceError(op, ErrProfileLookup, "failed to check email", err)
	}
}

// saveWithImage persists profile, first replacing its image when payload is
// set. A failed upload leaves both the profile and the old image untouched.
// The old image is scheduled for deletion only once the profile no longer
// references it; a new image the profile never got to reference is
// scheduled instead when the write fails.
func (s *userServiceImpl) saveWithImage(
	ctx context.Context,
	op string,
	profile *domain.UserProfile,
	payload string,
	notFound error,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With("profile_id", profile.ID)

	var previous, uploaded string
	if payload != "" {
		url, err := s.images.Upload(ctx, s.imageFolder, payload)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidImage) {
				return NewUserServiceError(op, ErrValidation, "invalid profile image", err)
			}
			log.ErrorContext(ctx, "profile image upload failed", "error", err)
			return NewUserServiceError(op, ErrImageStore, "failed to store profile image", err)
		}
		if profile.HasImage() {
			previous = *profile.ProfileImage
		}
		uploaded = url
		profile.ProfileImage = &uploaded
	}

	if err := s.profiles.Update(ctx, profile); err != nil {
		if uploaded != "" {
			s.scheduleImageCleanup(ctx, uploaded)
		}
		if store.IsNotFoundError(err) {
			return notFound
		}
		log.ErrorContext(ctx, "profile write failed", "error", err)
		return NewUserServiceError(op, ErrProfileWrite, "failed to save profile", err)
	}

	if previous != "" && previous != uploaded {
		s.scheduleImageCleanup(ctx, previous)
	}
	return nil
}

// scheduleImageCleanup requests asynchronous deletion of an unreferenced
// image. Failures are logged only.
func (s *userServiceImpl) scheduleImageCleanup(ctx context.Context, imageURL string) {
	s.emit(ctx, events.TypeImageCleanup, events.ImageCleanupPayload{ImageURL: imageURL})
}

// emit publishes an event. Emission failures never fail the workflow.
func (s *userServiceImpl) emit(ctx context.Context, eventType string, payload any) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewEvent(eventType, payload)
	if err != nil {
		log.ErrorContext(ctx, "failed to create event", "error", err, "event_type", eventType)
		return
	}
	if err := s.events.EmitEvent(ctx, event); err != nil {
		log.WarnContext(ctx, "failed to emit event",
			"error", err,
			"event_type", eventType,
			"event_id", event.ID)
	}
}
