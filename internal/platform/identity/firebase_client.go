package identity

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/phrazzld/accounts-api/internal/config"
	"github.com/phrazzld/accounts-api/internal/domain"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// Scopes requested for the admin API.
var adminScopes = []string{
	"https://www.googleapis.com/auth/cloud-platform",
	"https://www.googleapis.com/auth/identitytoolkit",
	"https://www.googleapis.com/auth/firebase",
}

// ErrEmptyResponse is returned when the provider answers without the field
// the call depends on.
var ErrEmptyResponse = errors.New("identity: empty response field")

// AuthAdmin is the part of the Firebase Admin SDK auth client used here.
// *auth.Client satisfies it.
type AuthAdmin interface {
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
	SetCustomUserClaims(ctx context.Context, uid string, customClaims map[string]interface{}) error
	UpdateUser(ctx context.Context, uid string, user *auth.UserToUpdate) (*auth.UserRecord, error)
	DeleteUser(ctx context.Context, uid string) error
	GetUserByEmail(ctx context.Context, email string) (*auth.UserRecord, error)
	PasswordResetLink(ctx context.Context, email string) (string, error)
	PasswordResetLinkWithSettings(ctx context.Context, email string, settings *auth.ActionCodeSettings) (string, error)
}

var _ AuthAdmin = (*auth.Client)(nil)

// Options configures a FirebaseClient.
type Options struct {
	// ContinueURL is added to reset links when set.
	ContinueURL string
	// Timeout bounds each admin call. Zero leaves the caller's deadline alone.
	Timeout time.Duration
}

// FirebaseClient manages identity records and role claims through the
// Firebase Admin SDK.
type FirebaseClient struct {
	admin       AuthAdmin
	continueURL string
	timeout     time.Duration
	logger      *slog.Logger
}

// NewFirebaseClient wraps an admin auth client.
func NewFirebaseClient(admin AuthAdmin, opts Options, logger *slog.Logger) (*FirebaseClient, error) {
	if admin == nil {
		return nil, errors.New("identity: auth client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &FirebaseClient{
		admin:       admin,
		continueURL: opts.ContinueURL,
		timeout:     opts.Timeout,
		logger:      logger.With("component", "identity_client"),
	}, nil
}

// NewFirebaseClientFromConfig initializes a Firebase app from the service
// account in cfg, or from application default credentials when the config
// carries none. FIREBASE_AUTH_EMULATOR_HOST redirects the SDK to an emulator.
func NewFirebaseClientFromConfig(
	ctx context.Context,
	cfg config.FirebaseConfig,
	logger *slog.Logger,
) (*FirebaseClient, error) {
	var opts []option.ClientOption

	if cfg.CredentialsBase64 != "" {
		raw, err := base64.StdEncoding.DecodeString(cfg.CredentialsBase64)
		if err != nil {
			return nil, fmt.Errorf("identity: decode credentials: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, raw, adminScopes...)
		if err != nil {
			return nil, fmt.Errorf("identity: parse credentials: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("identity: init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("identity: init auth client: %w", err)
	}

	return NewFirebaseClient(client, Options{
		ContinueURL: cfg.ResetContinueURL,
		Timeout:     time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
	}, logger)
}

// CreateUser creates an enabled, unverified identity record and returns its
// reference. Returns domain.ErrIdentityEmailExists if the email is taken.
func (c *FirebaseClient) CreateUser(ctx context.Context, email, password string) (string, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		EmailVerified(false).
		Disabled(false)

	record, err := c.admin.CreateUser(ctx, params)
	if err != nil {
		return "", fmt.Errorf("identity: create user: %w", mapProviderError(err))
	}
	if record == nil || record.UserInfo == nil || record.UID == "" {
		return "", fmt.Errorf("identity: create user: %w", ErrEmptyResponse)
	}

	c.logger.DebugContext(ctx, "identity record created", "identity_ref", record.UID)
	return record.UID, nil
}

// SetRoleClaim replaces the custom claims of the record with {"role": role}.
func (c *FirebaseClient) SetRoleClaim(ctx context.Context, identityRef, role string) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	claims := map[string]interface{}{"role": role}
	if err := c.admin.SetCustomUserClaims(ctx, identityRef, claims); err != nil {
		return fmt.Errorf("identity: set role claim: %w", mapProviderError(err))
	}
	return nil
}

// UpdateEmail changes the email of the record.
func (c *FirebaseClient) UpdateEmail(ctx context.Context, identityRef, email string) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	if _, err := c.admin.UpdateUser(ctx, identityRef, (&auth.UserToUpdate{}).Email(email)); err != nil {
		return fmt.Errorf("identity: update email: %w", mapProviderError(err))
	}
	return nil
}

// UpdatePassword changes the password of the record.
func (c *FirebaseClient) UpdatePassword(ctx context.Context, identityRef, password string) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	if _, err := c.admin.UpdateUser(ctx, identityRef, (&auth.UserToUpdate{}).Password(password)); err != nil {
		return fmt.Errorf("identity: update password: %w", mapProviderError(err))
	}
	return nil
}

// DeleteUser deletes the record. Returns domain.ErrIdentityNotFound when the
// provider has no such record.
func (c *FirebaseClient) DeleteUser(ctx context.Context, identityRef string) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	if err := c.admin.DeleteUser(ctx, identityRef); err != nil {
		return fmt.Errorf("identity: delete user: %w", mapProviderError(err))
	}
	return nil
}

// UserExists reports whether the provider has a record for the email.
func (c *FirebaseClient) UserExists(ctx context.Context, email string) (bool, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	if _, err := c.admin.GetUserByEmail(ctx, email); err != nil {
		if auth.IsUserNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("identity: lookup user: %w", err)
	}
	return true, nil
}

// GenerateResetLink asks the provider for a password reset link without
// having it send any email.
func (c *FirebaseClient) GenerateResetLink(ctx context.Context, email string) (string, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	var (
		link string
		err  error
	)
	if c.continueURL != "" {
		link, err = c.admin.PasswordResetLinkWithSettings(ctx, email, &auth.ActionCodeSettings{URL: c.continueURL})
	} else {
		link, err = c.admin.PasswordResetLink(ctx, email)
	}
	if err != nil {
		return "", fmt.Errorf("identity: generate reset link: %w", mapProviderError(err))
	}
	if link == "" {
		return "", fmt.Errorf("identity: generate reset link: %w", ErrEmptyResponse)
	}
	return link, nil
}

func (c *FirebaseClient) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// mapProviderError wraps SDK errors whose codes carry meaning for the caller.
func mapProviderError(err error) error {
	switch {
	case auth.IsEmailAlreadyExists(err):
		return fmt.Errorf("%w: %w", domain.ErrIdentityEmailExists, err)
	case auth.IsUserNotFound(err), auth.IsEmailNotFound(err):
		return fmt.Errorf("%w: %w", domain.ErrIdentityNotFound, err)
	}
	return err
}
