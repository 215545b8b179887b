package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/phrazzld/accounts-api/internal/platform/logger"
)

// TokenVerifier validates ID tokens issued by the identity provider.
type TokenVerifier interface {
	// VerifyToken checks signature, issuer, audience and lifetime of
	// tokenString and returns its claims.
	VerifyToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims are the identity attributes carried by a verified ID token.
type Claims struct {
	// IdentityRef is the provider's identifier for the user (the sub claim).
	IdentityRef string

	// Email is the address the provider holds for the user.
	Email string

	// Role is the custom role claim, DefaultRole when absent.
	Role string

	IssuedAt  time.Time
	ExpiresAt time.Time
}

// DefaultRole is assigned to tokens that carry no role claim.
const DefaultRole = "USER"

// idTokenClaims is the wire form of the provider's ID token.
type idTokenClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// idTokenVerifier verifies RS256 ID tokens against a JSON Web Key Set.
type idTokenVerifier struct {
	keys      jwk.Set
	issuer    string
	audience  string
	timeFunc  func() time.Time
	clockSkew time.Duration
}

var _ TokenVerifier = (*idTokenVerifier)(nil)

// IssuerForProject returns the issuer of ID tokens minted for projectID.
func IssuerForProject(projectID string) string {
	return "https://securetoken.google.com/" + projectID
}

// NewIDTokenVerifier creates a verifier that accepts tokens for projectID
// signed by a key in keys.
func NewIDTokenVerifier(keys jwk.Set, projectID string) (TokenVerifier, error) {
	if keys == nil {
		return nil, errors.New("key set cannot be nil")
	}
	if projectID == "" {
		return nil, errors.New("project id cannot be empty")
	}

	return &idTokenVerifier{
		keys:      keys,
		issuer:    IssuerForProject(projectID),
		audience:  projectID,
		timeFunc:  time.Now,
		clockSkew: time.Minute,
	}, nil
}

// NewCachedKeySet returns a key set fetched from jwksURL and refreshed in
// the background for as long as ctx lives. The first fetch happens before
// returning so a bad URL fails at startup.
func NewCachedKeySet(ctx context.Context, jwksURL string) (jwk.Set, error) {
	cache := jwk.NewCache(ctx)
	if err := cache.Register(jwksURL, jwk.WithMinRefreshInterval(15*time.Minute)); err != nil {
		return nil, fmt.Errorf("register jwks url: %w", err)
	}
	if _, err := cache.Refresh(ctx, jwksURL); err != nil {
		return nil, fmt.Errorf("fetch jwks: %w", err)
	}
	return jwk.NewCachedSet(cache, jwksURL), nil
}

// VerifyToken implements TokenVerifier.
func (v *idTokenVerifier) VerifyToken(ctx context.Context, tokenString string) (*Claims, error) {
	log := logger.FromContext(ctx)

	if tokenString == "" {
		return nil, ErrMissingToken
	}

	now := v.timeFunc()
	token, err := jwt.ParseWithClaims(
		tokenString,
		&idTokenClaims{},
		v.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Name}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(v.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			log.Debug("id token rejected: expired")
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
			log.Debug("id token rejected: not yet valid")
			return nil, ErrTokenNotYetValid
		case errors.Is(err, ErrUnknownSigningKey):
			log.Debug("id token rejected: unknown signing key")
			return nil, ErrUnknownSigningKey
		default:
			log.Debug("id token rejected", "error", err, "error_type", fmt.Sprintf("%T", err))
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*idTokenClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		log.Debug("id token rejected: missing subject")
		return nil, ErrInvalidToken
	}

	role := claims.Role
	if role == "" {
		role = DefaultRole
	}

	out := &Claims{
		IdentityRef: claims.Subject,
		Email:       claims.Email,
		Role:        role,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// keyFunc resolves the verification key named by the token's kid header.
func (v *idTokenVerifier) keyFunc(token *jwt.Token) (any, error) {
	kid, _ := token.Header["kid"].(string)
	if kid == "" {
		return nil, ErrUnknownSigningKey
	}

	key, ok := v.keys.LookupKeyID(kid)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSigningKey, kid)
	}

	var raw any
	if err := key.Raw(&raw); err != nil {
		return nil, fmt.Errorf("decode key %s: %w", kid, err)
	}
	return raw, nil
}
