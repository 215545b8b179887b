package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testProject = "accounts-test"
	testKeyID   = "kid-1"
)

type testSigner struct {
	key *rsa.PrivateKey
	set jwk.Set
}

func newTestSigner(t *testing.T) *testSigner {
	t.Helper()

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	pub, err := jwk.FromRaw(&priv.PublicKey)
	require.NoError(t, err)
	require.NoError(t, pub.Set(jwk.KeyIDKey, testKeyID))

	set := jwk.NewSet()
	require.NoError(t, set.AddKey(pub))

	return &testSigner{key: priv, set: set}
}

func (s *testSigner) sign(t *testing.T, kid string, claims idTokenClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if kid != "" {
		token.Header["kid"] = kid
	}
	signed, err := token.SignedString(s.key)
	require.NoError(t, err)
	return signed
}

func validClaims(now time.Time) idTokenClaims {
	return idTokenClaims{
		Email: "ana@example.com",
		Role:  "ADMIN",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "uid-123",
			Issuer:    IssuerForProject(testProject),
			Audience:  jwt.ClaimStrings{testProject},
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func newTestVerifier(t *testing.T, signer *testSigner, now time.Time) *idTokenVerifier {
	t.Helper()
	v, err := NewIDTokenVerifier(signer.set, testProject)
	require.NoError(t, err)
	impl := v.(*idTokenVerifier)
	impl.timeFunc = func() time.Time { return now }
	return impl
}

func TestVerifyToken_Valid(t *testing.T) {
	now := time.Now()
	signer := newTestSigner(t)
	v := newTestVerifier(t, signer, now)

	claims, err := v.VerifyToken(context.Background(), signer.sign(t, testKeyID, validClaims(now)))
	require.NoError(t, err)

	assert.Equal(t, "uid-123", claims.IdentityRef)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.WithinDuration(t, now.Add(time.Hour), claims.ExpiresAt, time.Second)
}

func TestVerifyToken_DefaultRole(t *testing.T) {
	now := time.Now()
	signer := newTestSigner(t)
	v := newTestVerifier(t, signer, now)

	c := validClaims(now)
	c.Role = ""

	claims, err := v.VerifyToken(context.Background(), signer.sign(t, testKeyID, c))
	require.NoError(t, err)
	assert.Equal(t, DefaultRole, claims.Role)
}

func TestVerifyToken_Rejections(t *testing.T) {
	now := time.Now()
	signer := newTestSigner(t)
	other := newTestSigner(t)
	v := newTestVerifier(t, signer, now)

	tests := []struct {
		name  string
		token func() string
		want  error
	}{
		{"empty", func() string { return "" }, ErrMissingToken},
		{"garbage", func() string { return "not.a.jwt" }, ErrInvalidToken},
		{"expired", func() string {
			c := validClaims(now)
			c.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Hour))
			return signer.sign(t, testKeyID, c)
		}, ErrExpiredToken},
		{"issued in the future", func() string {
			c := validClaims(now)
			c.IssuedAt = jwt.NewNumericDate(now.Add(time.Hour))
			return signer.sign(t, testKeyID, c)
		}, ErrTokenNotYetValid},
		{"wrong issuer", func() string {
			c := validClaims(now)
			c.Issuer = IssuerForProject("someone-else")
			return signer.sign(t, testKeyID, c)
		}, ErrInvalidToken},
		{"wrong audience", func() string {
			c := validClaims(now)
			c.Audience = jwt.ClaimStrings{"someone-else"}
			return signer.sign(t, testKeyID, c)
		}, ErrInvalidToken},
		{"missing subject", func() string {
			c := validClaims(now)
			c.Subject = ""
			return signer.sign(t, testKeyID, c)
		}, ErrInvalidToken},
		{"missing expiry", func() string {
			c := validClaims(now)
			c.ExpiresAt = nil
			return signer.sign(t, testKeyID, c)
		}, ErrInvalidToken},
		{"missing kid", func() string { return signer.sign(t, "", validClaims(now)) }, ErrUnknownSigningKey},
		{"unknown kid", func() string { return signer.sign(t, "kid-2", validClaims(now)) }, ErrUnknownSigningKey},
		{"signed by another key", func() string { return other.sign(t, testKeyID, validClaims(now)) }, ErrInvalidToken},
		{"hmac algorithm", func() string {
			token := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims(now))
			token.Header["kid"] = testKeyID
			s, err := token.SignedString([]byte("a-shared-secret-that-is-long-enough"))
			require.NoError(t, err)
			return s
		}, ErrInvalidToken},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.VerifyToken(context.Background(), tc.token())
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestNewIDTokenVerifier_Validation(t *testing.T) {
	_, err := NewIDTokenVerifier(nil, testProject)
	assert.Error(t, err)

	_, err = NewIDTokenVerifier(jwk.NewSet(), "")
	assert.Error(t, err)
}

func TestNewCachedKeySet(t *testing.T) {
	signer := newTestSigner(t)
	body, err := json.Marshal(signer.set)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	set, err := NewCachedKeySet(ctx, srv.URL)
	require.NoError(t, err)

	now := time.Now()
	v, err := NewIDTokenVerifier(set, testProject)
	require.NoError(t, err)

	claims, err := v.VerifyToken(ctx, signer.sign(t, testKeyID, validClaims(now)))
	require.NoError(t, err)
	assert.Equal(t, "uid-123", claims.IdentityRef)
}

func TestNewCachedKeySet_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := NewCachedKeySet(ctx, srv.URL)
	assert.Error(t, err)
}
