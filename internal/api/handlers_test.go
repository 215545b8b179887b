package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/accounts-api/internal/api/shared"
	"github.com/phrazzld/accounts-api/internal/domain"
	"github.com/phrazzld/accounts-api/internal/mocks"
	"github.com/phrazzld/accounts-api/internal/platform/logger"
	"github.com/phrazzld/accounts-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// newTestRouter mounts the handlers the way the server does, with a fixed
// principal standing in for the auth middleware.
func newTestRouter(t *testing.T, users *mocks.MockUserService, principal *shared.Principal) http.Handler {
	t.Helper()
	log, _ := logger.NewTestLogger()

	userHandler := NewUserHandler(users, log)
	profileHandler := NewProfileHandler(users, log)
	authHandler := NewAuthHandler(users, log)

	r := chi.NewRouter()
	r.Post("/api/auth/forgot-password", authHandler.ForgotPassword)
	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				if principal != nil {
					req = req.WithContext(shared.WithPrincipal(req.Context(), *principal))
				}
				next.ServeHTTP(w, req)
			})
		})
		r.Route("/api/admin/users", func(r chi.Router) {
			r.Get("/", userHandler.ListUsers)
			r.Post("/", userHandler.CreateUser)
			r.Get("/email/{email}", userHandler.GetUserByEmail)
			r.Get("/{id}", userHandler.GetUser)
			r.Put("/{id}", userHandler.UpdateUser)
			r.Delete("/{id}", userHandler.DeleteUser)
		})
		r.Route("/api/users", func(r chi.Router) {
			r.Get("/me", profileHandler.GetMyProfile)
			r.Put("/me", profileHandler.UpdateMyProfile)
			r.Put("/password", profileHandler.ChangePassword)
			r.Put("/email", profileHandler.ChangeEmail)
		})
	})
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func samplePublic(id int64) *domain.PublicProfile {
	return &domain.PublicProfile{
		ID:             id,
		IdentityRef:    "uid-1",
		Email:          "ana@example.com",
		Name:           "Ana",
		LastName:       "Lopez",
		DocumentNumber: "1001",
		Roles:          []string{"ADMIN"},
	}
}

var admin = &shared.Principal{IdentityRef: "uid-admin", Role: "ADMIN"}

func TestCreateUser(t *testing.T) {
	users := new(mocks.MockUserService)
	router := newTestRouter(t, users, admin)

	users.On("CreateUser", mock.Anything, service.CreateUserInput{
		Email:          "ana@example.com",
		Password:       "secret123",
		Name:           "Ana",
		LastName:       "Lopez",
		DocumentNumber: "1001",
		Roles:          []string{"ADMIN"},
	}).Return(samplePublic(1), nil)

	rr := do(t, router, http.MethodPost, "/api/admin/users", `{
		"email": "ana@example.com",
		"password": "secret123",
		"name": "Ana",
		"last_name": "Lopez",
		"document_number": "1001",
		"roles": ["ADMIN"]
	}`)

	require.Equal(t, http.StatusCreated, rr.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, float64(1), got["id"])
	assert.Equal(t, "ana@example.com", got["email"])
	assert.NotContains(t, got, "password_hash")
	users.AssertExpectations(t)
}

func TestCreateUser_RequestValidation(t *testing.T) {
	tests := map[string]string{
		"malformed json": `{"email":`,
		"unknown field":  `{"email":"ana@example.com","password":"secret123","name":"A","last_name":"B","document_number":"1","admin":true}`,
		"invalid email":  `{"email":"nope","password":"secret123","name":"A","last_name":"B","document_number":"1"}`,
		"short password": `{"email":"ana@example.com","password":"123","name":"A","last_name":"B","document_number":"1"}`,
		"missing name":   `{"email":"ana@example.com","password":"secret123","last_name":"B","document_number":"1"}`,
		"blank role":     `{"email":"ana@example.com","password":"secret123","name":"A","last_name":"B","document_number":"1","roles":[""]}`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			users := new(mocks.MockUserService)
			rr := do(t, newTestRouter(t, users, admin), http.MethodPost, "/api/admin/users", body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			users.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
		})
	}
}

func TestServiceErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			name:    "duplicate email",
			err:     service.NewUserServiceError("create_user", service.ErrDuplicateEmail, "dup", nil),
			status:  http.StatusConflict,
			message: "Email already registered",
		},
		{
			name:    "provider failure hides cause",
			err:     service.NewUserServiceError("create_user", service.ErrIdentityProvider, "x", errors.New("INTERNAL: api key AIzaSyD-secret")),
			status:  http.StatusBadGateway,
			message: "Identity provider request failed",
		},
		{
			name:    "claim failure",
			err:     service.NewUserServiceError("create_user", service.ErrClaimAssignment, "x", errors.New("quota")),
			status:  http.StatusBadGateway,
			message: "Failed to assign user role",
		},
		{
			name:    "profile write failure",
			err:     service.NewUserServiceError("create_user", service.ErrProfileWrite, "x", errors.New("pq: connection refused")),
			status:  http.StatusInternalServerError,
			message: "Failed to save user profile",
		},
		{
			name:    "validation detail",
			err:     service.NewUserServiceError("create_user", service.ErrValidation, "x", domain.ErrInvalidEmail),
			status:  http.StatusBadRequest,
			message: "Invalid input: invalid email format",
		},
	}

	body := `{"email":"ana@example.com","password":"secret123","name":"A","last_name":"B","document_number":"1"}`
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(mocks.MockUserService)
			users.On("CreateUser", mock.Anything, mock.Anything).Return(nil, tt.err)

			rr := do(t, newTestRouter(t, users, admin), http.MethodPost, "/api/admin/users", body)

			assert.Equal(t, tt.status, rr.Code)
			var resp shared.ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.message, resp.Error)
			assert.NotContains(t, rr.Body.String(), "AIzaSyD")
			assert.NotContains(t, rr.Body.String(), "connection refused")
		})
	}
}

func TestListUsers(t *testing.T) {
	t.Run("returns all profiles", func(t *testing.T) {
		users := new(mocks.MockUserService)
		users.On("ListUsers", mock.Anything).Return([]*domain.PublicProfile{samplePublic(1), samplePublic(2)}, nil)

		rr := do(t, newTestRouter(t, users, admin), http.MethodGet, "/api/admin/users", "")

		require.Equal(t, http.StatusOK, rr.Code)
		var got []domain.PublicProfile
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Len(t, got, 2)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		users := new(mocks.MockUserService)
		users.On("ListUsers", mock.Anything).Return(nil, nil)

		rr := do(t, newTestRouter(t, users, admin), http.MethodGet, "/api/admin/users", "")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
	})

	t.Run("failure mid-stream", func(t *testing.T) {
		users := new(mocks.MockUserService)
		users.On("ListUsers", mock.Anything).Return([]*domain.PublicProfile{samplePublic(1)},
			service.NewUserServiceError("list_users", service.ErrProfileLookup, "x", errors.New("eof")))

		rr := do(t, newTestRouter(t, users, admin), http.MethodGet, "/api/admin/users", "")
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Contains(t, rr.Body.String(), "Failed to list users")
	})
}

func TestGetUser(t *testing.T) {
	users := new(mocks.MockUserService)
	router := newTestRouter(t, users, admin)

	users.On("GetUser", mock.Anything, int64(5)).Return(samplePublic(5), nil)
	users.On("GetUser", mock.Anything, int64(6)).Return(nil, service.ErrUserNotFoundByID)

	rr := do(t, router, http.MethodGet, "/api/admin/users/5", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, router, http.MethodGet, "/api/admin/users/6", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "User not found")

	for _, bad := range []string{"abc", "0", "-3"} {
		rr = do(t, router, http.MethodGet, "/api/admin/users/"+bad, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code, bad)
	}
}

func TestGetUserByEmail(t *testing.T) {
	users := new(mocks.MockUserService)
	users.On("GetUserByEmail", mock.Anything, "ana@example.com").Return(samplePublic(1), nil)

	rr := do(t, newTestRouter(t, users, admin), http.MethodGet, "/api/admin/users/email/ana@example.com", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	users.AssertExpectations(t)
}

func TestUpdateUser_RolesOmittedVersusEmpty(t *testing.T) {
	users := new(mocks.MockUserService)
	router := newTestRouter(t, users, admin)

	users.On("UpdateUser", mock.Anything, int64(3), mock.MatchedBy(func(in service.UpdateUserInput) bool {
		return in.Roles == nil
	})).Return(samplePublic(3), nil).Once()
	users.On("UpdateUser", mock.Anything, int64(4), mock.MatchedBy(func(in service.UpdateUserInput) bool {
		return in.Roles != nil && len(in.Roles) == 0
	})).Return(samplePublic(4), nil).Once()

	rr := do(t, router, http.MethodPut, "/api/admin/users/3",
		`{"name":"Ana","last_name":"Lopez","document_number":"1001"}`)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, router, http.MethodPut, "/api/admin/users/4",
		`{"name":"Ana","last_name":"Lopez","document_number":"1001","roles":[]}`)
	assert.Equal(t, http.StatusOK, rr.Code)

	users.AssertExpectations(t)
}

func TestDeleteUser(t *testing.T) {
	users := new(mocks.MockUserService)
	router := newTestRouter(t, users, admin)

	users.On("DeleteUser", mock.Anything, int64(3)).Return(nil)
	users.On("DeleteUser", mock.Anything, int64(4)).
		Return(service.NewUserServiceError("delete_user", service.ErrIdentityProvider, "x", errors.New("503")))

	assert.Equal(t, http.StatusNoContent, do(t, router, http.MethodDelete, "/api/admin/users/3", "").Code)
	assert.Equal(t, http.StatusBadGateway, do(t, router, http.MethodDelete, "/api/admin/users/4", "").Code)
}

func TestSelfService(t *testing.T) {
	me := &shared.Principal{IdentityRef: "uid-1", Role: "USER"}

	t.Run("get my profile", func(t *testing.T) {
		users := new(mocks.MockUserService)
		users.On("GetMyProfile", mock.Anything, "uid-1").Return(samplePublic(1), nil)

		rr := do(t, newTestRouter(t, users, me), http.MethodGet, "/api/users/me", "")
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("missing profile is a conflict", func(t *testing.T) {
		users := new(mocks.MockUserService)
		users.On("GetMyProfile", mock.Anything, "uid-1").Return(nil, service.ErrProfileMissing)

		rr := do(t, newTestRouter(t, users, me), http.MethodGet, "/api/users/me", "")
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Contains(t, rr.Body.String(), "Account profile is missing")
	})

	t.Run("unauthenticated", func(t *testing.T) {
		users := new(mocks.MockUserService)

		rr := do(t, newTestRouter(t, users, nil), http.MethodGet, "/api/users/me", "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		users.AssertNotCalled(t, "GetMyProfile", mock.Anything, mock.Anything)
	})

	t.Run("update my profile", func(t *testing.T) {
		users := new(mocks.MockUserService)
		users.On("UpdateMyProfile", mock.Anything, "uid-1", service.UpdateProfileInput{
			Name:           "Ana",
			LastName:       "Lopez",
			DocumentNumber: "1001",
			CellPhone:      "300",
		}).Return(samplePublic(1), nil)

		rr := do(t, newTestRouter(t, users, me), http.MethodPut, "/api/users/me",
			`{"name":"Ana","last_name":"Lopez","document_number":"1001","cell_phone":"300"}`)
		assert.Equal(t, http.StatusOK, rr.Code)
		users.AssertExpectations(t)
	})

	t.Run("self update cannot set roles", func(t *testing.T) {
		users := new(mocks.MockUserService)

		rr := do(t, newTestRouter(t, users, me), http.MethodPut, "/api/users/me",
			`{"name":"Ana","last_name":"Lopez","document_number":"1001","roles":["ADMIN"]}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("change password", func(t *testing.T) {
		users := new(mocks.MockUserService)
		users.On("ChangePassword", mock.Anything, "uid-1", "newsecret").Return(nil)

		rr := do(t, newTestRouter(t, users, me), http.MethodPut, "/api/users/password", `{"password":"newsecret"}`)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"message":"Password updated"}`, rr.Body.String())
	})

	t.Run("change email in use", func(t *testing.T) {
		users := new(mocks.MockUserService)
		users.On("ChangeEmail", mock.Anything, "uid-1", "new@example.com").Return(service.ErrEmailInUse)

		rr := do(t, newTestRouter(t, users, me), http.MethodPut, "/api/users/email", `{"email":"new@example.com"}`)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestForgotPassword(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"sent", nil, http.StatusOK},
		{"unknown to provider", service.ErrNotFoundInProvider, http.StatusNotFound},
		{"no profile", service.ErrNotFoundInStore, http.StatusNotFound},
		{"delivery failure", service.NewUserServiceError("request_password_reset", service.ErrResetDelivery, "x", errors.New("smtp")), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(mocks.MockUserService)
			users.On("RequestPasswordReset", mock.Anything, "ana@example.com").Return(tt.err)

			rr := do(t, newTestRouter(t, users, nil), http.MethodPost, "/api/auth/forgot-password", `{"email":"ana@example.com"}`)
			assert.Equal(t, tt.status, rr.Code)
		})
	}
}
