package shared

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"  validate:"required,max=5"`
}

func decode(t *testing.T, body string) (sampleRequest, error) {
	t.Helper()
	var req sampleRequest
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	err := DecodeJSON(httptest.NewRecorder(), r, &req)
	return req, err
}

func TestDecodeJSON(t *testing.T) {
	req, err := decode(t, `{"email":"ana@example.com","name":"Ana"}`)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", req.Email)

	_, err = decode(t, `{"email":"ana@example.com","admin":true}`)
	assert.Error(t, err, "unknown fields are rejected")

	_, err = decode(t, `{"email":"a"}{"email":"b"}`)
	assert.Error(t, err, "trailing objects are rejected")

	_, err = decode(t, `not json`)
	assert.Error(t, err)
}

func TestValidateRequest_UsesJSONFieldNames(t *testing.T) {
	err := ValidateRequest(sampleRequest{Email: "nope", Name: "Ana"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'email'")

	err = ValidateRequest(sampleRequest{Email: "ana@example.com", Name: "Anastasia"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'name'")

	assert.NoError(t, ValidateRequest(sampleRequest{Email: "ana@example.com", Name: "Ana"}))
}

type selfValidating struct{ ok bool }

func (s selfValidating) Validate() error {
	if s.ok {
		return nil
	}
	return assert.AnError
}

func TestValidateRequest_PrefersValidateMethod(t *testing.T) {
	assert.NoError(t, ValidateRequest(selfValidating{ok: true}))
	assert.ErrorIs(t, ValidateRequest(selfValidating{}), assert.AnError)
}
