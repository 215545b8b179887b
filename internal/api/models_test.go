package api

import (
	"strings"
	"testing"

	"github.com/phrazzld/accounts-api/internal/api/shared"
	"github.com/phrazzld/accounts-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestEmailRulesMatchDomain(t *testing.T) {
	addresses := []string{
		"a@x.com",
		"ana.lopez+tag@example.co",
		"not-an-email",
		"a@localhost",
		"Alice <a@x.com>",
		"a@x.com.",
		strings.Repeat("a", 250) + "@x.com",
	}

	for _, addr := range addresses {
		t.Run(addr, func(t *testing.T) {
			domainOK := domain.ValidateEmail(addr) == nil

			assert.Equal(t, domainOK, shared.ValidateRequest(&ChangeEmailRequest{Email: addr}) == nil, "change email")
			assert.Equal(t, domainOK, shared.ValidateRequest(&ForgotPasswordRequest{Email: addr}) == nil, "forgot password")
			assert.Equal(t, domainOK, shared.ValidateRequest(&CreateUserRequest{
				Email:          addr,
				Password:       "secret123",
				Name:           "Ana",
				LastName:       "Lopez",
				DocumentNumber: "1001",
			}) == nil, "create user")
		})
	}
}
