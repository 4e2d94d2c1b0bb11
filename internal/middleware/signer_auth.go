package middleware

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/subledger/subledger/internal/chain"
	"github.com/subledger/subledger/internal/identity"
)

const (
	signerAccountHeader = "X-Signer-Account"
	signerSecretHeader  = "X-Signer-Secret"

	// SignerAccountKey is the fiber.Ctx locals key holding the
	// authenticated signer's account name as a string.
	SignerAccountKey = "signer_account"
)

// SignerAuth authenticates the request's signer credential and stashes the
// resolved account. The account becomes the only authority the triggered
// ledger transaction carries, so a caller can never act with someone
// else's authority no matter what the request body names.
func SignerAuth(identities *identity.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		account := c.Get(signerAccountHeader)
		secret := c.Get(signerSecretHeader)
		if account == "" || secret == "" {
			return fiber.NewError(http.StatusUnauthorized, "missing signer credentials")
		}

		authority, err := identities.Authenticate(c.UserContext(), identity.Credentials{
			Account: chain.Name(account),
			Secret:  secret,
		})
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid signer credentials")
		}

		c.Locals(SignerAccountKey, authority.String())
		return c.Next()
	}
}

// SignerFromCtx returns the authenticated signer set by SignerAuth.
func SignerFromCtx(c *fiber.Ctx) (chain.Name, bool) {
	account, _ := c.Locals(SignerAccountKey).(string)
	if account == "" {
		return "", false
	}
	return chain.Name(account), true
}
