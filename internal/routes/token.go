package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/subledger/subledger/internal/token"
)

// RegisterTokenRoutes wires the token collaborator's actions. A transfer to
// the subaccount contract's account is a deposit.
func RegisterTokenRoutes(r fiber.Router, h *token.Handler) {
	r.Post("/token/issue", h.Issue)
	r.Post("/token/transfers", h.Transfer)
}
