package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/subledger/subledger/internal/identity"
)

// RegisterSignerRoutes wires signer registration behind a rate limiter.
func RegisterSignerRoutes(r fiber.Router, h *identity.Handler, rateLimiter fiber.Handler) {
	r.Post("/signers", rateLimiter, h.Register)
}
