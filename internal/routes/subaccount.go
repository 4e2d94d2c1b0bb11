package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/subledger/subledger/internal/subaccount"
)

// RegisterSubaccountRoutes wires the subaccount ledger actions.
func RegisterSubaccountRoutes(r fiber.Router, h *subaccount.Handler) {
	r.Post("/accounts", h.Open)
	r.Delete("/accounts/:owner", h.Close)
	r.Post("/withdrawals", h.Withdraw)
}
