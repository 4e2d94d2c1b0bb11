package token

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/subledger/subledger/internal/asset"
	"github.com/subledger/subledger/internal/chain"
	"github.com/subledger/subledger/internal/middleware"
)

// Handler exposes the token collaborator's actions over HTTP.
type Handler struct {
	service *Service
}

// NewHandler builds a token HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type issueRequest struct {
	To       string `json:"to"`
	Quantity string `json:"quantity"`
	Memo     string `json:"memo"`
}

type transferRequest struct {
	To       string `json:"to"`
	Quantity string `json:"quantity"`
	Memo     string `json:"memo"`
}

type tokenBalanceResponse struct {
	Owner   string `json:"owner"`
	Balance string `json:"balance"`
}

// Issue mints tokens; the signer must be the currency's issuer.
func (h *Handler) Issue(c *fiber.Ctx) error {
	signer, ok := middleware.SignerFromCtx(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "signer required")
	}

	var req issueRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	quantity, err := asset.Parse(req.Quantity)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.Issue(c.UserContext(), signer, chain.Name(req.To), quantity, req.Memo); err != nil {
		return mapTokenError(err)
	}
	return c.SendStatus(http.StatusCreated)
}

// Transfer moves tokens from the signer to another owner. A transfer to the
// subaccount contract's account is a deposit and credits the signer's
// subaccount in the same transaction.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	signer, ok := middleware.SignerFromCtx(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "signer required")
	}

	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	quantity, err := asset.Parse(req.Quantity)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.Transfer(c.UserContext(), signer, chain.Name(req.To), quantity, req.Memo); err != nil {
		return mapTokenError(err)
	}

	balance, _ := h.service.Balance(signer, quantity.Symbol.Code)
	return c.Status(http.StatusOK).JSON(tokenBalanceResponse{
		Owner:   signer.String(),
		Balance: balance.String(),
	})
}

// Balance returns the owner's token balance for the symbol code in the
// "symbol" query parameter.
func (h *Handler) Balance(c *fiber.Ctx) error {
	owner := chain.Name(c.Params("owner"))
	code := c.Query("symbol", "SYS")

	balance, ok := h.service.Balance(owner, code)
	if !ok {
		return fiber.NewError(http.StatusNotFound, "no balance row for "+owner.String())
	}
	return c.Status(http.StatusOK).JSON(tokenBalanceResponse{
		Owner:   owner.String(),
		Balance: balance.String(),
	})
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, chain.ErrMissingAuthority):
		return fiber.NewError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrOverdrawn), errors.Is(err, ErrSupplyExceeded):
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrUnknownCurrency):
		return fiber.NewError(http.StatusNotFound, err.Error())
	default:
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
}
