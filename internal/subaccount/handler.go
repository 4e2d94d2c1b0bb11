package subaccount

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/subledger/subledger/internal/asset"
	"github.com/subledger/subledger/internal/chain"
	"github.com/subledger/subledger/internal/middleware"
)

// Handler exposes subaccount actions over HTTP. The authenticated signer is
// the only authority the triggered transaction carries.
type Handler struct {
	service *Service
}

// NewHandler builds a subaccount HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type openRequest struct {
	// User defaults to the signer; a payer may open for someone else.
	User string `json:"user"`
}

type withdrawRequest struct {
	Quantity string `json:"quantity"`
	Memo     string `json:"memo"`
}

type balanceResponse struct {
	Owner string `json:"owner"`
	Funds string `json:"funds"`
}

// Open provisions a subaccount, billed to the signer.
func (h *Handler) Open(c *fiber.Ctx) error {
	signer, ok := middleware.SignerFromCtx(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "signer required")
	}

	var req openRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	user := chain.Name(req.User)
	if user == "" {
		user = signer
	}

	if err := h.service.Open(c.UserContext(), user, signer); err != nil {
		return mapActionError(err)
	}
	return c.Status(http.StatusCreated).JSON(balanceResponse{
		Owner: user.String(),
		Funds: asset.New(0, h.service.contract.Symbol()).String(),
	})
}

// Withdraw pays funds out of custody back to the signer.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	signer, ok := middleware.SignerFromCtx(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "signer required")
	}

	var req withdrawRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	quantity, err := asset.Parse(req.Quantity)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.Withdraw(c.UserContext(), signer, quantity, req.Memo); err != nil {
		return mapActionError(err)
	}

	rec, _ := h.service.Balance(signer)
	return c.Status(http.StatusOK).JSON(balanceResponse{
		Owner: signer.String(),
		Funds: rec.Funds.String(),
	})
}

// Close deletes the named subaccount. The ledger rejects the transaction
// unless the signer is the owner.
func (h *Handler) Close(c *fiber.Ctx) error {
	signer, ok := middleware.SignerFromCtx(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "signer required")
	}
	owner := chain.Name(c.Params("owner"))

	if err := h.service.Close(c.UserContext(), signer, owner); err != nil {
		return mapActionError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// Balance returns the owner's subaccount row, or 404 when no row exists.
func (h *Handler) Balance(c *fiber.Ctx) error {
	owner := chain.Name(c.Params("owner"))
	rec, ok := h.service.Balance(owner)
	if !ok {
		return fiber.NewError(http.StatusNotFound, "no subaccount for "+owner.String())
	}
	return c.Status(http.StatusOK).JSON(balanceResponse{
		Owner: rec.Owner.String(),
		Funds: rec.Funds.String(),
	})
}

func mapActionError(err error) error {
	switch {
	case errors.Is(err, chain.ErrMissingAuthority):
		return fiber.NewError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrNoAccount):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAccountExists):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrInsufficientFunds), errors.Is(err, ErrBalanceNotZero):
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	default:
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
}
