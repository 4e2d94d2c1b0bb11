package identity

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/subledger/subledger/internal/chain"
)

// Handler exposes signer registration.
type Handler struct {
	service *Service
}

// NewHandler builds an identity HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type registerRequest struct {
	Account string `json:"account"`
	Secret  string `json:"secret"`
}

type signerResponse struct {
	ID        string `json:"id"`
	Account   string `json:"account"`
	CreatedAt string `json:"created_at"`
}

// Register creates a signer credential for a chain account.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	signer, err := h.service.Register(c.UserContext(), Credentials{
		Account: chain.Name(req.Account),
		Secret:  req.Secret,
	})
	if err != nil {
		if errors.Is(err, ErrSignerExists) {
			return fiber.NewError(http.StatusConflict, err.Error())
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	return c.Status(http.StatusCreated).JSON(signerResponse{
		ID:        signer.ID,
		Account:   signer.Account.String(),
		CreatedAt: signer.CreatedAt.Format(time.RFC3339),
	})
}
