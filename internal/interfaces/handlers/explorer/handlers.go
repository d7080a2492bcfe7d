package explorer

import (
	"strconv"

	expsvc "carbon-backend/internal/application/explorer"
	"carbon-backend/internal/chain"
	"carbon-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *expsvc.Service
}

// Credits GET /api/v1/explorer/credits
func (h *Handlers) Credits(c *fiber.Ctx) error {
	view, err := h.Service.GetCredits(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Credits", view, nil)
}

// Tokens GET /api/v1/explorer/tokens
func (h *Handlers) Tokens(c *fiber.Ctx) error {
	view, err := h.Service.GetTokens(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Tokens", view, nil)
}

// Anchors GET /api/v1/explorer/anchors
func (h *Handlers) Anchors(c *fiber.Ctx) error {
	view, err := h.Service.GetAnchors(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Anchors", view, nil)
}

// Balance GET /api/v1/explorer/balance/:address/:token_id
func (h *Handlers) Balance(c *fiber.Ctx) error {
	address := c.Params("address")
	if !chain.IsValidAddress(address) {
		return response.Error(c, "Invalid chain address", 400, nil)
	}
	tokenID, err := strconv.ParseInt(c.Params("token_id"), 10, 64)
	if err != nil {
		return response.Error(c, "Invalid token id", 400, nil)
	}

	balance, err := h.Service.TokenBalance(c.Context(), address, tokenID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Balance", fiber.Map{
		"address":  address,
		"token_id": tokenID,
		"balance":  balance,
	}, nil)
}
