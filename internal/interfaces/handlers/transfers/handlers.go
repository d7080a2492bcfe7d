package transfers

import (
	xfersvc "carbon-backend/internal/application/transfers"
	"carbon-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *xfersvc.Service
}

// CreateTransfer POST /api/v1/transfers
func (h *Handlers) CreateTransfer(c *fiber.Ctx) error {
	var body xfersvc.CreateTransferInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "from_org_id, to_org_id, class_id and quantity are required", 400, nil)
	}
	transfer, err := h.Service.Create(c.Context(), body)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Transfer recorded", transfer, nil)
}

// ListTransfers GET /api/v1/transfers
func (h *Handlers) ListTransfers(c *fiber.Ctx) error {
	transfers, err := h.Service.FindAll(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Transfers", transfers, nil)
}

// ViewTransfer GET /api/v1/transfers/:id
func (h *Handlers) ViewTransfer(c *fiber.Ctx) error {
	transferID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for transfer id", 400, nil)
	}
	transfer, err := h.Service.FindOne(c.Context(), transferID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Transfer", transfer, nil)
}

// ListHoldings GET /api/v1/holdings?org_id=
func (h *Handlers) ListHoldings(c *fiber.Ctx) error {
	var orgID *uuid.UUID
	if q := c.Query("org_id"); q != "" {
		id, err := uuid.Parse(q)
		if err != nil {
			return response.Error(c, "Invalid UUID format for org_id", 400, nil)
		}
		orgID = &id
	}
	holdings, err := h.Service.Holdings(c.Context(), orgID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Holdings", holdings, nil)
}
