package retirements

import (
	retsvc "carbon-backend/internal/application/retirements"
	"carbon-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *retsvc.Service
}

// CreateRetirement POST /api/v1/retirements
func (h *Handlers) CreateRetirement(c *fiber.Ctx) error {
	var body retsvc.CreateRetirementInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "org_id, class_id and quantity are required", 400, nil)
	}
	retirement, err := h.Service.Create(c.Context(), body)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Credits retired", retirement, nil)
}

// ListRetirements GET /api/v1/retirements?org_id=
func (h *Handlers) ListRetirements(c *fiber.Ctx) error {
	var orgID *uuid.UUID
	if q := c.Query("org_id"); q != "" {
		id, err := uuid.Parse(q)
		if err != nil {
			return response.Error(c, "Invalid UUID format for org_id", 400, nil)
		}
		orgID = &id
	}
	retirements, err := h.Service.FindAll(c.Context(), orgID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Retirements", retirements, nil)
}

// ViewRetirement GET /api/v1/retirements/:certificate_id
func (h *Handlers) ViewRetirement(c *fiber.Ctx) error {
	certificateID := c.Params("certificate_id")
	if certificateID == "" {
		return response.Error(c, "certificate_id is required", 400, nil)
	}
	retirement, err := h.Service.FindOne(c.Context(), certificateID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Retirement", retirement, nil)
}
