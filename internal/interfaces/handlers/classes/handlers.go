package classes

import (
	classsvc "carbon-backend/internal/application/classes"
	"carbon-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *classsvc.Service
}

// CreateClass POST /api/v1/classes
func (h *Handlers) CreateClass(c *fiber.Ctx) error {
	var body classsvc.CreateClassInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "project_id, vintage and quantity are required", 400, nil)
	}
	class, err := h.Service.CreateClass(c.Context(), body)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Credit class created", class, nil)
}

// ListClasses GET /api/v1/classes?project_id=
func (h *Handlers) ListClasses(c *fiber.Ctx) error {
	var projectID *uuid.UUID
	if q := c.Query("project_id"); q != "" {
		id, err := uuid.Parse(q)
		if err != nil {
			return response.Error(c, "Invalid UUID format for project_id", 400, nil)
		}
		projectID = &id
	}
	classes, err := h.Service.FindAll(c.Context(), projectID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Credit classes", classes, nil)
}

// ViewClass GET /api/v1/classes/:id
func (h *Handlers) ViewClass(c *fiber.Ctx) error {
	classID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for class id", 400, nil)
	}
	class, err := h.Service.FindOne(c.Context(), classID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Credit class", class, nil)
}
