package org

import (
	orgsvc "carbon-backend/internal/application/org"
	"carbon-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles org handlers with dependencies.
type Handlers struct {
	Service *orgsvc.Service
}

// CreateOrg POST /api/v1/orgs
func (h *Handlers) CreateOrg(c *fiber.Ctx) error {
	var body orgsvc.CreateOrgInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "name and role are required", 400, nil)
	}

	org, err := h.Service.CreateOrg(c.Context(), body)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Organization created", org, nil)
}

// ListOrgs GET /api/v1/orgs
func (h *Handlers) ListOrgs(c *fiber.Ctx) error {
	orgs, err := h.Service.ListOrgs(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Organizations", orgs, nil)
}

// ViewOrg GET /api/v1/orgs/:id
func (h *Handlers) ViewOrg(c *fiber.Ctx) error {
	orgID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for org id", 400, nil)
	}
	org, err := h.Service.ViewOrg(c.Context(), orgID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Organization", org, nil)
}
