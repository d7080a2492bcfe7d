package projects

import (
	projsvc "carbon-backend/internal/application/projects"
	"carbon-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *projsvc.Service
}

// CreateProject POST /api/v1/projects
func (h *Handlers) CreateProject(c *fiber.Ctx) error {
	var body projsvc.CreateProjectInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "code, type and org_id are required", 400, nil)
	}
	project, err := h.Service.CreateProject(c.Context(), body)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Project created", project, nil)
}

// ListProjects GET /api/v1/projects
func (h *Handlers) ListProjects(c *fiber.Ctx) error {
	projects, err := h.Service.FindAll(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Projects", projects, nil)
}

// ViewProject GET /api/v1/projects/:id
func (h *Handlers) ViewProject(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for project id", 400, nil)
	}
	project, err := h.Service.FindOne(c.Context(), projectID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Project", project, nil)
}

// ListEvidence GET /api/v1/projects/:id/evidence
func (h *Handlers) ListEvidence(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for project id", 400, nil)
	}
	evidence, err := h.Service.Evidence(c.Context(), projectID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Evidence", evidence, nil)
}

// RegisterEvidence POST /api/v1/projects/:id/evidence
func (h *Handlers) RegisterEvidence(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for project id", 400, nil)
	}
	var body projsvc.RegisterEvidenceInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "sha256 and uri are required", 400, nil)
	}
	body.ProjectID = projectID
	artifact, err := h.Service.RegisterEvidence(c.Context(), body)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Evidence registered", artifact, nil)
}
