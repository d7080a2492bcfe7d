package projects

import (
	"context"
	"regexp"
	"strings"

	"carbon-backend/internal/domain"
	"carbon-backend/internal/ledger"
	"carbon-backend/internal/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Service encapsulates project and evidence-record operations. File upload
// and hashing happen upstream; the registry only records the fingerprint.
type Service struct {
	Ledger *ledger.Store
}

type CreateProjectInput struct {
	Code     string         `json:"code"`
	Type     string         `json:"type"`
	Metadata datatypes.JSON `json:"metadata"`
	OrgID    uuid.UUID      `json:"org_id"`
}

func (s *Service) CreateProject(ctx context.Context, in CreateProjectInput) (*domain.Project, error) {
	code := strings.TrimSpace(in.Code)
	if code == "" || strings.TrimSpace(in.Type) == "" {
		return nil, apperrors.Validation("code and type are required")
	}
	if _, err := s.Ledger.OrgByID(ctx, in.OrgID); err != nil {
		return nil, err
	}

	metadata := in.Metadata
	if metadata == nil {
		metadata = datatypes.JSON([]byte("{}"))
	}
	project := &domain.Project{
		Code:     code,
		Type:     strings.TrimSpace(in.Type),
		Metadata: metadata,
		OrgID:    in.OrgID,
	}
	if err := s.Ledger.CreateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *Service) FindAll(ctx context.Context) ([]domain.Project, error) {
	return s.Ledger.Projects(ctx)
}

func (s *Service) FindOne(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	return s.Ledger.ProjectByID(ctx, id)
}

func (s *Service) Evidence(ctx context.Context, projectID uuid.UUID) ([]domain.EvidenceArtifact, error) {
	if _, err := s.Ledger.ProjectByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.Ledger.EvidenceForProject(ctx, projectID)
}

var sha256Re = regexp.MustCompile(`^[0-9a-f]{64}$`)

type RegisterEvidenceInput struct {
	ProjectID uuid.UUID `json:"project_id"`
	Sha256    string    `json:"sha256"`
	Bytes     int64     `json:"bytes"`
	URI       string    `json:"uri"`
}

// RegisterEvidence records an already-hashed artifact against a project.
func (s *Service) RegisterEvidence(ctx context.Context, in RegisterEvidenceInput) (*domain.EvidenceArtifact, error) {
	digest := strings.ToLower(strings.TrimPrefix(in.Sha256, "0x"))
	if !sha256Re.MatchString(digest) {
		return nil, apperrors.Validation("sha256 must be a 64-character hex digest")
	}
	if in.URI == "" {
		return nil, apperrors.Validation("uri is required")
	}
	if _, err := s.Ledger.ProjectByID(ctx, in.ProjectID); err != nil {
		return nil, err
	}

	artifact := &domain.EvidenceArtifact{
		ProjectID: in.ProjectID,
		Sha256:    digest,
		Bytes:     in.Bytes,
		URI:       in.URI,
	}
	if err := s.Ledger.CreateEvidence(ctx, artifact); err != nil {
		return nil, err
	}
	return artifact, nil
}
