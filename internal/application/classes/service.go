package classes

import (
	"context"

	"carbon-backend/internal/domain"
	"carbon-backend/internal/ledger"
	"carbon-backend/internal/pkg/apperrors"

	"github.com/google/uuid"
)

// Service encapsulates credit-class operations. A class is created unminted;
// finalize-and-mint (bridge service) assigns its token exactly once.
type Service struct {
	Ledger *ledger.Store
}

type CreateClassInput struct {
	ProjectID uuid.UUID `json:"project_id"`
	Vintage   int       `json:"vintage"`
	Quantity  int64     `json:"quantity"`
}

func (s *Service) CreateClass(ctx context.Context, in CreateClassInput) (*domain.CreditClass, error) {
	if in.Quantity <= 0 {
		return nil, apperrors.Validation("quantity must be positive")
	}
	if in.Vintage <= 0 {
		return nil, apperrors.Validation("vintage is required")
	}
	if _, err := s.Ledger.ProjectByID(ctx, in.ProjectID); err != nil {
		return nil, err
	}

	// Serial units run 1..quantity; retirements consume the range in order.
	class := &domain.CreditClass{
		ProjectID:  in.ProjectID,
		Vintage:    in.Vintage,
		Quantity:   in.Quantity,
		SerialBase: 1,
		SerialTop:  in.Quantity,
	}
	if err := s.Ledger.CreateClass(ctx, class); err != nil {
		return nil, err
	}
	return class, nil
}

func (s *Service) FindAll(ctx context.Context, projectID *uuid.UUID) ([]domain.CreditClass, error) {
	return s.Ledger.Classes(ctx, projectID)
}

func (s *Service) FindOne(ctx context.Context, id uuid.UUID) (*domain.CreditClass, error) {
	return s.Ledger.ClassByID(ctx, id)
}
