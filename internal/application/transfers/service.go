package transfers

import (
	"context"

	"carbon-backend/internal/domain"
	"carbon-backend/internal/ledger"
	"carbon-backend/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Service owns the off-chain transfer mutation. The on-chain mirror is a
// separate, later step handled by the bridge service.
type Service struct {
	Ledger *ledger.Store
}

type CreateTransferInput struct {
	FromOrgID uuid.UUID `json:"from_org_id"`
	ToOrgID   uuid.UUID `json:"to_org_id"`
	ClassID   uuid.UUID `json:"class_id"`
	Quantity  int64     `json:"quantity"`
}

// Create moves credits between holdings and records the transfer, all inside
// one transaction. The source holding is re-checked after the decrement so two
// concurrent transfers can never jointly overdraw it.
func (s *Service) Create(ctx context.Context, in CreateTransferInput) (*domain.Transfer, error) {
	if in.Quantity <= 0 {
		return nil, apperrors.Validation("quantity must be positive")
	}
	if in.FromOrgID == in.ToOrgID {
		return nil, apperrors.Validation("cannot transfer to the same organization")
	}

	var transfer *domain.Transfer
	err := s.Ledger.RunAtomic(ctx, func(tx *ledger.Store) error {
		if _, err := tx.OrgByID(ctx, in.ToOrgID); err != nil {
			return err
		}
		if _, err := tx.ClassByID(ctx, in.ClassID); err != nil {
			return err
		}

		source, err := tx.HoldingFor(ctx, in.FromOrgID, in.ClassID)
		if err != nil {
			return err
		}
		if source.Quantity < in.Quantity {
			return apperrors.Conflict("insufficient holdings: have %d, need %d", source.Quantity, in.Quantity)
		}

		transfer = &domain.Transfer{
			FromOrgID: in.FromOrgID,
			ToOrgID:   in.ToOrgID,
			ClassID:   in.ClassID,
			Quantity:  in.Quantity,
		}
		if err := tx.CreateTransfer(ctx, transfer); err != nil {
			return err
		}
		if _, err := tx.DeductFromHolding(ctx, in.FromOrgID, in.ClassID, in.Quantity); err != nil {
			return err
		}
		if _, err := tx.AddToHolding(ctx, in.ToOrgID, in.ClassID, in.Quantity); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("transfer_id", transfer.ID.String()).
		Str("class_id", in.ClassID.String()).
		Int64("quantity", in.Quantity).
		Msg("transfer recorded")
	return transfer, nil
}

func (s *Service) FindAll(ctx context.Context) ([]domain.Transfer, error) {
	return s.Ledger.Transfers(ctx)
}

func (s *Service) FindOne(ctx context.Context, id uuid.UUID) (*domain.Transfer, error) {
	return s.Ledger.TransferByID(ctx, id)
}

// Holdings lists holdings, optionally restricted to one org.
func (s *Service) Holdings(ctx context.Context, orgID *uuid.UUID) ([]domain.Holding, error) {
	return s.Ledger.Holdings(ctx, orgID)
}
