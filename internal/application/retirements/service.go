package retirements

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"

	"carbon-backend/internal/domain"
	"carbon-backend/internal/ledger"
	"carbon-backend/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Service owns the off-chain retirement mutation: serial-range allocation,
// certificate id issuance and the holding decrement, all in one transaction.
type Service struct {
	Ledger *ledger.Store
}

type CreateRetirementInput struct {
	OrgID           uuid.UUID `json:"org_id"`
	ClassID         uuid.UUID `json:"class_id"`
	Quantity        int64     `json:"quantity"`
	PurposeHash     *string   `json:"purpose_hash"`
	BeneficiaryHash *string   `json:"beneficiary_hash"`
}

// newCertificateID generates a collision-resistant certificate id. It is
// issued once at creation time and never regenerated.
func newCertificateID() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "CERT-" + strings.ToUpper(hex.EncodeToString(buf)), nil
}

// Create allocates the next contiguous serial range for the class and retires
// the credits. The read-allocate-insert sequence runs inside one transaction
// so concurrent retirements cannot compute overlapping ranges.
func (s *Service) Create(ctx context.Context, in CreateRetirementInput) (*domain.Retirement, error) {
	if in.Quantity <= 0 {
		return nil, apperrors.Validation("quantity must be positive")
	}

	var retirement *domain.Retirement
	err := s.Ledger.RunAtomic(ctx, func(tx *ledger.Store) error {
		class, err := tx.ClassByID(ctx, in.ClassID)
		if err != nil {
			return err
		}

		holding, err := tx.HoldingFor(ctx, in.OrgID, in.ClassID)
		if err != nil {
			return err
		}
		if holding.Quantity < in.Quantity {
			return apperrors.Conflict("insufficient holdings: have %d, need %d", holding.Quantity, in.Quantity)
		}

		last, err := tx.LastRetirementForClass(ctx, in.ClassID)
		if err != nil {
			return err
		}
		serialStart := class.SerialBase
		if last != nil {
			serialStart = last.SerialEnd + 1
		}
		serialEnd := serialStart + in.Quantity - 1
		if serialEnd > class.SerialTop {
			return apperrors.Conflict("serial range exhausted: %d exceeds class top %d", serialEnd, class.SerialTop)
		}

		certificateID, err := newCertificateID()
		if err != nil {
			return err
		}

		retirement = &domain.Retirement{
			OrgID:           in.OrgID,
			ClassID:         in.ClassID,
			Quantity:        in.Quantity,
			SerialStart:     serialStart,
			SerialEnd:       serialEnd,
			PurposeHash:     in.PurposeHash,
			BeneficiaryHash: in.BeneficiaryHash,
			CertificateID:   certificateID,
		}
		if err := tx.CreateRetirement(ctx, retirement); err != nil {
			return err
		}
		if _, err := tx.DeductFromHolding(ctx, in.OrgID, in.ClassID, in.Quantity); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("retirement_id", retirement.ID.String()).
		Str("certificate_id", retirement.CertificateID).
		Int64("serial_start", retirement.SerialStart).
		Int64("serial_end", retirement.SerialEnd).
		Msg("credits retired")
	return retirement, nil
}

func (s *Service) FindAll(ctx context.Context, orgID *uuid.UUID) ([]domain.Retirement, error) {
	return s.Ledger.Retirements(ctx, orgID)
}

// FindOne looks a retirement up by its certificate id.
func (s *Service) FindOne(ctx context.Context, certificateID string) (*domain.Retirement, error) {
	return s.Ledger.RetirementByCertificate(ctx, certificateID)
}
