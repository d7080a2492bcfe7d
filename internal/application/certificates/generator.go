package certificates

import (
	"context"
	"strings"
	"time"

	"carbon-backend/internal/ledger"
	"carbon-backend/internal/pkg/apperrors"

	"github.com/google/uuid"
)

type Type string

const (
	TypeMint       Type = "MINT"
	TypeTransfer   Type = "TRANSFER"
	TypeRetirement Type = "RETIREMENT"
)

type OrgRef struct {
	OrgID uuid.UUID `json:"org_id"`
	Name  string    `json:"name"`
}

type ProjectRef struct {
	Code string `json:"code"`
	Type string `json:"type"`
}

type SerialRange struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

type ChainRef struct {
	TxHash  string `json:"tx_hash"`
	ChainID int64  `json:"chain_id"`
}

// Certificate is the immutable, typed proof of a mint, transfer or
// retirement. Fields not relevant to the type are omitted from JSON.
type Certificate struct {
	Type            Type         `json:"type"`
	CertificateID   string       `json:"certificate_id"`
	Timestamp       time.Time    `json:"timestamp"`
	ClassID         string       `json:"class_id,omitempty"`
	TokenID         *int64       `json:"token_id,omitempty"`
	TransferID      string       `json:"transfer_id,omitempty"`
	RetirementID    string       `json:"retirement_id,omitempty"`
	Project         *ProjectRef  `json:"project,omitempty"`
	From            *OrgRef      `json:"from,omitempty"`
	To              *OrgRef      `json:"to,omitempty"`
	Org             *OrgRef      `json:"org,omitempty"`
	Quantity        int64        `json:"quantity"`
	SerialRange     *SerialRange `json:"serial_range,omitempty"`
	PurposeHash     *string      `json:"purpose_hash,omitempty"`
	BeneficiaryHash *string      `json:"beneficiary_hash,omitempty"`
	Blockchain      ChainRef     `json:"blockchain"`
}

// Generator resolves certificate display fields from the ledger. It refuses
// to emit a certificate when any referenced entity is missing.
type Generator struct {
	Ledger  *ledger.Store
	ChainID int64
}

// idSuffix derives the printable certificate suffix from an owning record id.
func idSuffix(id string) string {
	if len(id) > 12 {
		id = id[len(id)-12:]
	}
	return strings.ToUpper(id)
}

// Mint builds a MINT certificate for a class and its mint transaction.
func (g *Generator) Mint(ctx context.Context, classID uuid.UUID, txHash string, tokenID int64) (*Certificate, error) {
	class, err := g.Ledger.ClassByID(ctx, classID)
	if err != nil {
		return nil, err
	}
	project, err := g.Ledger.ProjectByID(ctx, class.ProjectID)
	if err != nil {
		return nil, err
	}
	if _, err := g.Ledger.OrgByID(ctx, project.OrgID); err != nil {
		return nil, err
	}

	return &Certificate{
		Type:          TypeMint,
		CertificateID: "MINT-" + idSuffix(classID.String()),
		Timestamp:     time.Now().UTC(),
		ClassID:       classID.String(),
		TokenID:       &tokenID,
		Project:       &ProjectRef{Code: project.Code, Type: project.Type},
		Quantity:      class.Quantity,
		SerialRange:   &SerialRange{Start: class.SerialBase, End: class.SerialTop},
		Blockchain:    ChainRef{TxHash: txHash, ChainID: g.ChainID},
	}, nil
}

// Transfer builds a TRANSFER certificate for a transfer and its chain tx.
func (g *Generator) Transfer(ctx context.Context, transferID uuid.UUID, txHash string) (*Certificate, error) {
	transfer, err := g.Ledger.TransferByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	fromOrg, err := g.Ledger.OrgByID(ctx, transfer.FromOrgID)
	if err != nil {
		return nil, err
	}
	toOrg, err := g.Ledger.OrgByID(ctx, transfer.ToOrgID)
	if err != nil {
		return nil, err
	}
	class, err := g.Ledger.ClassByID(ctx, transfer.ClassID)
	if err != nil {
		return nil, err
	}
	project, err := g.Ledger.ProjectByID(ctx, class.ProjectID)
	if err != nil {
		return nil, err
	}

	return &Certificate{
		Type:          TypeTransfer,
		CertificateID: "XFER-" + idSuffix(transferID.String()),
		Timestamp:     time.Now().UTC(),
		TransferID:    transferID.String(),
		ClassID:       transfer.ClassID.String(),
		From:          &OrgRef{OrgID: fromOrg.OrgID, Name: fromOrg.Name},
		To:            &OrgRef{OrgID: toOrg.OrgID, Name: toOrg.Name},
		Project:       &ProjectRef{Code: project.Code, Type: project.Type},
		Quantity:      transfer.Quantity,
		Blockchain:    ChainRef{TxHash: txHash, ChainID: g.ChainID},
	}, nil
}

// Retirement builds a RETIREMENT certificate. The certificate id was issued
// when the retirement was created and is reused, never regenerated.
func (g *Generator) Retirement(ctx context.Context, retirementID uuid.UUID, txHash string) (*Certificate, error) {
	retirement, err := g.Ledger.RetirementByID(ctx, retirementID)
	if err != nil {
		return nil, err
	}
	org, err := g.Ledger.OrgByID(ctx, retirement.OrgID)
	if err != nil {
		return nil, err
	}
	class, err := g.Ledger.ClassByID(ctx, retirement.ClassID)
	if err != nil {
		return nil, err
	}
	project, err := g.Ledger.ProjectByID(ctx, class.ProjectID)
	if err != nil {
		return nil, err
	}

	return &Certificate{
		Type:            TypeRetirement,
		CertificateID:   retirement.CertificateID,
		Timestamp:       retirement.CreatedAt,
		RetirementID:    retirementID.String(),
		ClassID:         retirement.ClassID.String(),
		Org:             &OrgRef{OrgID: org.OrgID, Name: org.Name},
		Project:         &ProjectRef{Code: project.Code, Type: project.Type},
		Quantity:        retirement.Quantity,
		SerialRange:     &SerialRange{Start: retirement.SerialStart, End: retirement.SerialEnd},
		PurposeHash:     retirement.PurposeHash,
		BeneficiaryHash: retirement.BeneficiaryHash,
		Blockchain:      ChainRef{TxHash: txHash, ChainID: g.ChainID},
	}, nil
}

// ForType resolves a certificate from its public lookup key: MINT by class id,
// TRANSFER by transfer id, RETIREMENT by certificate id.
func (g *Generator) ForType(ctx context.Context, certType Type, id string) (*Certificate, error) {
	switch certType {
	case TypeMint:
		classID, err := uuid.Parse(id)
		if err != nil {
			return nil, apperrors.Validation("invalid class id: %s", id)
		}
		mint, err := g.Ledger.FirstMintForClass(ctx, classID)
		if err != nil {
			return nil, err
		}
		return g.Mint(ctx, classID, mint.TxHash, mint.TokenID)

	case TypeTransfer:
		transferID, err := uuid.Parse(id)
		if err != nil {
			return nil, apperrors.Validation("invalid transfer id: %s", id)
		}
		transfer, err := g.Ledger.TransferByID(ctx, transferID)
		if err != nil {
			return nil, err
		}
		if transfer.ChainTransferTx == nil {
			return nil, apperrors.NotFound("transfer %s has not been mirrored on-chain", id)
		}
		return g.Transfer(ctx, transferID, *transfer.ChainTransferTx)

	case TypeRetirement:
		retirement, err := g.Ledger.RetirementByCertificate(ctx, id)
		if err != nil {
			return nil, err
		}
		txHash := ""
		if retirement.ChainBurnTx != nil {
			txHash = *retirement.ChainBurnTx
		}
		return g.Retirement(ctx, retirement.ID, txHash)

	default:
		return nil, apperrors.Validation("invalid certificate type: %s", certType)
	}
}
