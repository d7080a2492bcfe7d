package bridge

import (
	"context"
	"regexp"
	"strings"

	"carbon-backend/internal/application/certificates"
	"carbon-backend/internal/chain"
	"carbon-backend/internal/domain"
	"carbon-backend/internal/ledger"
	"carbon-backend/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Service bridges the off-chain ledger with the on-chain token contracts.
// The ledger is the source of truth: every operation commits its ledger
// transaction first and treats the chain as a best-effort mirror. Chain calls
// are never issued while a ledger transaction is open.
type Service struct {
	Ledger             *ledger.Store
	Gateway            chain.Gateway
	Certs              *certificates.Generator
	ChainID            int64
	DefaultMintAddress string
}

// ChainMirror reports whether and how the on-chain mirror of a committed
// ledger mutation went. Callers branch on this instead of on errors: a failed
// mirror does not invalidate the off-chain record.
type ChainMirror struct {
	Attempted bool   `json:"attempted"`
	TxHash    string `json:"tx_hash,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (m ChainMirror) Succeeded() bool {
	return m.Attempted && m.TxHash != ""
}

type MintResult struct {
	ClassID     uuid.UUID                 `json:"class_id"`
	TokenID     int64                     `json:"token_id"`
	TxHash      string                    `json:"tx_hash"`
	Quantity    int64                     `json:"quantity"`
	Certificate *certificates.Certificate `json:"certificate"`
}

type TransferResult struct {
	Transfer    domain.Transfer           `json:"transfer"`
	Chain       ChainMirror               `json:"chain"`
	Certificate *certificates.Certificate `json:"certificate,omitempty"`
}

type RetireResult struct {
	Retirement  domain.Retirement         `json:"retirement"`
	Chain       ChainMirror               `json:"chain"`
	Certificate *certificates.Certificate `json:"certificate,omitempty"`
}

type AnchorResult struct {
	Anchor domain.EvidenceAnchor `json:"anchor"`
}

// resolveWallet substitutes the configured default when no wallet was given
// and rejects malformed addresses.
func (s *Service) resolveWallet(wallet string) (string, error) {
	if wallet == "" {
		wallet = s.DefaultMintAddress
	}
	if !chain.IsValidAddress(wallet) {
		return "", apperrors.Validation("invalid chain address: %s", wallet)
	}
	return wallet, nil
}

// FinalizeAndMint assigns the class its on-chain token and seeds the issuer
// holding. Unlike transfer and retire there is no off-chain-only fallback: a
// token id must be backed by a genuine mint, so chain failure fails the whole
// operation and the class stays unminted.
func (s *Service) FinalizeAndMint(ctx context.Context, classID uuid.UUID, wallet string) (*MintResult, error) {
	wallet, err := s.resolveWallet(wallet)
	if err != nil {
		return nil, err
	}

	class, err := s.Ledger.ClassByID(ctx, classID)
	if err != nil {
		return nil, err
	}
	if class.Minted() {
		return nil, apperrors.Conflict("credit class %s already minted on-chain", classID)
	}
	project, err := s.Ledger.ProjectByID(ctx, class.ProjectID)
	if err != nil {
		return nil, err
	}

	receipt, err := s.Gateway.Mint(ctx, classID.String(), wallet, class.Quantity)
	if err != nil {
		log.Error().Err(err).Str("class_id", classID.String()).Msg("on-chain mint failed")
		return nil, err
	}

	err = s.Ledger.RunAtomic(ctx, func(tx *ledger.Store) error {
		if err := tx.SetClassTokenID(ctx, classID, receipt.TokenID); err != nil {
			return err
		}
		if _, err := tx.AddToHolding(ctx, project.OrgID, classID, class.Quantity); err != nil {
			return err
		}
		return tx.CreateTokenMint(ctx, &domain.TokenMint{
			ClassID: classID,
			TokenID: receipt.TokenID,
			TxHash:  receipt.TxHash,
			ChainID: s.ChainID,
		})
	})
	if err != nil {
		return nil, err
	}

	cert, err := s.Certs.Mint(ctx, classID, receipt.TxHash, receipt.TokenID)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("class_id", classID.String()).
		Int64("token_id", receipt.TokenID).
		Str("tx", receipt.TxHash).
		Msg("credit class finalized and minted")
	return &MintResult{
		ClassID:     classID,
		TokenID:     receipt.TokenID,
		TxHash:      receipt.TxHash,
		Quantity:    class.Quantity,
		Certificate: cert,
	}, nil
}

// TransferOnChain mirrors an already-committed transfer onto the chain. The
// off-chain transfer stands on its own; a chain failure is logged and
// reported in the result, not raised.
func (s *Service) TransferOnChain(ctx context.Context, transferID uuid.UUID, fromWallet, toWallet string) (*TransferResult, error) {
	if !chain.IsValidAddress(fromWallet) {
		return nil, apperrors.Validation("invalid from wallet address: %s", fromWallet)
	}
	if !chain.IsValidAddress(toWallet) {
		return nil, apperrors.Validation("invalid to wallet address: %s", toWallet)
	}

	transfer, err := s.Ledger.TransferByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	class, err := s.Ledger.ClassByID(ctx, transfer.ClassID)
	if err != nil {
		return nil, err
	}
	if !class.Minted() {
		return nil, apperrors.NotFound("credit class %s has no on-chain token", class.ID)
	}

	result := &TransferResult{Transfer: *transfer, Chain: ChainMirror{Attempted: true}}

	txHash, err := s.Gateway.Transfer(ctx, *class.TokenID, fromWallet, toWallet, transfer.Quantity)
	if err != nil {
		// Best-effort mirror: the off-chain transfer remains valid.
		log.Warn().Err(err).Str("transfer_id", transferID.String()).Msg("on-chain transfer mirror failed")
		result.Chain.Error = err.Error()
		return result, nil
	}

	if err := s.Ledger.AttachTransferTx(ctx, transferID, txHash); err != nil {
		return nil, err
	}
	result.Transfer.ChainTransferTx = &txHash
	result.Chain.TxHash = txHash

	cert, err := s.Certs.Transfer(ctx, transferID, txHash)
	if err != nil {
		return nil, err
	}
	result.Certificate = cert
	return result, nil
}

// RetireAndBurn mirrors an already-committed retirement as an on-chain burn,
// with the same graceful degradation as TransferOnChain.
func (s *Service) RetireAndBurn(ctx context.Context, retirementID uuid.UUID, wallet string) (*RetireResult, error) {
	wallet, err := s.resolveWallet(wallet)
	if err != nil {
		return nil, err
	}

	retirement, err := s.Ledger.RetirementByID(ctx, retirementID)
	if err != nil {
		return nil, err
	}
	class, err := s.Ledger.ClassByID(ctx, retirement.ClassID)
	if err != nil {
		return nil, err
	}
	if !class.Minted() {
		return nil, apperrors.NotFound("credit class %s has no on-chain token", class.ID)
	}

	result := &RetireResult{Retirement: *retirement, Chain: ChainMirror{Attempted: true}}

	txHash, err := s.Gateway.Burn(ctx, class.ID.String(), *class.TokenID, retirement.Quantity, wallet)
	if err != nil {
		log.Warn().Err(err).Str("retirement_id", retirementID.String()).Msg("on-chain burn mirror failed")
		result.Chain.Error = err.Error()
		return result, nil
	}

	if err := s.Ledger.AttachRetirementBurnTx(ctx, retirementID, txHash); err != nil {
		return nil, err
	}
	result.Retirement.ChainBurnTx = &txHash
	result.Chain.TxHash = txHash

	cert, err := s.Certs.Retirement(ctx, retirementID, txHash)
	if err != nil {
		return nil, err
	}
	result.Certificate = cert
	return result, nil
}

var anchorHashRe = regexp.MustCompile(`^(0x)?[0-9a-fA-F]{64}$`)

// AnchorEvidence records a content hash on-chain and upserts the anchor row.
// An anchor with no transaction is meaningless, so chain failure is fatal
// here like it is for mint.
func (s *Service) AnchorEvidence(ctx context.Context, hash, uri string) (*AnchorResult, error) {
	if !anchorHashRe.MatchString(hash) {
		return nil, apperrors.Validation("hash must be a 32-byte hex digest")
	}
	if uri == "" {
		return nil, apperrors.Validation("uri is required")
	}
	hash = strings.ToLower(strings.TrimPrefix(hash, "0x"))

	txHash, err := s.Gateway.Anchor(ctx, hash, uri)
	if err != nil {
		log.Error().Err(err).Str("hash", hash).Msg("on-chain anchor failed")
		return nil, err
	}

	anchor, err := s.Ledger.UpsertAnchor(ctx, hash, uri, txHash, s.ChainID)
	if err != nil {
		return nil, err
	}
	return &AnchorResult{Anchor: *anchor}, nil
}
