package ledger

import (
	"context"
	"database/sql"
	"errors"

	"carbon-backend/internal/domain"
	"carbon-backend/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Store is the authoritative registry ledger. All multi-row mutations that
// must be jointly consistent run inside RunAtomic; the chain is only a mirror
// and is never touched while a ledger transaction is open.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// serializationRetries bounds how often an aborted serializable transaction
// is replayed before the error is surfaced.
const serializationRetries = 3

// RunAtomic executes fn inside one SERIALIZABLE transaction. Any error from fn
// rolls the whole transaction back. Postgres aborts one of two conflicting
// serializable transactions (SQLSTATE 40001); those aborts are replayed, so fn
// must be safe to run more than once.
func (s *Store) RunAtomic(ctx context.Context, fn func(tx *Store) error) error {
	var err error
	for attempt := 0; attempt <= serializationRetries; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(&Store{db: tx})
		}, &sql.TxOptions{Isolation: sql.LevelSerializable})
		if !isSerializationFailure(err) {
			return err
		}
	}
	return err
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}

// --- point reads ---

func (s *Store) OrgByID(ctx context.Context, id uuid.UUID) (*domain.Org, error) {
	var org domain.Org
	if err := s.db.WithContext(ctx).Where("org_id = ?", id).First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("organization %s not found", id)
		}
		return nil, err
	}
	return &org, nil
}

func (s *Store) ProjectByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("project %s not found", id)
		}
		return nil, err
	}
	return &project, nil
}

func (s *Store) ClassByID(ctx context.Context, id uuid.UUID) (*domain.CreditClass, error) {
	var class domain.CreditClass
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&class).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("credit class %s not found", id)
		}
		return nil, err
	}
	return &class, nil
}

func (s *Store) TransferByID(ctx context.Context, id uuid.UUID) (*domain.Transfer, error) {
	var transfer domain.Transfer
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&transfer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("transfer %s not found", id)
		}
		return nil, err
	}
	return &transfer, nil
}

func (s *Store) RetirementByID(ctx context.Context, id uuid.UUID) (*domain.Retirement, error) {
	var retirement domain.Retirement
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&retirement).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("retirement %s not found", id)
		}
		return nil, err
	}
	return &retirement, nil
}

func (s *Store) RetirementByCertificate(ctx context.Context, certificateID string) (*domain.Retirement, error) {
	var retirement domain.Retirement
	if err := s.db.WithContext(ctx).Where("certificate_id = ?", certificateID).First(&retirement).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("retirement certificate %s not found", certificateID)
		}
		return nil, err
	}
	return &retirement, nil
}

// LastRetirementForClass returns the retirement with the highest serial range
// for a class, or nil when the class has no retirements yet.
func (s *Store) LastRetirementForClass(ctx context.Context, classID uuid.UUID) (*domain.Retirement, error) {
	var retirement domain.Retirement
	err := s.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Order("serial_end DESC").
		First(&retirement).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &retirement, nil
}

func (s *Store) HoldingFor(ctx context.Context, orgID, classID uuid.UUID) (*domain.Holding, error) {
	var holding domain.Holding
	if err := s.db.WithContext(ctx).Where("org_id = ? AND class_id = ?", orgID, classID).First(&holding).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("no holdings for org %s in class %s", orgID, classID)
		}
		return nil, err
	}
	return &holding, nil
}

func (s *Store) FirstMintForClass(ctx context.Context, classID uuid.UUID) (*domain.TokenMint, error) {
	var mint domain.TokenMint
	err := s.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Order("created_at ASC").
		First(&mint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("no mint recorded for class %s", classID)
	}
	if err != nil {
		return nil, err
	}
	return &mint, nil
}

func (s *Store) AnchorByHash(ctx context.Context, hash string) (*domain.EvidenceAnchor, error) {
	var anchor domain.EvidenceAnchor
	err := s.db.WithContext(ctx).Where("hash = ?", hash).First(&anchor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &anchor, nil
}

// --- filtered list reads ---

func (s *Store) Orgs(ctx context.Context) ([]domain.Org, error) {
	var orgs []domain.Org
	err := s.db.WithContext(ctx).Order("created_at ASC").Find(&orgs).Error
	return orgs, err
}

func (s *Store) Projects(ctx context.Context) ([]domain.Project, error) {
	var projects []domain.Project
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&projects).Error
	return projects, err
}

func (s *Store) EvidenceForProject(ctx context.Context, projectID uuid.UUID) ([]domain.EvidenceArtifact, error) {
	var evidence []domain.EvidenceArtifact
	err := s.db.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at DESC").Find(&evidence).Error
	return evidence, err
}

func (s *Store) Classes(ctx context.Context, projectID *uuid.UUID) ([]domain.CreditClass, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if projectID != nil {
		q = q.Where("project_id = ?", *projectID)
	}
	var classes []domain.CreditClass
	err := q.Find(&classes).Error
	return classes, err
}

func (s *Store) Holdings(ctx context.Context, orgID *uuid.UUID) ([]domain.Holding, error) {
	q := s.db.WithContext(ctx)
	if orgID != nil {
		q = q.Where("org_id = ?", *orgID)
	}
	var holdings []domain.Holding
	err := q.Find(&holdings).Error
	return holdings, err
}

func (s *Store) HoldingsForClass(ctx context.Context, classID uuid.UUID) ([]domain.Holding, error) {
	var holdings []domain.Holding
	err := s.db.WithContext(ctx).Where("class_id = ?", classID).Find(&holdings).Error
	return holdings, err
}

func (s *Store) Transfers(ctx context.Context) ([]domain.Transfer, error) {
	var transfers []domain.Transfer
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&transfers).Error
	return transfers, err
}

func (s *Store) Retirements(ctx context.Context, orgID *uuid.UUID) ([]domain.Retirement, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if orgID != nil {
		q = q.Where("org_id = ?", *orgID)
	}
	var retirements []domain.Retirement
	err := q.Find(&retirements).Error
	return retirements, err
}

func (s *Store) RetirementsForClass(ctx context.Context, classID uuid.UUID) ([]domain.Retirement, error) {
	var retirements []domain.Retirement
	err := s.db.WithContext(ctx).Where("class_id = ?", classID).Order("serial_start ASC").Find(&retirements).Error
	return retirements, err
}

func (s *Store) Mints(ctx context.Context) ([]domain.TokenMint, error) {
	var mints []domain.TokenMint
	err := s.db.WithContext(ctx).Order("created_at ASC").Find(&mints).Error
	return mints, err
}

func (s *Store) Anchors(ctx context.Context) ([]domain.EvidenceAnchor, error) {
	var anchors []domain.EvidenceAnchor
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&anchors).Error
	return anchors, err
}

// --- writes ---

func (s *Store) CreateOrg(ctx context.Context, org *domain.Org) error {
	return s.db.WithContext(ctx).Create(org).Error
}

func (s *Store) CreateProject(ctx context.Context, project *domain.Project) error {
	return s.db.WithContext(ctx).Create(project).Error
}

func (s *Store) CreateEvidence(ctx context.Context, artifact *domain.EvidenceArtifact) error {
	return s.db.WithContext(ctx).Create(artifact).Error
}

func (s *Store) CreateClass(ctx context.Context, class *domain.CreditClass) error {
	return s.db.WithContext(ctx).Create(class).Error
}

func (s *Store) CreateTransfer(ctx context.Context, transfer *domain.Transfer) error {
	return s.db.WithContext(ctx).Create(transfer).Error
}

func (s *Store) CreateRetirement(ctx context.Context, retirement *domain.Retirement) error {
	return s.db.WithContext(ctx).Create(retirement).Error
}

func (s *Store) CreateTokenMint(ctx context.Context, mint *domain.TokenMint) error {
	return s.db.WithContext(ctx).Create(mint).Error
}

// UpsertAnchor creates or refreshes the anchor row for a content hash.
func (s *Store) UpsertAnchor(ctx context.Context, hash, uri, txHash string, chainID int64) (*domain.EvidenceAnchor, error) {
	existing, err := s.AnchorByHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.URI = uri
		existing.TxHash = txHash
		existing.ChainID = chainID
		if err := s.db.WithContext(ctx).Save(existing).Error; err != nil {
			return nil, err
		}
		return existing, nil
	}
	anchor := &domain.EvidenceAnchor{Hash: hash, URI: uri, TxHash: txHash, ChainID: chainID}
	if err := s.db.WithContext(ctx).Create(anchor).Error; err != nil {
		return nil, err
	}
	return anchor, nil
}

// SetClassTokenID binds a class to its on-chain token. The guard on token_id
// IS NULL makes the bind at-most-once even under concurrent finalize calls.
func (s *Store) SetClassTokenID(ctx context.Context, classID uuid.UUID, tokenID int64) error {
	res := s.db.WithContext(ctx).
		Model(&domain.CreditClass{}).
		Where("id = ? AND token_id IS NULL", classID).
		Update("token_id", tokenID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.Conflict("credit class %s already minted on-chain", classID)
	}
	return nil
}

// AddToHolding upsert-increments the (org, class) holding by qty.
func (s *Store) AddToHolding(ctx context.Context, orgID, classID uuid.UUID, qty int64) (*domain.Holding, error) {
	var holding domain.Holding
	err := s.db.WithContext(ctx).Where("org_id = ? AND class_id = ?", orgID, classID).First(&holding).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		holding = domain.Holding{OrgID: orgID, ClassID: classID, Quantity: qty}
		if err := s.db.WithContext(ctx).Create(&holding).Error; err != nil {
			return nil, err
		}
		return &holding, nil
	}
	if err != nil {
		return nil, err
	}
	res := s.db.WithContext(ctx).
		Model(&domain.Holding{}).
		Where("holding_id = ?", holding.HoldingID).
		Update("quantity", gorm.Expr("quantity + ?", qty))
	if res.Error != nil {
		return nil, res.Error
	}
	holding.Quantity += qty
	return &holding, nil
}

// DeductFromHolding decrements the (org, class) holding by qty. The balance is
// re-read after the decrement and the transaction aborts when it went
// negative, which closes the check-then-act race between concurrent callers.
func (s *Store) DeductFromHolding(ctx context.Context, orgID, classID uuid.UUID, qty int64) (*domain.Holding, error) {
	holding, err := s.HoldingFor(ctx, orgID, classID)
	if err != nil {
		return nil, err
	}
	if holding.Quantity < qty {
		return nil, apperrors.Conflict("insufficient holdings: have %d, need %d", holding.Quantity, qty)
	}
	res := s.db.WithContext(ctx).
		Model(&domain.Holding{}).
		Where("holding_id = ?", holding.HoldingID).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return nil, res.Error
	}
	var after domain.Holding
	if err := s.db.WithContext(ctx).Where("holding_id = ?", holding.HoldingID).First(&after).Error; err != nil {
		return nil, err
	}
	if after.Quantity < 0 {
		return nil, apperrors.Conflict("holding for org %s would go negative", orgID)
	}
	return &after, nil
}

// AttachTransferTx records the mirroring chain transaction on a transfer.
func (s *Store) AttachTransferTx(ctx context.Context, transferID uuid.UUID, txHash string) error {
	return s.db.WithContext(ctx).
		Model(&domain.Transfer{}).
		Where("id = ?", transferID).
		Update("chain_transfer_tx", txHash).Error
}

// AttachRetirementBurnTx records the mirroring burn transaction on a retirement.
func (s *Store) AttachRetirementBurnTx(ctx context.Context, retirementID uuid.UUID, txHash string) error {
	return s.db.WithContext(ctx).
		Model(&domain.Retirement{}).
		Where("id = ?", retirementID).
		Update("chain_burn_tx", txHash).Error
}
