package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Transfer is an off-chain movement of credits between two orgs. The row is
// immutable once created except for the later attachment of the mirroring
// chain transaction hash.
type Transfer struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	FromOrgID       uuid.UUID `gorm:"column:from_org_id;type:uuid;not null" json:"from_org_id"`
	ToOrgID         uuid.UUID `gorm:"column:to_org_id;type:uuid;not null" json:"to_org_id"`
	ClassID         uuid.UUID `gorm:"column:class_id;type:uuid;not null" json:"class_id"`
	Quantity        int64     `gorm:"column:quantity;not null" json:"quantity"`
	ChainTransferTx *string   `gorm:"column:chain_transfer_tx" json:"chain_transfer_tx"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (Transfer) TableName() string {
	return "Transfers"
}

func (t *Transfer) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
