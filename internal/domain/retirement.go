package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Retirement permanently removes credits from circulation. Serial ranges for a
// class are allocated contiguously in creation order and never overlap.
type Retirement struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OrgID           uuid.UUID `gorm:"column:org_id;type:uuid;not null" json:"org_id"`
	ClassID         uuid.UUID `gorm:"column:class_id;type:uuid;not null" json:"class_id"`
	Quantity        int64     `gorm:"column:quantity;not null" json:"quantity"`
	SerialStart     int64     `gorm:"column:serial_start;not null" json:"serial_start"`
	SerialEnd       int64     `gorm:"column:serial_end;not null" json:"serial_end"`
	PurposeHash     *string   `gorm:"column:purpose_hash" json:"purpose_hash"`
	BeneficiaryHash *string   `gorm:"column:beneficiary_hash" json:"beneficiary_hash"`
	CertificateID   string    `gorm:"column:certificate_id;uniqueIndex;not null" json:"certificate_id"`
	ChainBurnTx     *string   `gorm:"column:chain_burn_tx" json:"chain_burn_tx"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (Retirement) TableName() string {
	return "Retirements"
}

func (r *Retirement) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
