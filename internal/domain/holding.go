package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Holding is an org's current balance of a credit class. One row per
// (org, class); quantity never goes negative in a committed state.
type Holding struct {
	HoldingID uuid.UUID `gorm:"column:holding_id;type:uuid;primaryKey" json:"holding_id"`
	OrgID     uuid.UUID `gorm:"column:org_id;type:uuid;not null;uniqueIndex:idx_holdings_org_class" json:"org_id"`
	ClassID   uuid.UUID `gorm:"column:class_id;type:uuid;not null;uniqueIndex:idx_holdings_org_class" json:"class_id"`
	Quantity  int64     `gorm:"column:quantity;not null;default:0" json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Holding) TableName() string {
	return "Holdings"
}

// BeforeCreate: never insert zero UUID for primary key; generate random when not set.
func (h *Holding) BeforeCreate(tx *gorm.DB) error {
	if h.HoldingID == uuid.Nil {
		h.HoldingID = uuid.New()
	}
	return nil
}
