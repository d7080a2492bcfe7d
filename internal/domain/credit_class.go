package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreditClass is a vintage-stamped batch of credits with a fixed serial range.
// Invariant: SerialTop - SerialBase + 1 == Quantity. TokenID is assigned at
// most once, after a successful on-chain mint.
type CreditClass struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProjectID  uuid.UUID      `gorm:"column:project_id;type:uuid;not null" json:"project_id"`
	Vintage    int            `gorm:"column:vintage;not null" json:"vintage"`
	Quantity   int64          `gorm:"column:quantity;not null" json:"quantity"`
	SerialBase int64          `gorm:"column:serial_base;not null" json:"serial_base"`
	SerialTop  int64          `gorm:"column:serial_top;not null" json:"serial_top"`
	TokenID    *int64         `gorm:"column:token_id" json:"token_id"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (CreditClass) TableName() string {
	return "CreditClasses"
}

func (c *CreditClass) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Minted reports whether the class has been bound to an on-chain token.
func (c *CreditClass) Minted() bool {
	return c.TokenID != nil
}
