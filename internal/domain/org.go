package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Org roles. Authorization itself happens upstream; the role is carried for
// display and for seed data.
const (
	RoleAdmin    = "ADMIN"
	RoleIssuer   = "ISSUER"
	RoleVerifier = "VERIFIER"
	RoleBuyer    = "BUYER"
)

type Org struct {
	OrgID         uuid.UUID      `gorm:"column:org_id;type:uuid;primaryKey" json:"org_id"`
	Name          string         `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Role          string         `gorm:"column:role;type:varchar(16);not null" json:"role"`
	WalletAddress *string        `gorm:"column:wallet_address" json:"wallet_address"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Org) TableName() string {
	return "Orgs"
}

// BeforeCreate ensures org_id is set for DBs without default uuid.
func (o *Org) BeforeCreate(tx *gorm.DB) error {
	if o.OrgID == uuid.Nil {
		o.OrgID = uuid.New()
	}
	return nil
}
