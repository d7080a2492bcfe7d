package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TokenMint records one on-chain mint call for a class. Multiple rows per
// class are possible when supply is minted in tranches to an existing token.
type TokenMint struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ClassID   uuid.UUID `gorm:"column:class_id;type:uuid;not null" json:"class_id"`
	TokenID   int64     `gorm:"column:token_id;not null" json:"token_id"`
	TxHash    string    `gorm:"column:tx_hash;not null" json:"tx_hash"`
	ChainID   int64     `gorm:"column:chain_id;not null" json:"chain_id"`
	CreatedAt time.Time `json:"createdAt"`
}

func (TokenMint) TableName() string {
	return "TokenMints"
}

func (m *TokenMint) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// EvidenceAnchor is a content hash recorded on-chain as tamper-evident proof.
// The hash is unique and immutable once anchored.
type EvidenceAnchor struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Hash      string    `gorm:"column:hash;uniqueIndex;not null" json:"hash"`
	URI       string    `gorm:"column:uri;not null" json:"uri"`
	TxHash    string    `gorm:"column:tx_hash;not null" json:"tx_hash"`
	ChainID   int64     `gorm:"column:chain_id;not null" json:"chain_id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (EvidenceAnchor) TableName() string {
	return "EvidenceAnchors"
}

func (a *EvidenceAnchor) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
