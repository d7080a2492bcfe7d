package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Project is a carbon project owned by an issuer org. Credit classes are
// issued against it.
type Project struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Code      string         `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Type      string         `gorm:"column:type;type:varchar(32);not null" json:"type"`
	Metadata  datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`
	OrgID     uuid.UUID      `gorm:"column:org_id;type:uuid;not null" json:"org_id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Project) TableName() string {
	return "Projects"
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// EvidenceArtifact is an uploaded document fingerprint attached to a project.
// The upload and hashing pipeline lives upstream; the registry only records it.
type EvidenceArtifact struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"column:project_id;type:uuid;not null" json:"project_id"`
	Sha256    string    `gorm:"column:sha256;type:char(64);not null" json:"sha256"`
	Bytes     int64     `gorm:"column:bytes;not null" json:"bytes"`
	URI       string    `gorm:"column:uri;not null" json:"uri"`
	CreatedAt time.Time `json:"createdAt"`
}

func (EvidenceArtifact) TableName() string {
	return "EvidenceArtifacts"
}

func (e *EvidenceArtifact) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
