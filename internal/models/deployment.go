package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DeploymentStatus string

const (
	StatusActive  DeploymentStatus = "active"
	StatusDeleted DeploymentStatus = "deleted"
)

// ErrDuplicateSlug is returned by record stores when a slug is already taken.
var ErrDuplicateSlug = errors.New("deployment slug already exists")

type Deployment struct {
	ID        uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	OwnerID   int64            `json:"ownerId" gorm:"index;not null"` // chat user id
	Name      string           `json:"name" gorm:"not null"`
	Slug      string           `json:"slug" gorm:"uniqueIndex;not null"` // assigned by the hosting API
	URL       string           `json:"url" gorm:"not null"`
	FileCount int              `json:"fileCount" gorm:"not null"`
	Status    DeploymentStatus `json:"status" gorm:"type:varchar(16);index;not null;default:active"`
	CreatedAt time.Time        `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time        `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (d *Deployment) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Status == "" {
		d.Status = StatusActive
	}
	return nil
}

func (d *Deployment) IsActive() bool {
	return d.Status == StatusActive
}
