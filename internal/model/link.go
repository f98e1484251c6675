package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Link struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null" json:"owner_id"`
	Owner     User      `gorm:"constraint:OnDelete:CASCADE" json:"owner,omitempty"`
	TargetURL string    `gorm:"type:text;not null" json:"target_url"`
	ShortCode string    `gorm:"size:8;uniqueIndex;not null" json:"short_code"`
	Title     string    `gorm:"size:100" json:"title"`
	IsPublic  bool      `gorm:"not null;default:false" json:"is_public"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (l *Link) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID, err = uuid.NewV7()
	}
	return
}
