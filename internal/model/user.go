package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is a closed enumeration; values outside of it are rejected at the
// boundary instead of being compared ad hoc in handlers.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         Role      `gorm:"size:20;not null;default:user" json:"role"`
	FirstName    string    `gorm:"size:30" json:"first_name"`
	LastName     string    `gorm:"size:30" json:"last_name"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	IsStaff      bool      `gorm:"not null;default:false" json:"is_staff"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}
