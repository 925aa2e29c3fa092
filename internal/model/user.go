package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account that signs in with a password, a Google credential, or both.
type User struct {
	ID               uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Name             string    `json:"name" gorm:"size:255;not null"`
	Email            string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash     string    `json:"-" gorm:"size:255"` // empty for Google-only accounts
	GoogleID         *string   `json:"googleId,omitempty" gorm:"uniqueIndex;size:255"`
	ProfileCompleted bool      `json:"profileCompleted" gorm:"default:false"`
	Skills           []string  `json:"skills,omitempty" gorm:"serializer:json;type:text"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`

	Roadmap *Roadmap `json:"roadmap,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// HasPassword reports whether the account can sign in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
