package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base is embedded by every record. IDs are UUID strings generated before insert.
type Base struct {
	ID        string    `json:"id"        gorm:"type:varchar(36);primaryKey"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

// All lists every persisted model in dependency-free order. Migration and backups walk it.
func All() []interface{} {
	return []interface{}{
		&AdminUser{},
		&Profile{},
		&SocialLink{},
		&Skill{},
		&Experience{},
		&Education{},
		&Project{},
		&Recommendation{},
		&Blog{},
		&NewsletterSubscriber{},
		&ContactRequest{},
		&Content{},
	}
}
