package models

import (
	"time"

	"gorm.io/gorm"

	"pocketledger/internal/uuid"
)

// Base carries the primary key and creation time shared by every table.
// Rows are ordered by CreatedAt, with ID breaking ties.
type Base struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

// BeforeCreate assigns a UUIDv7 and stamps CreatedAt in UTC. SQLite
// compares timestamps as text, so every row must use the same offset.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	return nil
}
