package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer is upserted from checkout contact data, keyed by email.
type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email     string    `gorm:"size:140;uniqueIndex"`
	Name      string    `gorm:"size:140"`
	Phone     string    `gorm:"size:60"`
	Address   string    `gorm:"size:255"`
	Country   string    `gorm:"size:60"`
	CreatedAt time.Time
}
