package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order is an admin-entered sale. Creating or resizing one adjusts the
// referenced variant's (or product's) stock by the quantity delta.
type Order struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ProductID  uuid.UUID  `gorm:"type:uuid;index"`
	VariantID  *uuid.UUID `gorm:"type:uuid;index"`
	Quantity   int        `gorm:"not null"`
	UnitPrice  float64    `gorm:"type:decimal(12,2)"`
	Country    string     `gorm:"size:60"`
	AdminEmail string     `gorm:"size:140"`
	CreatedAt  time.Time
}

// ClientOrder is a customer checkout record. It is written once; only the
// tracking link is patched in immediately after creation.
type ClientOrder struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CustomerID   *uuid.UUID `gorm:"type:uuid;index"`
	Email        string     `gorm:"size:140"`
	Name         string     `gorm:"size:140"`
	Phone        string     `gorm:"size:50"`
	Address      string     `gorm:"size:255"`
	City         string     `gorm:"size:100"`
	PostalCode   string     `gorm:"size:20"`
	Country      string     `gorm:"size:60"`
	Items        []ClientOrderItem
	Total        float64 `gorm:"type:decimal(12,2)"`
	TrackingLink string  `gorm:"size:255"`
	CreatedAt    time.Time
}

// ClientOrderItem is a cart line snapshot; titles and prices are frozen at
// checkout and do not follow later catalog edits.
type ClientOrderItem struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ClientOrderID uuid.UUID `gorm:"type:uuid;index"`
	ProductID     uuid.UUID `gorm:"type:uuid"`
	Title         string    `gorm:"size:180"`
	ImageURL      string    `gorm:"size:255"`
	UnitPrice     float64   `gorm:"type:decimal(12,2)"`
	Quantity      int       `gorm:"not null"`
}
