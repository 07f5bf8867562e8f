package domain

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Slug        string    `gorm:"uniqueIndex;size:140"`
	Title       string    `gorm:"size:180"`
	Description string    `gorm:"type:text"`
	Price       float64   `gorm:"type:decimal(12,2)"`

	// Promotional fields. OriginalPrice and DiscountPct are only meaningful
	// while OnSale is true; SaleEndsAt may be nil for open-ended sales.
	OriginalPrice float64    `gorm:"type:decimal(12,2);default:0"`
	DiscountPct   float64    `gorm:"type:decimal(6,2);default:0"`
	OnSale        bool       `gorm:"default:false;index"`
	SaleEndsAt    *time.Time

	Category    string `gorm:"size:100;index"`
	SubCategory string `gorm:"size:100;index"`
	Manga       string `gorm:"size:140;index"`
	Country     string `gorm:"size:60"`
	ImageURL    string `gorm:"size:255"`

	// Denormalized. With variations present this is the sum of all variant
	// stock and is maintained by reconciliation, never edited directly.
	Stock int `gorm:"type:int;default:0"`

	Variations []Variation
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HasVariants reports whether stock is tracked at variant level.
func (p *Product) HasVariants() bool {
	for _, va := range p.Variations {
		if len(va.Variants) > 0 {
			return true
		}
	}
	return false
}

type Variation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;index"`
	Name      string    `gorm:"size:100"`
	Variants  []Variant
	CreatedAt time.Time
}

type Variant struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	VariationID uuid.UUID `gorm:"type:uuid;index"`
	Name        string    `gorm:"size:100"`
	ImageURL    string    `gorm:"size:255"`

	// Price of 0 means the parent product's price applies.
	Price float64 `gorm:"type:decimal(12,2);default:0"`
	Stock int     `gorm:"type:int;default:0"`

	OriginalPrice float64 `gorm:"type:decimal(12,2);default:0"`
	DiscountPct   float64 `gorm:"type:decimal(6,2);default:0"`
	OnSale        bool    `gorm:"default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
