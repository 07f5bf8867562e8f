package domain

import (
	"context"

	"github.com/google/uuid"
)

type ProductRepo interface {
	Save(ctx context.Context, p *Product) error
	FindBySlug(ctx context.Context, slug string) (*Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	List(ctx context.Context, f ProductFilter) ([]Product, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateStock(ctx context.Context, productID uuid.UUID, stock int) error

	SaveVariation(ctx context.Context, v *Variation) error
	FindVariation(ctx context.Context, variationID uuid.UUID) (*Variation, error)
	ListVariations(ctx context.Context, productID uuid.UUID) ([]Variation, error)
	DeleteVariation(ctx context.Context, variationID uuid.UUID) error

	SaveVariant(ctx context.Context, v *Variant) error
	FindVariant(ctx context.Context, variantID uuid.UUID) (*Variant, error)
	DeleteVariant(ctx context.Context, variantID uuid.UUID) error
	AdjustVariantStock(ctx context.Context, variantID uuid.UUID, delta int) error
	AdjustProductStock(ctx context.Context, productID uuid.UUID, delta int) error
}

type OrderRepo interface {
	Save(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context, page, pageSize int) ([]Order, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ClientOrderRepo interface {
	Save(ctx context.Context, o *ClientOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*ClientOrder, error)
	SetTrackingLink(ctx context.Context, id uuid.UUID, link string) error
}

type CustomerRepo interface {
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	Save(ctx context.Context, c *Customer) error
}

// FileStorage abstracts the object store behind image uploads.
type FileStorage interface {
	Save(ctx context.Context, path string, data []byte) error
	PublicURL(path string) string
}
