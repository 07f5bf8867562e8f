package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/nipponhub/storefront/internal/domain"
)

// StockUC owns variant-level stock tracking and the reconciliation of the
// denormalized product stock.
type StockUC struct {
	Products domain.ProductRepo
}

// RecomputeProductStock sums every variant's stock across the product's
// variations and writes the total back. It always recomputes from source:
// concurrent admin edits converge to the correct total instead of drifting.
func (uc *StockUC) RecomputeProductStock(ctx context.Context, productID uuid.UUID) (int, error) {
	if productID == uuid.Nil {
		return 0, domain.Invalid("product_id", "empty")
	}
	variations, err := uc.Products.ListVariations(ctx, productID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, va := range variations {
		for _, v := range va.Variants {
			total += v.Stock
		}
	}
	if err := uc.Products.UpdateStock(ctx, productID, total); err != nil {
		return 0, err
	}
	return total, nil
}

// AddVariation attaches a named variation with its variants to a product and
// reconciles the product stock.
func (uc *StockUC) AddVariation(ctx context.Context, productID uuid.UUID, name string, variants []domain.Variant) (*domain.Variation, error) {
	if productID == uuid.Nil {
		return nil, domain.Invalid("product_id", "empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, domain.Invalid("name", "required")
	}
	if len(variants) == 0 {
		return nil, domain.Invalid("variants", "at least one required")
	}
	for i := range variants {
		if strings.TrimSpace(variants[i].Name) == "" {
			return nil, domain.Invalid("variants", "variant name required")
		}
		if variants[i].Stock < 0 {
			return nil, domain.Invalid("variants", "negative stock")
		}
	}
	va := &domain.Variation{ID: uuid.New(), ProductID: productID, Name: name}
	if err := uc.Products.SaveVariation(ctx, va); err != nil {
		return nil, err
	}
	for i := range variants {
		variants[i].ID = uuid.New()
		variants[i].VariationID = va.ID
		if err := uc.Products.SaveVariant(ctx, &variants[i]); err != nil {
			return nil, err
		}
	}
	va.Variants = variants
	if _, err := uc.RecomputeProductStock(ctx, productID); err != nil {
		return nil, err
	}
	return va, nil
}

// UpdateVariant saves edits to a single variant and reconciles its product.
func (uc *StockUC) UpdateVariant(ctx context.Context, v *domain.Variant) error {
	if v == nil || v.ID == uuid.Nil {
		return domain.Invalid("id", "empty")
	}
	if v.Stock < 0 {
		return domain.Invalid("stock", "negative")
	}
	if err := uc.Products.SaveVariant(ctx, v); err != nil {
		return err
	}
	productID, err := uc.productOfVariation(ctx, v.VariationID)
	if err != nil {
		return err
	}
	_, err = uc.RecomputeProductStock(ctx, productID)
	return err
}

// DeleteVariation removes a variation and its variants, then reconciles.
func (uc *StockUC) DeleteVariation(ctx context.Context, variationID uuid.UUID) error {
	if variationID == uuid.Nil {
		return domain.Invalid("id", "empty")
	}
	productID, err := uc.productOfVariation(ctx, variationID)
	if err != nil {
		return err
	}
	if err := uc.Products.DeleteVariation(ctx, variationID); err != nil {
		return err
	}
	_, err = uc.RecomputeProductStock(ctx, productID)
	return err
}

// DeleteVariant removes one variant and reconciles its product.
func (uc *StockUC) DeleteVariant(ctx context.Context, variantID uuid.UUID) error {
	v, err := uc.Products.FindVariant(ctx, variantID)
	if err != nil {
		return err
	}
	productID, err := uc.productOfVariation(ctx, v.VariationID)
	if err != nil {
		return err
	}
	if err := uc.Products.DeleteVariant(ctx, variantID); err != nil {
		return err
	}
	_, err = uc.RecomputeProductStock(ctx, productID)
	return err
}

func (uc *StockUC) productOfVariation(ctx context.Context, variationID uuid.UUID) (uuid.UUID, error) {
	va, err := uc.Products.FindVariation(ctx, variationID)
	if err != nil {
		return uuid.Nil, err
	}
	return va.ProductID, nil
}
