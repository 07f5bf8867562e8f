package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nipponhub/storefront/internal/domain"
)

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

// Save persists the product row only. The variation tree has its own
// lifecycle (validation plus stock reconciliation) and never piggybacks on a
// product write.
func (r *ProductRepo) Save(ctx context.Context, p *domain.Product) error {
	return r.db.WithContext(ctx).Omit("Variations").Save(p).Error
}

func (r *ProductRepo) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).Preload("Variations.Variants").First(&p, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).Preload("Variations.Variants").First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// eq applies a column filter, switching to LIKE when the value carries a
// wildcard marker.
func eq(q *gorm.DB, column, value string) *gorm.DB {
	if value == "" {
		return q
	}
	if strings.Contains(value, "%") {
		return q.Where("LOWER("+column+") LIKE LOWER(?)", value)
	}
	return q.Where(column+" = ?", value)
}

func (r *ProductRepo) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	f.Normalize()
	q := r.db.WithContext(ctx).Model(&domain.Product{})
	q = eq(q, "category", f.Category)
	q = eq(q, "sub_category", f.SubCategory)
	q = eq(q, "country", f.Country)
	if term := strings.TrimSpace(f.Query); term != "" {
		like := "%" + term + "%"
		q = q.Where("LOWER(title) LIKE LOWER(?) OR LOWER(manga) LIKE LOWER(?)", like, like)
	}
	if f.MaxPrice > 0 {
		q = q.Where("price <= ?", f.MaxPrice)
	}
	if f.InStock {
		q = q.Where("stock > 0")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch f.Sort {
	case "price_asc":
		q = q.Order("price asc")
	case "price_desc":
		q = q.Order("price desc")
	case "title":
		q = q.Order("title asc")
	default:
		q = q.Order("created_at desc")
	}

	var list []domain.Product
	offset := (f.Page - 1) * f.PageSize
	err := q.Offset(offset).Limit(f.PageSize).
		Preload("Variations", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Preload("Variations.Variants", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *ProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var varIDs []uuid.UUID
		if err := tx.Model(&domain.Variation{}).Where("product_id = ?", id).Pluck("id", &varIDs).Error; err != nil {
			return err
		}
		if len(varIDs) > 0 {
			if err := tx.Where("variation_id IN ?", varIDs).Delete(&domain.Variant{}).Error; err != nil {
				return err
			}
			if err := tx.Where("product_id = ?", id).Delete(&domain.Variation{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&domain.Product{}, "id = ?", id).Error
	})
}

func (r *ProductRepo) UpdateStock(ctx context.Context, productID uuid.UUID, stock int) error {
	return r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", productID).UpdateColumn("stock", stock).Error
}

// --- Variations ---

func (r *ProductRepo) SaveVariation(ctx context.Context, v *domain.Variation) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Save(v).Error
}

func (r *ProductRepo) FindVariation(ctx context.Context, variationID uuid.UUID) (*domain.Variation, error) {
	var va domain.Variation
	if err := r.db.WithContext(ctx).First(&va, "id = ?", variationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &va, nil
}

func (r *ProductRepo) ListVariations(ctx context.Context, productID uuid.UUID) ([]domain.Variation, error) {
	var list []domain.Variation
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Order("created_at asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *ProductRepo) DeleteVariation(ctx context.Context, variationID uuid.UUID) error {
	if variationID == uuid.Nil {
		return errors.New("empty variation id")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("variation_id = ?", variationID).Delete(&domain.Variant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Variation{}, "id = ?", variationID).Error
	})
}

// --- Variants ---

func (r *ProductRepo) SaveVariant(ctx context.Context, v *domain.Variant) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Save(v).Error
}

func (r *ProductRepo) FindVariant(ctx context.Context, variantID uuid.UUID) (*domain.Variant, error) {
	var v domain.Variant
	if err := r.db.WithContext(ctx).First(&v, "id = ?", variantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *ProductRepo) DeleteVariant(ctx context.Context, variantID uuid.UUID) error {
	if variantID == uuid.Nil {
		return errors.New("empty variant id")
	}
	return r.db.WithContext(ctx).Where("id = ?", variantID).Delete(&domain.Variant{}).Error
}

func (r *ProductRepo) AdjustVariantStock(ctx context.Context, variantID uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).Model(&domain.Variant{}).Where("id = ?", variantID).
		UpdateColumn("stock", gorm.Expr("COALESCE(stock,0) + ?", delta)).Error
}

func (r *ProductRepo) AdjustProductStock(ctx context.Context, productID uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("COALESCE(stock,0) + ?", delta)).Error
}
