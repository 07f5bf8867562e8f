package usecase

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/nipponhub/storefront/internal/domain"
)

// CatalogUC serves the storefront and admin product catalog.
type CatalogUC struct {
	Products domain.ProductRepo
}

// List returns one page of products for the given filter. The repo handles
// predicates, counting and ranging; on-sale ordering is applied in memory so
// it stays stable within the fetched page.
func (uc *CatalogUC) List(ctx context.Context, f domain.ProductFilter) (*domain.ProductPage, error) {
	f.Normalize()
	records, total, err := uc.Products.List(ctx, f)
	if err != nil {
		return nil, err
	}
	sortPromosFirst(records)
	return domain.NewProductPage(records, f.Page, f.PageSize, total), nil
}

// sortPromosFirst orders on-sale items first, ties broken by descending
// discount, then newest first.
func sortPromosFirst(list []domain.Product) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.OnSale != b.OnSale {
			return a.OnSale
		}
		if a.OnSale && a.DiscountPct != b.DiscountPct {
			return a.DiscountPct > b.DiscountPct
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

func (uc *CatalogUC) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, domain.Invalid("slug", "empty")
	}
	return uc.Products.FindBySlug(ctx, slug)
}

func (uc *CatalogUC) Create(ctx context.Context, p *domain.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	}
	// variations only enter through StockUC, where they are validated and
	// the product stock reconciled
	p.Variations = nil
	return uc.Products.Save(ctx, p)
}

func (uc *CatalogUC) Update(ctx context.Context, p *domain.Product) error {
	if p.ID == uuid.Nil {
		return domain.Invalid("id", "empty")
	}
	if err := validateProduct(p); err != nil {
		return err
	}
	p.Variations = nil
	return uc.Products.Save(ctx, p)
}

func (uc *CatalogUC) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return domain.Invalid("id", "empty")
	}
	return uc.Products.Delete(ctx, id)
}

func (uc *CatalogUC) SetImage(ctx context.Context, slug, url string) error {
	p, err := uc.Products.FindBySlug(ctx, slug)
	if err != nil {
		return err
	}
	p.ImageURL = url
	return uc.Products.Save(ctx, p)
}

func validateProduct(p *domain.Product) error {
	if p == nil || strings.TrimSpace(p.Title) == "" {
		return domain.Invalid("title", "required")
	}
	if p.Price < 0 {
		return domain.Invalid("price", "negative")
	}
	if p.Stock < 0 {
		return domain.Invalid("stock", "negative")
	}
	if p.DiscountPct < 0 || p.DiscountPct > 100 {
		return domain.Invalid("discount_pct", "out of range")
	}
	return nil
}

// Slugify derives a URL slug from a product title.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	var b strings.Builder
	prevDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash && b.Len() > 0 {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
