package usecase

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/nipponhub/storefront/internal/domain"
)

var emailRe = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// OrderUC handles admin order entry (with stock adjustment) and customer
// checkout (snapshot client orders with a shareable tracking link).
type OrderUC struct {
	Orders       domain.OrderRepo
	ClientOrders domain.ClientOrderRepo
	Customers    domain.CustomerRepo
	Products     domain.ProductRepo
	Stock        *StockUC

	// BaseURL is the public origin used to build tracking links.
	BaseURL string
}

// Create records an admin order and decrements the referenced variant's (or
// product's) stock by the ordered quantity. The order is rejected before any
// write when available stock is insufficient.
func (uc *OrderUC) Create(ctx context.Context, o *domain.Order) error {
	if o == nil || o.ProductID == uuid.Nil {
		return domain.Invalid("product_id", "required")
	}
	if o.Quantity <= 0 {
		return domain.Invalid("quantity", "must be positive")
	}
	if o.UnitPrice < 0 {
		return domain.Invalid("unit_price", "negative")
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if err := uc.applyStockDelta(ctx, o, o.Quantity); err != nil {
		return err
	}
	return uc.Orders.Save(ctx, o)
}

// UpdateQuantity resizes an existing order, adjusting stock by exactly the
// delta between the new and old quantity so the original decrement is never
// double-counted.
func (uc *OrderUC) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return domain.Invalid("quantity", "must be positive")
	}
	o, err := uc.Orders.FindByID(ctx, id)
	if err != nil {
		return err
	}
	delta := quantity - o.Quantity
	if delta == 0 {
		return nil
	}
	if err := uc.applyStockDelta(ctx, o, delta); err != nil {
		return err
	}
	o.Quantity = quantity
	return uc.Orders.Save(ctx, o)
}

// Delete cancels an order and returns its quantity to stock.
func (uc *OrderUC) Delete(ctx context.Context, id uuid.UUID) error {
	o, err := uc.Orders.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.applyStockDelta(ctx, o, -o.Quantity); err != nil {
		return err
	}
	return uc.Orders.Delete(ctx, id)
}

// applyStockDelta consumes delta units from the order's stock target
// (positive delta removes stock, negative returns it) and reconciles the
// parent product when the target is a variant.
func (uc *OrderUC) applyStockDelta(ctx context.Context, o *domain.Order, delta int) error {
	if o.VariantID != nil {
		v, err := uc.Products.FindVariant(ctx, *o.VariantID)
		if err != nil {
			return err
		}
		if v.Stock-delta < 0 {
			return domain.ErrInsufficientStock
		}
		if err := uc.Products.AdjustVariantStock(ctx, v.ID, -delta); err != nil {
			return err
		}
		va, err := uc.Products.FindVariation(ctx, v.VariationID)
		if err != nil {
			return err
		}
		_, err = uc.Stock.RecomputeProductStock(ctx, va.ProductID)
		return err
	}
	p, err := uc.Products.FindByID(ctx, o.ProductID)
	if err != nil {
		return err
	}
	if p.Stock-delta < 0 {
		return domain.ErrInsufficientStock
	}
	return uc.Products.AdjustProductStock(ctx, o.ProductID, -delta)
}

// CheckoutLine is one cart entry submitted by the storefront.
type CheckoutLine struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// CheckoutInput carries the customer contact data and cart.
type CheckoutInput struct {
	Email      string         `json:"email"`
	Name       string         `json:"name"`
	Phone      string         `json:"phone"`
	Address    string         `json:"address"`
	City       string         `json:"city"`
	PostalCode string         `json:"postalCode"`
	Country    string         `json:"country"`
	Lines      []CheckoutLine `json:"lines"`
}

// Checkout creates an immutable client order with line-item snapshots taken
// from the current catalog, then patches in the shareable tracking link.
func (uc *OrderUC) Checkout(ctx context.Context, in CheckoutInput) (*domain.ClientOrder, error) {
	if !emailRe.MatchString(in.Email) {
		return nil, domain.Invalid("email", "invalid")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.Invalid("name", "required")
	}
	if len(in.Lines) == 0 {
		return nil, domain.Invalid("lines", "empty cart")
	}

	o := &domain.ClientOrder{
		ID:         uuid.New(),
		Email:      strings.ToLower(strings.TrimSpace(in.Email)),
		Name:       in.Name,
		Phone:      in.Phone,
		Address:    in.Address,
		City:       in.City,
		PostalCode: in.PostalCode,
		Country:    in.Country,
	}
	for _, l := range in.Lines {
		if l.Quantity <= 0 {
			return nil, domain.Invalid("lines", "quantity must be positive")
		}
		p, err := uc.Products.FindByID(ctx, l.ProductID)
		if err != nil {
			return nil, err
		}
		o.Items = append(o.Items, domain.ClientOrderItem{
			ID:            uuid.New(),
			ClientOrderID: o.ID,
			ProductID:     p.ID,
			Title:         p.Title,
			ImageURL:      p.ImageURL,
			UnitPrice:     p.Price,
			Quantity:      l.Quantity,
		})
		o.Total += p.Price * float64(l.Quantity)
	}

	if uc.Customers != nil {
		o.CustomerID = uc.upsertCustomer(ctx, in)
	}
	if err := uc.ClientOrders.Save(ctx, o); err != nil {
		return nil, err
	}
	link := uc.BaseURL + "/track/" + o.ID.String()
	if err := uc.ClientOrders.SetTrackingLink(ctx, o.ID, link); err != nil {
		return nil, err
	}
	o.TrackingLink = link
	return o, nil
}

func (uc *OrderUC) upsertCustomer(ctx context.Context, in CheckoutInput) *uuid.UUID {
	c, err := uc.Customers.FindByEmail(ctx, in.Email)
	if err != nil {
		c = &domain.Customer{ID: uuid.New(), Email: in.Email}
	}
	c.Name = in.Name
	c.Phone = in.Phone
	c.Address = in.Address
	c.Country = in.Country
	if err := uc.Customers.Save(ctx, c); err != nil {
		return nil
	}
	return &c.ID
}

// Track resolves a shareable tracking link to its client order.
func (uc *OrderUC) Track(ctx context.Context, id uuid.UUID) (*domain.ClientOrder, error) {
	if id == uuid.Nil {
		return nil, domain.Invalid("id", "empty")
	}
	return uc.ClientOrders.FindByID(ctx, id)
}
