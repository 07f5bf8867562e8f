package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nipponhub/storefront/internal/adapters/repo/postgres"
	"github.com/nipponhub/storefront/internal/domain"
)

func newOrderUC(db *gorm.DB) *OrderUC {
	repo := postgres.NewProductRepo(db)
	return &OrderUC{
		Orders:       postgres.NewOrderRepo(db),
		ClientOrders: postgres.NewClientOrderRepo(db),
		Customers:    postgres.NewCustomerRepo(db),
		Products:     repo,
		Stock:        &StockUC{Products: repo},
		BaseURL:      "https://shop.example",
	}
}

func TestOrderCreate_DecrementsProductStock(t *testing.T) {
	db := setupDB(t)
	uc := newOrderUC(db)
	ctx := context.Background()

	p := seedProduct(t, db, domain.Product{Title: "Akira Poster", Price: 1500, Stock: 10})

	require.NoError(t, uc.Create(ctx, &domain.Order{ProductID: p.ID, Quantity: 3, UnitPrice: 1500, AdminEmail: "staff@shop.example"}))
	assert.Equal(t, 7, productStock(t, db, p.ID))

	err := uc.Create(ctx, &domain.Order{ProductID: p.ID, Quantity: 8, UnitPrice: 1500})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 7, productStock(t, db, p.ID))

	// the rejected order was never persisted
	var count int64
	require.NoError(t, db.Model(&domain.Order{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestOrderCreate_VariantStockAndReconcile(t *testing.T) {
	db := setupDB(t)
	uc := newOrderUC(db)
	ctx := context.Background()

	p := seedProduct(t, db, domain.Product{Title: "Chopper Plush", Price: 2200})
	va, err := uc.Stock.AddVariation(ctx, p.ID, "Taille", []domain.Variant{
		{Name: "Small", Stock: 6},
		{Name: "Large", Stock: 4},
	})
	require.NoError(t, err)
	small := va.Variants[0]

	require.NoError(t, uc.Create(ctx, &domain.Order{ProductID: p.ID, VariantID: &small.ID, Quantity: 5}))

	v, err := uc.Products.FindVariant(ctx, small.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Stock)
	assert.Equal(t, 5, productStock(t, db, p.ID))

	err = uc.Create(ctx, &domain.Order{ProductID: p.ID, VariantID: &small.ID, Quantity: 2})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestOrderUpdateQuantity_AdjustsByDelta(t *testing.T) {
	db := setupDB(t)
	uc := newOrderUC(db)
	ctx := context.Background()

	p := seedProduct(t, db, domain.Product{Title: "Eva Unit 01", Price: 12000, Stock: 10})
	o := &domain.Order{ProductID: p.ID, Quantity: 3, UnitPrice: 12000}
	require.NoError(t, uc.Create(ctx, o))
	require.Equal(t, 7, productStock(t, db, p.ID))

	// grow 3 -> 5: only the delta of 2 leaves stock
	require.NoError(t, uc.UpdateQuantity(ctx, o.ID, 5))
	assert.Equal(t, 5, productStock(t, db, p.ID))

	// shrink 5 -> 1: four units return
	require.NoError(t, uc.UpdateQuantity(ctx, o.ID, 1))
	assert.Equal(t, 9, productStock(t, db, p.ID))

	// growing past availability is refused and leaves everything untouched
	err := uc.UpdateQuantity(ctx, o.ID, 11)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 9, productStock(t, db, p.ID))
	got, err := uc.Orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Quantity)
}

func TestOrderDelete_Restocks(t *testing.T) {
	db := setupDB(t)
	uc := newOrderUC(db)
	ctx := context.Background()

	p := seedProduct(t, db, domain.Product{Title: "Shinigami Scythe", Price: 5000, Stock: 4})
	o := &domain.Order{ProductID: p.ID, Quantity: 4, UnitPrice: 5000}
	require.NoError(t, uc.Create(ctx, o))
	require.Equal(t, 0, productStock(t, db, p.ID))

	require.NoError(t, uc.Delete(ctx, o.ID))
	assert.Equal(t, 4, productStock(t, db, p.ID))
	_, err := uc.Orders.FindByID(ctx, o.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrderCreate_Validation(t *testing.T) {
	db := setupDB(t)
	uc := newOrderUC(db)
	ctx := context.Background()
	p := seedProduct(t, db, domain.Product{Title: "Senbonzakura", Price: 800, Stock: 2})

	assert.True(t, domain.IsValidation(uc.Create(ctx, &domain.Order{ProductID: p.ID, Quantity: 0})))
	assert.True(t, domain.IsValidation(uc.Create(ctx, &domain.Order{ProductID: uuid.Nil, Quantity: 1})))
	assert.True(t, domain.IsValidation(uc.Create(ctx, &domain.Order{ProductID: p.ID, Quantity: 1, UnitPrice: -5})))
}

func TestCheckout_SnapshotAndTrackingLink(t *testing.T) {
	db := setupDB(t)
	uc := newOrderUC(db)
	ctx := context.Background()

	p1 := seedProduct(t, db, domain.Product{Title: "Naruto Vol 1", Price: 900, ImageURL: "/uploads/naruto-vol-1/cover.jpg", Stock: 10})
	p2 := seedProduct(t, db, domain.Product{Title: "Ichigo Keychain", Price: 450, Stock: 5})

	o, err := uc.Checkout(ctx, CheckoutInput{
		Email:   "hinata@example.com",
		Name:    "Hinata",
		Address: "1 Rue du Japon",
		City:    "Paris",
		Country: "FR",
		Lines: []CheckoutLine{
			{ProductID: p1.ID, Quantity: 2},
			{ProductID: p2.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)
	require.Len(t, o.Items, 2)
	assert.Equal(t, 2*900.0+450.0, o.Total)
	assert.Equal(t, "https://shop.example/track/"+o.ID.String(), o.TrackingLink)

	// the link was patched into the stored row, not just the returned value
	stored, err := uc.Track(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.TrackingLink, stored.TrackingLink)
	require.Len(t, stored.Items, 2)
	titles := []string{stored.Items[0].Title, stored.Items[1].Title}
	assert.ElementsMatch(t, []string{"Naruto Vol 1", "Ichigo Keychain"}, titles)

	// contact data is upserted as a customer keyed by email
	c, err := uc.Customers.FindByEmail(ctx, "hinata@example.com")
	require.NoError(t, err)
	require.NotNil(t, o.CustomerID)
	assert.Equal(t, c.ID, *o.CustomerID)
}

func TestCheckout_Validation(t *testing.T) {
	db := setupDB(t)
	uc := newOrderUC(db)
	ctx := context.Background()
	p := seedProduct(t, db, domain.Product{Title: "Tanjiro Earrings", Price: 1200, Stock: 3})

	_, err := uc.Checkout(ctx, CheckoutInput{Email: "not-an-email", Name: "X", Lines: []CheckoutLine{{ProductID: p.ID, Quantity: 1}}})
	assert.True(t, domain.IsValidation(err))

	_, err = uc.Checkout(ctx, CheckoutInput{Email: "a@b.co", Name: "", Lines: []CheckoutLine{{ProductID: p.ID, Quantity: 1}}})
	assert.True(t, domain.IsValidation(err))

	_, err = uc.Checkout(ctx, CheckoutInput{Email: "a@b.co", Name: "X"})
	assert.True(t, domain.IsValidation(err))

	_, err = uc.Checkout(ctx, CheckoutInput{Email: "a@b.co", Name: "X", Lines: []CheckoutLine{{ProductID: p.ID, Quantity: 0}}})
	assert.True(t, domain.IsValidation(err))
}
