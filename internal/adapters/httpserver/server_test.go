package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nipponhub/storefront/internal/adapters/repo/postgres"
	"github.com/nipponhub/storefront/internal/domain"
	"github.com/nipponhub/storefront/internal/usecase"
)

func newTestServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("ADMIN_EMAILS", "staff@shop.example")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Product{}, &domain.Variation{}, &domain.Variant{},
		&domain.Order{}, &domain.ClientOrder{}, &domain.ClientOrderItem{},
		&domain.Customer{},
	))

	repo := postgres.NewProductRepo(db)
	stock := &usecase.StockUC{Products: repo}
	catalog := &usecase.CatalogUC{Products: repo}
	orders := &usecase.OrderUC{
		Orders:       postgres.NewOrderRepo(db),
		ClientOrders: postgres.NewClientOrderRepo(db),
		Customers:    postgres.NewCustomerRepo(db),
		Products:     repo,
		Stock:        stock,
		BaseURL:      "https://shop.example",
	}
	s := New(catalog, stock, orders, nil, "").(*Server)
	return s, db
}

func seed(t *testing.T, db *gorm.DB, title string, price float64, stock int) domain.Product {
	t.Helper()
	p := domain.Product{ID: uuid.New(), Slug: usecase.Slugify(title), Title: title, Price: price, Stock: stock}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func TestProductsEndpoint_FilteredListing(t *testing.T) {
	s, db := newTestServer(t)
	seed(t, db, "Goku SSJ Figure", 4500, 3)
	seed(t, db, "Goku Premium Statue", 9900, 1)
	seed(t, db, "Sailor Moon Wand", 3000, 0)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products?q=goku&max_price=5000", nil))
	require.Equal(t, 200, rec.Code)

	var page domain.ProductPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.TotalCount)
	assert.Equal(t, 1, page.TotalPages)
	require.Len(t, page.Records, 1)
	assert.Equal(t, "Goku SSJ Figure", page.Records[0].Title)
}

func TestAdminToken_RoundTrip(t *testing.T) {
	s, _ := newTestServer(t)

	tok, _, err := s.issueAdminToken("staff@shop.example", time.Minute)
	require.NoError(t, err)
	email, err := s.verifyAdminToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "staff@shop.example", email)

	_, err = s.verifyAdminToken(tok + "x")
	assert.Error(t, err)

	expired, _, err := s.issueAdminToken("staff@shop.example", -time.Minute)
	require.NoError(t, err)
	_, err = s.verifyAdminToken(expired)
	assert.Error(t, err)

	outsider, _, err := s.issueAdminToken("intruder@shop.example", time.Minute)
	require.NoError(t, err)
	_, err = s.verifyAdminToken(outsider)
	assert.Error(t, err)
}

func TestOrdersEndpoint_RequiresAdmin(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))
	assert.Equal(t, 401, rec.Code)
}

func TestOrdersEndpoint_CreateAndInsufficientStock(t *testing.T) {
	s, db := newTestServer(t)
	p := seed(t, db, "Akira Poster", 1500, 10)
	tok, _, err := s.issueAdminToken("staff@shop.example", time.Minute)
	require.NoError(t, err)

	post := func(qty int) *httptest.ResponseRecorder {
		body, _ := json.Marshal(map[string]any{"productId": p.ID, "quantity": qty})
		req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		return rec
	}

	rec := post(3)
	require.Equal(t, 201, rec.Code)
	var created domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "staff@shop.example", created.AdminEmail)
	assert.Equal(t, 1500.0, created.UnitPrice) // snapshot from catalog

	rec = post(8)
	assert.Equal(t, 409, rec.Code)

	var stored domain.Product
	require.NoError(t, db.First(&stored, "id = ?", p.ID).Error)
	assert.Equal(t, 7, stored.Stock)
}

func TestProductUpdateEndpoint_KeepsReconciledStock(t *testing.T) {
	s, db := newTestServer(t)
	p := seed(t, db, "Vegeta Figure", 3000, 0)
	_, err := s.stock.AddVariation(context.Background(), p.ID, "Couleur", []domain.Variant{
		{Name: "Rouge", Stock: 5},
		{Name: "Bleu", Stock: 3},
	})
	require.NoError(t, err)
	tok, _, err := s.issueAdminToken("staff@shop.example", time.Minute)
	require.NoError(t, err)

	body, _ := json.Marshal(map[string]any{
		"title": "Vegeta Figure",
		"price": 3000,
		"stock": 999,
		"variations": []map[string]any{
			{"name": "Taille", "variants": []map[string]any{{"name": "XL", "stock": -7}}},
		},
	})
	req := httptest.NewRequest(http.MethodPut, "/api/products/"+p.Slug, bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, 200, rec.Code)

	var stored domain.Product
	require.NoError(t, db.First(&stored, "id = ?", p.ID).Error)
	assert.Equal(t, 8, stored.Stock)
	var variants int64
	require.NoError(t, db.Model(&domain.Variant{}).Count(&variants).Error)
	assert.Equal(t, int64(2), variants)
}

func TestAdminExport_SurvivesRepoFailure(t *testing.T) {
	s, db := newTestServer(t)
	tok, _, err := s.issueAdminToken("staff@shop.example", time.Minute)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/export", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	// the scan aborts but a well-formed (if partial) workbook still ships
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.NotZero(t, rec.Body.Len())
}

func TestCheckoutAndTrackEndpoints(t *testing.T) {
	s, db := newTestServer(t)
	p := seed(t, db, "Naruto Vol 1", 900, 10)

	body, _ := json.Marshal(map[string]any{
		"email":   "hinata@example.com",
		"name":    "Hinata",
		"country": "FR",
		"lines":   []map[string]any{{"productId": p.ID, "quantity": 2}},
	})
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/checkout", bytes.NewReader(body)))
	require.Equal(t, 201, rec.Code)

	var o domain.ClientOrder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))
	assert.Equal(t, 1800.0, o.Total)
	require.NotEmpty(t, o.TrackingLink)

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/track/%s", o.ID), nil))
	require.Equal(t, 200, rec.Code)
	var tracked domain.ClientOrder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tracked))
	assert.Equal(t, o.ID, tracked.ID)
	require.Len(t, tracked.Items, 1)
	assert.Equal(t, "Naruto Vol 1", tracked.Items[0].Title)
}
