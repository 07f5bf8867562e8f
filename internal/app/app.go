package app

import (
	"net/http"
	"os"

	"gorm.io/gorm"

	"github.com/nipponhub/storefront/internal/adapters/httpserver"
	"github.com/nipponhub/storefront/internal/adapters/repo/postgres"
	"github.com/nipponhub/storefront/internal/adapters/storage/localfs"
	"github.com/nipponhub/storefront/internal/domain"
	"github.com/nipponhub/storefront/internal/usecase"
)

type App struct {
	DB        *gorm.DB
	CatalogUC *usecase.CatalogUC
	StockUC   *usecase.StockUC
	OrderUC   *usecase.OrderUC
	Storage   domain.FileStorage

	uploadsDir string
}

func NewApp(db *gorm.DB) (*App, error) {
	prodRepo := postgres.NewProductRepo(db)
	orderRepo := postgres.NewOrderRepo(db)
	clientOrderRepo := postgres.NewClientOrderRepo(db)
	custRepo := postgres.NewCustomerRepo(db)

	storageDir := os.Getenv("STORAGE_DIR")
	if storageDir == "" {
		storageDir = "uploads"
	}
	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, err
	}
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	storage := localfs.New(storageDir, baseURL)

	a := &App{DB: db, Storage: storage, uploadsDir: storageDir}
	a.CatalogUC = &usecase.CatalogUC{Products: prodRepo}
	a.StockUC = &usecase.StockUC{Products: prodRepo}
	a.OrderUC = &usecase.OrderUC{
		Orders:       orderRepo,
		ClientOrders: clientOrderRepo,
		Customers:    custRepo,
		Products:     prodRepo,
		Stock:        a.StockUC,
		BaseURL:      baseURL,
	}
	return a, nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(a.CatalogUC, a.StockUC, a.OrderUC, a.Storage, a.uploadsDir)
}

func (a *App) Migrate() error {
	if err := a.DB.AutoMigrate(
		&domain.Product{}, &domain.Variation{}, &domain.Variant{},
		&domain.Order{}, &domain.ClientOrder{}, &domain.ClientOrderItem{},
		&domain.Customer{},
	); err != nil {
		return err
	}

	_ = a.DB.Exec("ALTER TABLE products ADD COLUMN IF NOT EXISTS sub_category VARCHAR(100)").Error
	_ = a.DB.Exec("ALTER TABLE products ADD COLUMN IF NOT EXISTS manga VARCHAR(140)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_products_category ON products(category)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_products_manga ON products(manga)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_variations_product_id ON variations(product_id)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_variants_variation_id ON variants(variation_id)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_client_orders_customer_id ON client_orders(customer_id)").Error

	return nil
}
