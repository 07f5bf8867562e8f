package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/nipponhub/storefront/internal/domain"
	"github.com/nipponhub/storefront/internal/usecase"
)

type Server struct {
	mux     *http.ServeMux
	catalog *usecase.CatalogUC
	stock   *usecase.StockUC
	orders  *usecase.OrderUC
	storage domain.FileStorage

	adminAllowed map[string]struct{}
	adminSecret  []byte

	notifier *Notifier
	uploads  string
}

func New(catalog *usecase.CatalogUC, stock *usecase.StockUC, orders *usecase.OrderUC, fs domain.FileStorage, uploadsDir string) http.Handler {
	s := &Server{
		mux:      http.NewServeMux(),
		catalog:  catalog,
		stock:    stock,
		orders:   orders,
		storage:  fs,
		notifier: NewNotifier(),
		uploads:  uploadsDir,
	}
	s.adminAllowed = map[string]struct{}{}
	for _, e := range strings.Split(os.Getenv("ADMIN_EMAILS"), ",") {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			s.adminAllowed[e] = struct{}{}
		}
	}
	s.adminSecret = []byte(os.Getenv("SECRET_KEY"))
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

func (s *Server) routes() {
	s.mux.HandleFunc("/api/products", s.handleProducts)
	s.mux.HandleFunc("/api/products/", s.handleProduct)
	s.mux.HandleFunc("/api/variants/", s.handleVariant)
	s.mux.HandleFunc("/api/variations/", s.handleVariation)
	s.mux.HandleFunc("/api/orders", s.handleOrders)
	s.mux.HandleFunc("/api/orders/", s.handleOrder)
	s.mux.HandleFunc("/api/checkout", s.handleCheckout)
	s.mux.HandleFunc("/track/", s.handleTrack)
	s.mux.HandleFunc("/api/admin/login", s.handleAdminLogin)
	s.mux.HandleFunc("/api/admin/export", s.handleAdminExport)
	if s.uploads != "" {
		s.mux.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.uploads))))
	}
}

// handleProducts serves GET (paginated listing) and POST (admin create).
func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		qv := r.URL.Query()
		page, _ := strconv.Atoi(qv.Get("page"))
		maxPrice, _ := strconv.ParseFloat(qv.Get("max_price"), 64)
		f := domain.ProductFilter{
			Category:    qv.Get("category"),
			SubCategory: qv.Get("sub_category"),
			Country:     qv.Get("country"),
			Query:       qv.Get("q"),
			MaxPrice:    maxPrice,
			InStock:     qv.Get("in_stock") == "1" || qv.Get("in_stock") == "true",
			Sort:        qv.Get("sort"),
			Page:        page,
		}
		if ps, err := strconv.Atoi(qv.Get("page_size")); err == nil {
			f.PageSize = ps
		}
		pageRes, err := s.catalog.List(r.Context(), f)
		if err != nil {
			log.Error().Err(err).Msg("list products")
			writeJSON(w, 500, map[string]any{"error": "error loading products", "records": []domain.Product{}})
			return
		}
		writeJSON(w, 200, pageRes)
	case http.MethodPost:
		if !s.requireAdmin(w, r) {
			return
		}
		var p domain.Product
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeJSON(w, 400, map[string]any{"error": "bad json"})
			return
		}
		if err := s.catalog.Create(r.Context(), &p); err != nil {
			s.fail(w, err, "error creating product")
			return
		}
		writeJSON(w, 201, p)
	default:
		http.Error(w, "method", 405)
	}
}

// handleProduct serves /api/products/{slug} and its sub-resources.
func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/products/")
	parts := strings.SplitN(rest, "/", 2)
	slug := parts[0]
	if slug == "" {
		http.NotFound(w, r)
		return
	}
	if len(parts) == 2 {
		switch parts[1] {
		case "variations":
			s.handleAddVariation(w, r, slug)
		case "image":
			s.handleImageUpload(w, r, slug)
		default:
			http.NotFound(w, r)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		p, err := s.catalog.GetBySlug(r.Context(), slug)
		if err != nil {
			s.fail(w, err, "error loading product")
			return
		}
		writeJSON(w, 200, p)
	case http.MethodPut:
		if !s.requireAdmin(w, r) {
			return
		}
		existing, err := s.catalog.GetBySlug(r.Context(), slug)
		if err != nil {
			s.fail(w, err, "error loading product")
			return
		}
		var p domain.Product
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeJSON(w, 400, map[string]any{"error": "bad json"})
			return
		}
		p.ID = existing.ID
		p.Slug = existing.Slug
		if existing.HasVariants() {
			// variant-tracked stock is derived, not editable here
			p.Stock = existing.Stock
		}
		if err := s.catalog.Update(r.Context(), &p); err != nil {
			s.fail(w, err, "error updating product")
			return
		}
		writeJSON(w, 200, p)
	case http.MethodDelete:
		if !s.requireAdmin(w, r) {
			return
		}
		p, err := s.catalog.GetBySlug(r.Context(), slug)
		if err != nil {
			s.fail(w, err, "error loading product")
			return
		}
		if err := s.catalog.Delete(r.Context(), p.ID); err != nil {
			s.fail(w, err, "error deleting product")
			return
		}
		writeJSON(w, 200, map[string]any{"deleted": true})
	default:
		http.Error(w, "method", 405)
	}
}

func (s *Server) handleAddVariation(w http.ResponseWriter, r *http.Request, slug string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}
	p, err := s.catalog.GetBySlug(r.Context(), slug)
	if err != nil {
		s.fail(w, err, "error loading product")
		return
	}
	var req struct {
		Name     string           `json:"name"`
		Variants []domain.Variant `json:"variants"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, 400, map[string]any{"error": "bad json"})
		return
	}
	va, err := s.stock.AddVariation(r.Context(), p.ID, req.Name, req.Variants)
	if err != nil {
		s.fail(w, err, "error creating variation")
		return
	}
	writeJSON(w, 201, va)
}

func (s *Server) handleVariant(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(strings.TrimPrefix(r.URL.Path, "/api/variants/"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}
	switch r.Method {
	case http.MethodPut:
		var v domain.Variant
		if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
			writeJSON(w, 400, map[string]any{"error": "bad json"})
			return
		}
		existing, err := s.stock.Products.FindVariant(r.Context(), id)
		if err != nil {
			s.fail(w, err, "error loading variant")
			return
		}
		v.ID = id
		v.VariationID = existing.VariationID
		if err := s.stock.UpdateVariant(r.Context(), &v); err != nil {
			s.fail(w, err, "error updating variant")
			return
		}
		writeJSON(w, 200, v)
	case http.MethodDelete:
		if err := s.stock.DeleteVariant(r.Context(), id); err != nil {
			s.fail(w, err, "error deleting variant")
			return
		}
		writeJSON(w, 200, map[string]any{"deleted": true})
	default:
		http.Error(w, "method", 405)
	}
}

func (s *Server) handleVariation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method", 405)
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}
	id, err := uuid.Parse(strings.TrimPrefix(r.URL.Path, "/api/variations/"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := s.stock.DeleteVariation(r.Context(), id); err != nil {
		s.fail(w, err, "error deleting variation")
		return
	}
	writeJSON(w, 200, map[string]any{"deleted": true})
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if !s.requireAdmin(w, r) {
			return
		}
		qv := r.URL.Query()
		page, _ := strconv.Atoi(qv.Get("page"))
		size, _ := strconv.Atoi(qv.Get("page_size"))
		list, total, err := s.orders.Orders.List(r.Context(), page, size)
		if err != nil {
			s.fail(w, err, "error loading orders")
			return
		}
		writeJSON(w, 200, map[string]any{"records": list, "totalCount": total})
	case http.MethodPost:
		email, ok := s.requireAdminEmail(w, r)
		if !ok {
			return
		}
		var req struct {
			ProductID uuid.UUID  `json:"productId"`
			VariantID *uuid.UUID `json:"variantId"`
			Quantity  int        `json:"quantity"`
			UnitPrice *float64   `json:"unitPrice"`
			Country   string     `json:"country"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, 400, map[string]any{"error": "bad json"})
			return
		}
		o := &domain.Order{
			ProductID:  req.ProductID,
			VariantID:  req.VariantID,
			Quantity:   req.Quantity,
			Country:    req.Country,
			AdminEmail: email,
		}
		if req.UnitPrice != nil {
			o.UnitPrice = *req.UnitPrice
		} else if price, err := s.catalogPrice(r, req.ProductID, req.VariantID); err == nil {
			o.UnitPrice = price
		}
		if err := s.orders.Create(r.Context(), o); err != nil {
			s.fail(w, err, "error creating order")
			return
		}
		writeJSON(w, 201, o)
	default:
		http.Error(w, "method", 405)
	}
}

// catalogPrice resolves the snapshot price when the admin does not override it.
func (s *Server) catalogPrice(r *http.Request, productID uuid.UUID, variantID *uuid.UUID) (float64, error) {
	if variantID != nil {
		v, err := s.stock.Products.FindVariant(r.Context(), *variantID)
		if err != nil {
			return 0, err
		}
		if v.Price > 0 {
			return v.Price, nil
		}
	}
	p, err := s.stock.Products.FindByID(r.Context(), productID)
	if err != nil {
		return 0, err
	}
	return p.Price, nil
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	id, err := uuid.Parse(strings.TrimPrefix(r.URL.Path, "/api/orders/"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodPut:
		var req struct {
			Quantity int `json:"quantity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, 400, map[string]any{"error": "bad json"})
			return
		}
		if err := s.orders.UpdateQuantity(r.Context(), id, req.Quantity); err != nil {
			s.fail(w, err, "error updating order")
			return
		}
		writeJSON(w, 200, map[string]any{"updated": true})
	case http.MethodDelete:
		if err := s.orders.Delete(r.Context(), id); err != nil {
			s.fail(w, err, "error deleting order")
			return
		}
		writeJSON(w, 200, map[string]any{"deleted": true})
	default:
		http.Error(w, "method", 405)
	}
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	var in usecase.CheckoutInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, 400, map[string]any{"error": "bad json"})
		return
	}
	o, err := s.orders.Checkout(r.Context(), in)
	if err != nil {
		s.fail(w, err, "error placing order")
		return
	}
	go func() {
		if err := s.notifier.OrderPlaced(o); err != nil {
			log.Error().Err(err).Msg("order notification")
		}
	}()
	writeJSON(w, 201, o)
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(strings.TrimPrefix(r.URL.Path, "/track/"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	o, err := s.orders.Track(r.Context(), id)
	if err != nil {
		s.fail(w, err, "error loading order")
		return
	}
	writeJSON(w, 200, o)
}

func (s *Server) handleImageUpload(w http.ResponseWriter, r *http.Request, slug string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}
	if err := r.ParseMultipartForm(25 << 20); err != nil {
		http.Error(w, "multipart", 400)
		return
	}
	file, hdr, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "image", 400)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "read", 400)
		return
	}
	path := slug + "/" + sanitizeFileName(hdr.Filename)
	if err := s.storage.Save(r.Context(), path, data); err != nil {
		log.Error().Err(err).Msg("image upload")
		writeJSON(w, 500, map[string]any{"error": "error saving image"})
		return
	}
	url := s.storage.PublicURL(path)
	if err := s.catalog.SetImage(r.Context(), slug, url); err != nil {
		s.fail(w, err, "error saving image url")
		return
	}
	writeJSON(w, 201, map[string]any{"url": url})
}

func sanitizeFileName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	out := b.String()
	if out == "" {
		out = "file"
	}
	return out
}

// fail maps domain errors to HTTP statuses; anything unexpected becomes a
// generic message so backend details never leak to clients.
func (s *Server) fail(w http.ResponseWriter, err error, generic string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, 404, map[string]any{"error": "not found"})
	case errors.Is(err, domain.ErrInsufficientStock):
		writeJSON(w, 409, map[string]any{"error": "insufficient stock"})
	case domain.IsValidation(err):
		writeJSON(w, 400, map[string]any{"error": err.Error()})
	default:
		log.Error().Err(err).Msg(generic)
		writeJSON(w, 500, map[string]any{"error": generic})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
