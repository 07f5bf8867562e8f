package domain

// ProductFilter is the declarative input of the paginated catalog listing.
// Empty string fields are ignored; equality fields containing '%' are applied
// as pattern predicates instead.
type ProductFilter struct {
	Category    string
	SubCategory string
	Country     string

	// Query matches case-insensitively as a substring of title or manga.
	Query string

	// MaxPrice <= 0 means no ceiling.
	MaxPrice float64
	// InStock keeps only rows with stock > 0.
	InStock bool

	// Sort: "newest" (default), "price_asc", "price_desc", "title".
	Sort     string
	Page     int
	PageSize int
}

// Normalize clamps paging inputs to sane values.
func (f *ProductFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 12
	}
}

// ProductPage is one page of catalog results plus paging metadata. It is
// derived per request and never persisted.
type ProductPage struct {
	Records     []Product `json:"records"`
	CurrentPage int       `json:"currentPage"`
	TotalPages  int       `json:"totalPages"`
	TotalCount  int64     `json:"totalCount"`
	HasNextPage bool      `json:"hasNextPage"`
	HasPrevPage bool      `json:"hasPrevPage"`
}

// NewProductPage computes paging metadata from a fetched page and the exact
// unranged match count.
func NewProductPage(records []Product, page, pageSize int, total int64) *ProductPage {
	pages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &ProductPage{
		Records:     records,
		CurrentPage: page,
		TotalPages:  pages,
		TotalCount:  total,
		HasNextPage: page < pages,
		HasPrevPage: page > 1,
	}
}
