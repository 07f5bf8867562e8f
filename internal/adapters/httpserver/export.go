package httpserver

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/nipponhub/storefront/internal/domain"
)

// handleAdminExport streams the whole catalog as an XLSX workbook, one row
// per variant (or per product when no variants exist).
func (s *Server) handleAdminExport(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	f := excelize.NewFile()
	sheet := "Products"
	f.SetSheetName("Sheet1", sheet)
	headers := []any{"slug", "title", "category", "sub_category", "manga", "price", "on_sale", "discount_pct", "stock", "variation", "variant", "variant_price", "variant_stock"}
	_ = f.SetSheetRow(sheet, "A1", &headers)

	row := 2
	page := 1
	for {
		list, total, err := s.catalog.Products.List(r.Context(), domain.ProductFilter{Page: page, PageSize: 200})
		if err != nil {
			// headers may already be out; ship what we have, but leave a trace
			log.Error().Err(err).Int("page", page).Msg("catalog export scan aborted")
			break
		}
		if len(list) == 0 {
			break
		}
		for _, p := range list {
			wrote := false
			for _, va := range p.Variations {
				for _, v := range va.Variants {
					cells := []any{p.Slug, p.Title, p.Category, p.SubCategory, p.Manga, p.Price, p.OnSale, p.DiscountPct, p.Stock, va.Name, v.Name, v.Price, v.Stock}
					_ = f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &cells)
					row++
					wrote = true
				}
			}
			if !wrote {
				cells := []any{p.Slug, p.Title, p.Category, p.SubCategory, p.Manga, p.Price, p.OnSale, p.DiscountPct, p.Stock, "", "", "", ""}
				_ = f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &cells)
				row++
			}
		}
		if page*200 >= int(total) {
			break
		}
		page++
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=catalog.xlsx")
	if err := f.Write(w); err != nil {
		log.Error().Err(err).Msg("catalog export")
	}
}
