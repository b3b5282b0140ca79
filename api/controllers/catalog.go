package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/autoparts-storefront/api/responses"
	"github.com/angelmondragon/autoparts-storefront/api/validators"
	"github.com/angelmondragon/autoparts-storefront/internal/catalog"
	"github.com/angelmondragon/autoparts-storefront/pkg/logger"
)

const maxSearchLen = 100

type productView struct {
	catalog.Product
	DiscountedPrice decimal.Decimal `json:"discounted_price"`
	PartNumber      string          `json:"part_number"`
}

func newProductView(p catalog.Product) productView {
	return productView{
		Product:         p,
		DiscountedPrice: p.DiscountedPrice().Round(2),
		PartNumber:      p.PartNumber(),
	}
}

func newProductViews(products []catalog.Product) []productView {
	views := make([]productView, len(products))
	for i, p := range products {
		views[i] = newProductView(p)
	}
	return views
}

type productListResponse struct {
	Products []productView       `json:"products"`
	Count    int                 `json:"count"`
	Filters  catalog.FilterState `json:"filters"`
}

// ListProducts applies the browse filters from the query string to the catalog.
func ListProducts(cat *catalog.Catalog, defaults catalog.PriceRange, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := catalog.ParseFilterState(r.URL.Query(), defaults)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		state.Search = validators.Truncate(state.Search, maxSearchLen)

		products := cat.Filter(state)
		responses.WriteSuccess(w, productListResponse{
			Products: newProductViews(products),
			Count:    len(products),
			Filters:  state,
		})
	}
}

// FeaturedProducts returns the head of the catalog for the home page.
func FeaturedProducts(cat *catalog.Catalog, defaultCount int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", defaultCount, 1, 50)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newProductViews(cat.Featured(limit)))
	}
}

type productDetailResponse struct {
	Product productView   `json:"product"`
	Related []productView `json:"related"`
}

// GetProduct returns one product with same-category suggestions.
func GetProduct(cat *catalog.Catalog, relatedCount int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := cat.Get(id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, productDetailResponse{
			Product: newProductView(product),
			Related: newProductViews(cat.Related(product, relatedCount)),
		})
	}
}

func ListBrands(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, cat.Brands())
	}
}

func ListCategories(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, cat.Categories())
	}
}
