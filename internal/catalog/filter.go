package catalog

import (
	"net/url"
	"strings"

	pkgerrors "github.com/angelmondragon/autoparts-storefront/pkg/errors"
	"github.com/shopspring/decimal"
)

// PriceRange is an inclusive bound on the undiscounted list price.
type PriceRange struct {
	Low  decimal.Decimal `json:"low"`
	High decimal.Decimal `json:"high"`
}

// Contains reports whether price lies within the range, bounds included.
func (r PriceRange) Contains(price decimal.Decimal) bool {
	return price.GreaterThanOrEqual(r.Low) && price.LessThanOrEqual(r.High)
}

// Vehicle is the make/model/year triple picked in the vehicle selector.
type Vehicle struct {
	Make  string `json:"make,omitempty"`
	Model string `json:"model,omitempty"`
	Year  string `json:"year,omitempty"`
}

// Complete reports whether all three parts are set; only then does it constrain results.
func (v Vehicle) Complete() bool {
	return v.Make != "" && v.Model != "" && v.Year != ""
}

// FilterState is the transient set of browse constraints. A nil PriceRange leaves
// prices unconstrained.
type FilterState struct {
	Search     string      `json:"search,omitempty"`
	Category   string      `json:"category,omitempty"`
	Brands     []string    `json:"brands,omitempty"`
	PriceRange *PriceRange `json:"price_range,omitempty"`
	Vehicle    Vehicle     `json:"vehicle"`
}

// DefaultFilterState matches the browse page before the shopper touches any control.
func DefaultFilterState(priceRange PriceRange) FilterState {
	return FilterState{PriceRange: &priceRange}
}

// ParseFilterState reads browse constraints from query parameters. Absent values leave
// the corresponding constraint open; min_price/max_price override the default range.
// The search term is kept verbatim, surrounding spaces included.
func ParseFilterState(values url.Values, defaults PriceRange) (FilterState, error) {
	state := DefaultFilterState(defaults)
	state.Search = values.Get("search")
	state.Category = strings.TrimSpace(values.Get("category"))
	state.Vehicle = Vehicle{
		Make:  strings.TrimSpace(values.Get("make")),
		Model: strings.TrimSpace(values.Get("model")),
		Year:  strings.TrimSpace(values.Get("year")),
	}
	for _, raw := range values["brand"] {
		for _, brand := range strings.Split(raw, ",") {
			if brand = strings.TrimSpace(brand); brand != "" {
				state.Brands = append(state.Brands, brand)
			}
		}
	}

	low, err := parsePrice(values, "min_price", defaults.Low)
	if err != nil {
		return FilterState{}, err
	}
	high, err := parsePrice(values, "max_price", defaults.High)
	if err != nil {
		return FilterState{}, err
	}
	if low.GreaterThan(high) {
		return FilterState{}, pkgerrors.New(pkgerrors.CodeValidation, "min_price cannot exceed max_price").WithDetails(map[string]any{
			"min_price": low.String(),
			"max_price": high.String(),
		})
	}
	state.PriceRange = &PriceRange{Low: low, High: high}
	return state, nil
}

func parsePrice(values url.Values, key string, fallback decimal.Decimal) (decimal.Decimal, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value.IsNegative() {
		return decimal.Decimal{}, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": 0})
	}
	return value, nil
}

// Filter returns the products satisfying every active constraint, in input order.
func Filter(products []Product, state FilterState) []Product {
	m := newMatcher(state)
	out := []Product{}
	for _, p := range products {
		if m.matches(p) {
			out = append(out, p.clone())
		}
	}
	return out
}

type matcher struct {
	search   string
	category string
	brands   map[string]struct{}
	prices   *PriceRange
	vehicle  Vehicle
}

func newMatcher(state FilterState) matcher {
	m := matcher{
		search:   strings.ToLower(state.Search),
		category: strings.ToLower(state.Category),
		prices:   state.PriceRange,
		vehicle:  state.Vehicle,
	}
	if len(state.Brands) > 0 {
		m.brands = make(map[string]struct{}, len(state.Brands))
		for _, b := range state.Brands {
			m.brands[b] = struct{}{}
		}
	}
	return m
}

func (m matcher) matches(p Product) bool {
	if m.search != "" &&
		!strings.Contains(strings.ToLower(p.Name), m.search) &&
		!strings.Contains(strings.ToLower(p.Description), m.search) {
		return false
	}
	if m.category != "" && strings.ToLower(p.Category) != m.category {
		return false
	}
	if m.vehicle.Complete() && !p.Fits(m.vehicle.Make, m.vehicle.Model) {
		return false
	}
	if m.brands != nil {
		if _, ok := m.brands[p.Brand]; !ok {
			return false
		}
	}
	// List price, not the discounted price shown on the product card.
	if m.prices != nil && !m.prices.Contains(p.Price) {
		return false
	}
	return true
}
