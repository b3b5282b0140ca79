package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Product is an immutable catalog entry.
type Product struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Discount      int             `json:"discount"`
	Image         string          `json:"image"`
	Category      string          `json:"category"`
	Brand         string          `json:"brand"`
	Rating        float64         `json:"rating"`
	ReviewCount   int             `json:"reviewCount"`
	InStock       bool            `json:"inStock"`
	FreeShipping  bool            `json:"freeShipping"`
	Compatibility []string        `json:"compatibility,omitempty"`
}

// DiscountedPrice applies the percentage discount to the list price.
func (p Product) DiscountedPrice() decimal.Decimal {
	if p.Discount <= 0 {
		return p.Price
	}
	factor := hundred.Sub(decimal.NewFromInt(int64(p.Discount))).Div(hundred)
	return p.Price.Mul(factor)
}

// PartNumber renders the manufacturer-style part number shown on the detail page.
func (p Product) PartNumber() string {
	brand := []rune(strings.ToUpper(p.Brand))
	if len(brand) > 3 {
		brand = brand[:3]
	}
	return fmt.Sprintf("PN-%d-%s", p.ID, string(brand))
}

// Fits reports whether any compatibility entry mentions both make and model.
func (p Product) Fits(vehicleMake, vehicleModel string) bool {
	if len(p.Compatibility) == 0 {
		return false
	}
	mk := strings.ToLower(vehicleMake)
	md := strings.ToLower(vehicleModel)
	for _, entry := range p.Compatibility {
		lower := strings.ToLower(entry)
		if strings.Contains(lower, mk) && strings.Contains(lower, md) {
			return true
		}
	}
	return false
}

func (p Product) validate() error {
	if p.ID <= 0 {
		return fmt.Errorf("product id must be positive, got %d", p.ID)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product %d: name is required", p.ID)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("product %d: price cannot be negative", p.ID)
	}
	if p.Discount < 0 || p.Discount > 100 {
		return fmt.Errorf("product %d: discount %d outside 0-100", p.ID, p.Discount)
	}
	if p.Rating < 0 || p.Rating > 5 {
		return fmt.Errorf("product %d: rating %.1f outside 0-5", p.ID, p.Rating)
	}
	return nil
}

func (p Product) clone() Product {
	if p.Compatibility != nil {
		p.Compatibility = append([]string(nil), p.Compatibility...)
	}
	return p
}
