package cart

import (
	"github.com/angelmondragon/autoparts-storefront/internal/catalog"
	"github.com/angelmondragon/autoparts-storefront/internal/pricing"
	"github.com/shopspring/decimal"
)

// Line is a product in the cart with its quantity. Product fields are flattened
// into the stored JSON alongside quantity.
type Line struct {
	catalog.Product
	Quantity int `json:"quantity"`
}

// Total is the discounted line amount.
func (l Line) Total() decimal.Decimal {
	return pricing.LineTotal(l.Price, l.Discount, l.Quantity)
}

// Items adapts lines for the pricing calculator.
func Items(lines []Line) []pricing.Item {
	items := make([]pricing.Item, len(lines))
	for i, l := range lines {
		items[i] = pricing.Item{Price: l.Price, Discount: l.Discount, Quantity: l.Quantity}
	}
	return items
}

// Summarize prices lines under rules.
func Summarize(lines []Line, rules pricing.Rules) pricing.Summary {
	return pricing.Calculate(Items(lines), rules)
}

func cloneLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	for i, l := range lines {
		out[i] = Line{Product: l.Product, Quantity: l.Quantity}
		if l.Compatibility != nil {
			out[i].Compatibility = append([]string(nil), l.Compatibility...)
		}
	}
	return out
}

func indexOf(lines []Line, productID int) int {
	for i, l := range lines {
		if l.ID == productID {
			return i
		}
	}
	return -1
}
