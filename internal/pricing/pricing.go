package pricing

import (
	"fmt"

	"github.com/angelmondragon/autoparts-storefront/pkg/config"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var hundred = decimal.NewFromInt(100)

// Rules are the storefront's tax and shipping policy.
type Rules struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	FlatShipping          decimal.Decimal
}

// DefaultRules mirrors the storefront defaults: 8% tax, free shipping over $50, $7.99 otherwise.
func DefaultRules() Rules {
	return Rules{
		TaxRate:               decimal.RequireFromString("0.08"),
		FreeShippingThreshold: decimal.RequireFromString("50.00"),
		FlatShipping:          decimal.RequireFromString("7.99"),
	}
}

// RulesFromConfig parses the configured decimal strings.
func RulesFromConfig(cfg config.PricingConfig) (Rules, error) {
	var (
		rules Rules
		err   error
	)
	if rules.TaxRate, err = parseAmount("tax rate", cfg.TaxRate); err != nil {
		return Rules{}, err
	}
	if rules.FreeShippingThreshold, err = parseAmount("free shipping threshold", cfg.FreeShippingThreshold); err != nil {
		return Rules{}, err
	}
	if rules.FlatShipping, err = parseAmount("flat shipping", cfg.FlatShipping); err != nil {
		return Rules{}, err
	}
	return rules, nil
}

func parseAmount(name, raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse %s %q: %w", name, raw, err)
	}
	if value.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%s cannot be negative", name)
	}
	return value, nil
}

// Item is one priced cart line.
type Item struct {
	Price    decimal.Decimal
	Discount int
	Quantity int
}

// Summary is the order breakdown shown on the cart and checkout pages.
type Summary struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  decimal.Decimal `json:"shipping"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// LineTotal is price less the percentage discount, times quantity.
func LineTotal(price decimal.Decimal, discount, qty int) decimal.Decimal {
	unit := price
	if discount > 0 {
		unit = price.Mul(hundred.Sub(decimal.NewFromInt(int64(discount)))).Div(hundred)
	}
	return unit.Mul(decimal.NewFromInt(int64(qty)))
}

// Calculate totals items under rules. Shipping is free only when the subtotal is strictly
// above the threshold, and tax applies to the subtotal alone.
func Calculate(items []Item, rules Rules) Summary {
	var s Summary
	s.Subtotal = decimal.Zero
	for _, it := range items {
		s.Subtotal = s.Subtotal.Add(LineTotal(it.Price, it.Discount, it.Quantity))
		s.ItemCount += it.Quantity
	}
	if s.Subtotal.GreaterThan(rules.FreeShippingThreshold) {
		s.Shipping = decimal.Zero
	} else {
		s.Shipping = rules.FlatShipping
	}
	s.Tax = s.Subtotal.Mul(rules.TaxRate)
	s.Total = s.Subtotal.Add(s.Shipping).Add(s.Tax)
	return s
}

// Display is Summary rendered for a shopper.
type Display struct {
	Subtotal string `json:"subtotal"`
	Shipping string `json:"shipping"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

// Display formats every amount in s.
func (s Summary) Display() Display {
	shipping := Format(s.Shipping)
	if s.Shipping.IsZero() {
		shipping = "Free"
	}
	return Display{
		Subtotal: Format(s.Subtotal),
		Shipping: shipping,
		Tax:      Format(s.Tax),
		Total:    Format(s.Total),
	}
}

var printer = message.NewPrinter(language.AmericanEnglish)

// Format renders amount as US dollars rounded to cents, e.g. $1,234.50.
func Format(amount decimal.Decimal) string {
	cents := amount.Round(2).Shift(2).IntPart()
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%s.%02d", sign, printer.Sprintf("%d", cents/100), cents%100)
}
