package catalog

import (
	"net/url"
	"testing"

	pkgerrors "github.com/angelmondragon/autoparts-storefront/pkg/errors"
	"github.com/shopspring/decimal"
)

func testProducts() []Product {
	return []Product{
		{ID: 1, Name: "Spark Plug", Description: "Iridium plug", Category: "engine-parts", Brand: "Bosch", Price: decimal.NewFromInt(30)},
		{ID: 2, Name: "Brake Pad Set", Description: "Ceramic pads", Category: "brakes", Brand: "Moog", Price: decimal.NewFromInt(80),
			Compatibility: []string{"Toyota Camry 2018-2023", "Honda Civic 2016-2021"}},
	}
}

func defaultRange() PriceRange {
	return PriceRange{Low: decimal.Zero, High: decimal.NewFromInt(500)}
}

func ids(products []Product) []int {
	out := make([]int, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func assertIDs(t *testing.T, got []Product, want ...int) {
	t.Helper()
	gotIDs := ids(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("expected ids %v, got %v", want, gotIDs)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("expected ids %v, got %v", want, gotIDs)
		}
	}
}

func TestFilterByCategory(t *testing.T) {
	t.Parallel()

	state := DefaultFilterState(defaultRange())
	state.Category = "ENGINE-PARTS"
	assertIDs(t, Filter(testProducts(), state), 1)
}

func TestFilterByPriceRange(t *testing.T) {
	t.Parallel()

	state := FilterState{PriceRange: &PriceRange{Low: decimal.Zero, High: decimal.NewFromInt(50)}}
	assertIDs(t, Filter(testProducts(), state), 1)

	inclusive := FilterState{PriceRange: &PriceRange{Low: decimal.NewFromInt(30), High: decimal.NewFromInt(80)}}
	assertIDs(t, Filter(testProducts(), inclusive), 1, 2)
}

func TestFilterPriceUsesListPrice(t *testing.T) {
	t.Parallel()

	discounted := []Product{{ID: 7, Name: "Strut", Price: decimal.NewFromInt(60), Discount: 50}}
	state := FilterState{PriceRange: &PriceRange{Low: decimal.Zero, High: decimal.NewFromInt(50)}}
	if got := Filter(discounted, state); len(got) != 0 {
		t.Fatalf("expected list price 60 to fall outside [0,50] despite discount, got %v", ids(got))
	}
}

func TestFilterByBrand(t *testing.T) {
	t.Parallel()

	state := DefaultFilterState(defaultRange())
	state.Brands = []string{"Moog"}
	assertIDs(t, Filter(testProducts(), state), 2)

	state.Brands = nil
	assertIDs(t, Filter(testProducts(), state), 1, 2)
}

func TestFilterSearchIsCaseInsensitiveSubstring(t *testing.T) {
	t.Parallel()

	state := FilterState{Search: "brake"}
	assertIDs(t, Filter(testProducts(), state), 2)

	state.Search = "IRIDIUM"
	assertIDs(t, Filter(testProducts(), state), 1)
}

func TestParseFilterStateKeepsSearchVerbatim(t *testing.T) {
	t.Parallel()

	state, err := ParseFilterState(url.Values{"search": {" brake"}}, defaultRange())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Search != " brake" {
		t.Fatalf("expected untrimmed search, got %q", state.Search)
	}
	// "Brake Pad Set" starts with the word, so the leading space rules it out.
	assertIDs(t, Filter(testProducts(), state))

	state.Search = " pad"
	assertIDs(t, Filter(testProducts(), state), 2)
}

func TestFilterVehicleRequiresFullSelection(t *testing.T) {
	t.Parallel()

	partial := FilterState{Vehicle: Vehicle{Make: "toyota", Model: "camry"}}
	assertIDs(t, Filter(testProducts(), partial), 1, 2)

	full := FilterState{Vehicle: Vehicle{Make: "toyota", Model: "camry", Year: "2020"}}
	assertIDs(t, Filter(testProducts(), full), 2)

	mismatched := FilterState{Vehicle: Vehicle{Make: "Toyota", Model: "Civic", Year: "2020"}}
	assertIDs(t, Filter(testProducts(), mismatched))
}

func TestFilterComposesConjunctively(t *testing.T) {
	t.Parallel()

	state := DefaultFilterState(defaultRange())
	state.Category = "brakes"
	state.Brands = []string{"Bosch", "Moog"}
	state.Search = "pad"
	assertIDs(t, Filter(testProducts(), state), 2)

	state.PriceRange = &PriceRange{Low: decimal.Zero, High: decimal.NewFromInt(50)}
	assertIDs(t, Filter(testProducts(), state))
}

func TestFilterPreservesOrderAndDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	products := testProducts()
	got := Filter(products, FilterState{})
	assertIDs(t, got, 1, 2)

	got[1].Compatibility[0] = "changed"
	if products[1].Compatibility[0] != "Toyota Camry 2018-2023" {
		t.Fatalf("filter result shares compatibility slice with input")
	}
}

func TestParseFilterState(t *testing.T) {
	t.Parallel()

	values := url.Values{}
	values.Set("category", " brakes ")
	values.Set("search", "pad")
	values.Set("make", "Toyota")
	values.Set("model", "Camry")
	values.Set("year", "2020")
	values.Add("brand", "Bosch,Moog")
	values.Add("brand", "NGK")
	values.Set("max_price", "99.50")

	state, err := ParseFilterState(values, defaultRange())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Category != "brakes" || state.Search != "pad" {
		t.Fatalf("unexpected state %+v", state)
	}
	if !state.Vehicle.Complete() {
		t.Fatalf("expected complete vehicle, got %+v", state.Vehicle)
	}
	if len(state.Brands) != 3 {
		t.Fatalf("expected 3 brands, got %v", state.Brands)
	}
	if !state.PriceRange.Low.IsZero() || !state.PriceRange.High.Equal(decimal.RequireFromString("99.50")) {
		t.Fatalf("unexpected price range %+v", state.PriceRange)
	}
}

func TestParseFilterStateDefaultsAndErrors(t *testing.T) {
	t.Parallel()

	state, err := ParseFilterState(url.Values{}, defaultRange())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.PriceRange == nil || !state.PriceRange.High.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected default range, got %+v", state.PriceRange)
	}

	cases := []url.Values{
		{"min_price": {"cheap"}},
		{"max_price": {"-1"}},
		{"min_price": {"100"}, "max_price": {"10"}},
	}
	for _, values := range cases {
		_, err := ParseFilterState(values, defaultRange())
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error for %v, got %v", values, err)
		}
	}
}
