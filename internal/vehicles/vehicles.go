package vehicles

import (
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/autoparts-storefront/pkg/errors"
)

// YearSpan is how many model years the selector offers, counting back from the current year.
const YearSpan = 30

var makes = []string{"Toyota", "Honda", "Ford", "Chevrolet", "BMW", "Mercedes-Benz", "Audi", "Nissan"}

var modelsByMake = map[string][]string{
	"Toyota":        {"Camry", "Corolla", "RAV4", "Highlander", "Tacoma"},
	"Honda":         {"Civic", "Accord", "CR-V", "Pilot", "Odyssey"},
	"Ford":          {"F-150", "Mustang", "Explorer", "Escape", "Focus"},
	"Chevrolet":     {"Silverado", "Camaro", "Equinox", "Tahoe", "Malibu"},
	"BMW":           {"3 Series", "5 Series", "X3", "X5", "7 Series"},
	"Mercedes-Benz": {"C-Class", "E-Class", "GLC", "GLE", "S-Class"},
	"Audi":          {"A4", "A6", "Q5", "Q7", "A8"},
	"Nissan":        {"Altima", "Rogue", "Sentra", "Pathfinder", "Murano"},
}

// Selection is a shopper's make/model/year choice.
type Selection struct {
	Make  string `json:"make" validate:"required"`
	Model string `json:"model" validate:"required"`
	Year  string `json:"year" validate:"required"`
}

// Makes lists supported makes in selector order.
func Makes() []string {
	return append([]string(nil), makes...)
}

// Models lists the models offered for make. Unknown makes yield NOT_FOUND.
func Models(vehicleMake string) ([]string, error) {
	canonical, ok := canonicalMake(vehicleMake)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle make not found").WithDetails(map[string]any{"make": vehicleMake})
	}
	return append([]string(nil), modelsByMake[canonical]...), nil
}

// Years returns the selectable model years, newest first.
func Years(now time.Time) []string {
	current := now.Year()
	out := make([]string, 0, YearSpan)
	for i := 0; i < YearSpan; i++ {
		out = append(out, strconv.Itoa(current-i))
	}
	return out
}

// Validate checks sel against the selector tables and returns it with canonical casing.
func Validate(sel Selection, now time.Time) (Selection, error) {
	details := map[string]string{}
	canonical, ok := canonicalMake(strings.TrimSpace(sel.Make))
	if !ok {
		details["make"] = "unknown make"
	}

	model := strings.TrimSpace(sel.Model)
	if ok {
		found := false
		for _, candidate := range modelsByMake[canonical] {
			if strings.EqualFold(candidate, model) {
				model = candidate
				found = true
				break
			}
		}
		if !found {
			details["model"] = "model does not belong to make"
		}
	}

	year := strings.TrimSpace(sel.Year)
	if !validYear(year, now) {
		details["year"] = "year outside selectable range"
	}

	if len(details) > 0 {
		return Selection{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid vehicle selection").WithDetails(details)
	}
	return Selection{Make: canonical, Model: model, Year: year}, nil
}

func canonicalMake(value string) (string, bool) {
	for _, candidate := range makes {
		if strings.EqualFold(candidate, value) {
			return candidate, true
		}
	}
	return "", false
}

func validYear(value string, now time.Time) bool {
	year, err := strconv.Atoi(value)
	if err != nil {
		return false
	}
	current := now.Year()
	return year <= current && year > current-YearSpan
}
