package checkout

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	emailPattern      = regexp.MustCompile(`\S+@\S+\.\S+`)
	whitespacePattern = regexp.MustCompile(`\s`)
	cardNumberPattern = regexp.MustCompile(`^\d{16}$`)
	expiryPattern     = regexp.MustCompile(`^\d{2}/\d{2}$`)
	cvvPattern        = regexp.MustCompile(`^\d{3,4}$`)
)

// Form is the shipping and payment information entered at checkout.
type Form struct {
	FirstName  string `json:"first_name" validate:"required"`
	LastName   string `json:"last_name" validate:"required"`
	Email      string `json:"email" validate:"required,loose_email"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	Zip        string `json:"zip" validate:"required"`
	CardName   string `json:"card_name" validate:"required"`
	CardNumber string `json:"card_number" validate:"required,card_number"`
	ExpDate    string `json:"exp_date" validate:"required,card_expiry"`
	CVV        string `json:"cvv" validate:"required,card_cvv"`
}

// FieldErrors maps a form field's JSON name to the message shown beside it.
type FieldErrors map[string]string

type fieldMessages struct {
	required string
	invalid  string
}

var messages = map[string]fieldMessages{
	"first_name":  {required: "First name is required"},
	"last_name":   {required: "Last name is required"},
	"email":       {required: "Email is required", invalid: "Email is invalid"},
	"address":     {required: "Address is required"},
	"city":        {required: "City is required"},
	"state":       {required: "State is required"},
	"zip":         {required: "ZIP code is required"},
	"card_name":   {required: "Name on card is required"},
	"card_number": {required: "Card number is required", invalid: "Card number is invalid"},
	"exp_date":    {required: "Expiration date is required", invalid: "Use MM/YY format"},
	"cvv":         {required: "CVV is required", invalid: "CVV is invalid"},
}

var formValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	mustRegister(v, "loose_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "card_number", func(fl validator.FieldLevel) bool {
		return cardNumberPattern.MatchString(whitespacePattern.ReplaceAllString(fl.Field().String(), ""))
	})
	mustRegister(v, "card_expiry", func(fl validator.FieldLevel) bool {
		return expiryPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "card_cvv", func(fl validator.FieldLevel) bool {
		return cvvPattern.MatchString(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// Validate checks every field and returns one message per failing field.
// An empty result means the form can be submitted.
func Validate(form Form) FieldErrors {
	errs := FieldErrors{}
	err := formValidator.Struct(form)
	if err == nil {
		return errs
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs["form"] = err.Error()
		return errs
	}
	for _, fe := range fieldErrs {
		msg := messages[fe.Field()]
		if fe.Tag() == "required" {
			errs[fe.Field()] = msg.required
			continue
		}
		errs[fe.Field()] = msg.invalid
	}
	return errs
}
