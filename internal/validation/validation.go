// Package validation holds the struct-tag rules shared by the API server
// and the client stores.
package validation

import (
	"reflect"
	"slices"

	"github.com/go-playground/validator/v10"
)

// Conditions accepted for a listing.
var Conditions = []string{"New", "Like New", "Good", "Fair", "Poor"}

// Statuses a listing can be in.
var Statuses = []string{"Active", "Sold", "Reserved"}

// Categories offered when creating a listing. Category itself is free-form.
var Categories = []string{
	"Books",
	"Electronics",
	"Clothing",
	"Home & Decor",
	"Sports & Fitness",
	"Stationery",
	"Cosmetics",
	"Furniture",
	"Other",
}

// New returns a validator with the product_condition and product_status
// rules registered.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("product_condition", oneOf(Conditions))
	_ = v.RegisterValidation("product_status", oneOf(Statuses))
	return v
}

// IsCondition reports whether s is an accepted condition.
func IsCondition(s string) bool { return slices.Contains(Conditions, s) }

// IsStatus reports whether s is a listing status.
func IsStatus(s string) bool { return slices.Contains(Statuses, s) }

func oneOf(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		f := fl.Field()
		if f.Kind() != reflect.String {
			return false
		}
		return slices.Contains(allowed, f.String())
	}
}
