package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator bundles struct validation with the business rule validator.
type Validator struct {
	validate *validator.Validate
	business *BusinessValidator
}

func New() *Validator {
	bv := NewBusinessValidator()
	return &Validator{
		validate: bv.validate,
		business: bv,
	}
}

// Validate runs tag based validation and returns nil when s is valid.
func (v *Validator) Validate(s interface{}) error {
	if errs := v.business.Validate(s); len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}

// jsonFieldName reports json names in field errors so clients see their own keys.
func jsonFieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}
