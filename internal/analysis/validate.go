package analysis

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// validate is shared by record and profile checks; validator.Validate is safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// decimal fields are validated as float64 so numeric tags (gte, lte) apply
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	if err := v.RegisterValidation("not_future_year", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= int64(time.Now().Year())
	}); err != nil {
		panic(fmt.Sprintf("register not_future_year: %v", err))
	}

	// report source column names (col tag) or json names instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if col := fld.Tag.Get("col"); col != "" {
			return col
		}
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// firstViolation returns the first field error from a validator result.
func firstViolation(err error) (validator.FieldError, bool) {
	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		return ves[0], true
	}
	return nil, false
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "gte":
		if fe.Param() == "0" {
			return "must not be negative"
		}
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "not_future_year":
		return "must not be in the future"
	default:
		return "failed " + fe.Tag() + " check"
	}
}
