package chi

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kailas-cloud/shopsense/internal/domain/product"
	"github.com/kailas-cloud/shopsense/internal/domain/query"
)

type queryRequest struct {
	Query string `json:"query" validate:"required,max=500"`
}

type fetchProductsRequest struct {
	StructuredQuery *query.StructuredQuery `json:"structuredQuery" validate:"required"`
}

type structureReviewsRequest struct {
	Product *product.Candidate `json:"product" validate:"required"`
}

type summarizeRequest struct {
	StructuredQuery *query.StructuredQuery `json:"structuredQuery" validate:"required"`
	Products        []product.Candidate    `json:"products" validate:"required,min=1"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report wire names in messages.
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// validateRequest returns a client-facing message for the first failed rule.
func validateRequest(req any) error {
	err := getValidator().Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate request: %w", err)
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", fe.Field())
	case "min":
		return fmt.Errorf("%s must contain at least %s item(s)", fe.Field(), fe.Param())
	case "max":
		return fmt.Errorf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Errorf("%s is invalid", fe.Field())
	}
}
