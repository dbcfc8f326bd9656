package handlers

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
)

func init() {
	// report json/form names instead of Go field names
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	}
}

// bindError turns a gin binding failure into a validation error. Only the
// first failing field is reported.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return httperr.Validation("invalid_request", "Invalid request body.")
	}

	fe := verrs[0]
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return httperr.Validation("missing_"+field, field+" is required.")
	case "oneof":
		return httperr.Validation("invalid_"+field,
			field+" must be one of "+strings.ReplaceAll(fe.Param(), " ", ", ")+".")
	case "max":
		return httperr.Validation(field+"_too_long",
			field+" must be at most "+fe.Param()+" characters.")
	case "uuid":
		return httperr.Validation("invalid_"+field, field+" must be a valid UUID.")
	default:
		return httperr.Validation("invalid_"+field, field+" is invalid.")
	}
}
