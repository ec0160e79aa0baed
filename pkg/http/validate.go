package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their wire name
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// rule renders one validator tag as a message and the params clients may
// use to build their own.
type rule struct {
	format string
	param  string
}

var rules = map[string]rule{
	"required": {format: "%s is required"},
	"min":      {format: "%s must be at least %s", param: "min"},
	"gte":      {format: "%s must be at least %s", param: "min"},
	"max":      {format: "%s must be at most %s", param: "max"},
	"lte":      {format: "%s must be at most %s", param: "max"},
	"gt":       {format: "%s must be greater than %s", param: "value"},
	"lt":       {format: "%s must be less than %s", param: "value"},
	"oneof":    {format: "%s must be one of: %s", param: "options"},
}

// ReadAndValidateRequest binds query and body into req, fills struct tag
// defaults for fields the client left out, then validates. Returns nil or
// a []ValidationError.
func ReadAndValidateRequest(c echo.Context, req interface{}) interface{} {
	if err := c.Bind(req); err != nil {
		return toValidationErrors(err)
	}
	if err := defaults.Set(req); err != nil {
		return toValidationErrors(err)
	}
	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		return toValidationErrors(err)
	}
	return nil
}

func toValidationErrors(err error) []ValidationError {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		out := make([]ValidationError, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			out = append(out, fieldError(fe))
		}
		return out
	}

	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg = fmt.Sprint(he.Message)
	}
	return []ValidationError{{Code: "ERR_BIND", Message: msg}}
}

func fieldError(fe validator.FieldError) ValidationError {
	ve := ValidationError{
		Code:  "ERR_" + strings.ToUpper(fe.Tag()),
		Field: fe.Field(),
	}

	r, ok := rules[fe.Tag()]
	if !ok {
		ve.Message = fmt.Sprintf("%s failed validation: %s", fe.Field(), fe.Tag())
		return ve
	}

	if fe.Tag() == "oneof" {
		options := strings.Fields(fe.Param())
		ve.Message = fmt.Sprintf(r.format, fe.Field(), strings.Join(options, ", "))
		ve.Params = map[string]interface{}{r.param: options}
		return ve
	}

	if r.param == "" {
		ve.Message = fmt.Sprintf(r.format, fe.Field())
		return ve
	}
	ve.Message = fmt.Sprintf(r.format, fe.Field(), fe.Param())
	ve.Params = map[string]interface{}{r.param: fe.Param()}
	return ve
}
