package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names so clients can match errors to their payload
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks s against its `validate` struct tags.
func Validate(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return fmt.Errorf("validating request: %w", err)
	}

	fields := make([]FieldError, 0, len(vErrs))
	names := make([]string, 0, len(vErrs))
	for _, fe := range vErrs {
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		fields = append(fields, FieldError{Field: fe.Field(), Error: msg})
		names = append(names, fe.Field())
	}
	return NewValidationError("invalid fields: "+strings.Join(names, ", "), fields...)
}

// DecodeJSON decodes the request body into dst, rejecting unknown fields, and
// validates the result.
func DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return NewValidationError("request body is empty")
		}
		return NewValidationError("invalid request payload: " + err.Error())
	}
	return Validate(dst)
}
