package game

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Decode unmarshals raw into dst and checks its `validate` tags. An empty or
// null payload decodes as an empty object so required fields are reported.
func Decode(raw json.RawMessage, dst any) error {
	body := bytes.TrimSpace(raw)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		body = []byte("{}")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("1 validation error for %s: %v", typeName(dst), err)
	}
	return Validate(dst)
}

// Validate checks the `validate` tags of v and formats failures by json field name.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	noun := "validation error"
	if len(verrs) > 1 {
		noun = "validation errors"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, describe(fe))
	}
	return fmt.Errorf("%d %s for %s: %s", len(verrs), noun, typeName(v), strings.Join(parts, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: field required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s: must be one of [%s], got %v", fe.Field(), fe.Param(), fe.Value())
	case "min", "gte":
		return fmt.Sprintf("%s: must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s: must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s: failed %q check", fe.Field(), fe.Tag())
	}
}

func typeName(v any) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "payload"
	}
	return t.Name()
}
