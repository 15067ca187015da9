// Package validation wraps go-playground/validator with a shared instance and
// readable error messages for request bodies and configuration.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"cinemuse/models"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is one failed rule.
type FieldError struct {
	Field string
	Tag   string
	Param string
}

func (e FieldError) Error() string {
	switch e.Tag {
	case "required":
		return fmt.Sprintf("%s is required", e.Field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", e.Field, e.Param)
	case "language":
		return fmt.Sprintf("%s must be a supported language (zh, en)", e.Field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", e.Field)
	}
	if e.Param != "" {
		return fmt.Sprintf("%s failed %s=%s", e.Field, e.Tag, e.Param)
	}
	return fmt.Sprintf("%s failed %s", e.Field, e.Tag)
}

// Errors collects every failed rule of one struct.
type Errors []FieldError

func (ve Errors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(ve))
	for i, fe := range ve {
		msgs[i] = fe.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validator returns the shared instance.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("language", func(fl validator.FieldLevel) bool {
			_, err := models.ParseLanguage(fl.Field().String())
			return err == nil
		})
	})
	return validate
}

// Struct validates s. It returns nil or an Errors value.
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fieldPath(fe.Namespace()), Tag: fe.Tag(), Param: fe.Param()})
	}
	return out
}

// fieldPath drops the root struct name: "Config.Gemini.Model" -> "Gemini.Model".
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
