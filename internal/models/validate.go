package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/CyberwizD/push-relay/internal/apperror"
)

// Validate runs the binding rules declared on v and reports the first
// violation as a validation error naming the JSON field.
func Validate(v interface{}) error {
	err := binding.Validator.ValidateStruct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.Validation(err.Error())
	}
	return fieldError(v, verrs[0])
}

func fieldError(v interface{}, fe validator.FieldError) error {
	field, index := splitIndex(fe.StructField())
	name := jsonName(v, field) + index

	switch fe.Tag() {
	case "required":
		if index != "" {
			return apperror.Validation(name + " must be a non-empty string")
		}
		return apperror.MissingField(name)
	case "min":
		if fe.Kind() == reflect.Slice {
			return apperror.Validation(name + " must be a non-empty array")
		}
		if fe.Param() == "0" {
			return apperror.Validation(name + " must not be negative")
		}
		return apperror.Validation(fmt.Sprintf("%s must be at least %s", name, fe.Param()))
	case "oneof":
		return apperror.Validation(fmt.Sprintf("%s must be one of: %s", name, strings.ReplaceAll(fe.Param(), " ", ", ")))
	default:
		return apperror.Validation(fmt.Sprintf("%s failed %s validation", name, fe.Tag()))
	}
}

// splitIndex separates "Tokens[1]" into "Tokens" and "[1]".
func splitIndex(field string) (string, string) {
	if i := strings.IndexByte(field, '['); i >= 0 {
		return field[:i], field[i:]
	}
	return field, ""
}

func jsonName(v interface{}, field string) string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return field
	}
	sf, ok := t.FieldByName(field)
	if !ok {
		return field
	}
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return field
	}
	return name
}
