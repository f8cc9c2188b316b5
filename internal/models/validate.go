package models

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/crucial707/inventory/internal/apperr"
	"github.com/go-playground/validator/v10"
)

type enum interface{ Valid() bool }

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		// "enum" accepts any value whose type reports it as part of its closed set.
		if err := v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
			e, ok := fl.Field().Interface().(enum)
			return ok && e.Valid()
		}); err != nil {
			panic("register enum validation: " + err.Error())
		}
		validate = v
	})
	return validate
}

// Validate checks struct tags on v and returns an apperr validation error
// with one message per offending JSON field.
func Validate(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Internal("validate", err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return apperr.Validation("validation failed", fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "enum":
		return "must be one of " + strings.Join(enumValues(fe.Value()), ", ")
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "email":
		return "must be a valid email address"
	case "http_url":
		return "must be an http(s) URL"
	default:
		return "invalid"
	}
}

func enumValues(v any) []string {
	var out []string
	switch v.(type) {
	case EquipmentType:
		for _, e := range EquipmentTypes {
			out = append(out, string(e))
		}
	case AssetStatus:
		for _, e := range AssetStatuses {
			out = append(out, string(e))
		}
	case Location:
		for _, e := range Locations {
			out = append(out, string(e))
		}
	case OrgArea:
		for _, e := range OrgAreas {
			out = append(out, string(e))
		}
	case WorkMode:
		for _, e := range WorkModes {
			out = append(out, string(e))
		}
	case CollaboratorStatus:
		for _, e := range CollaboratorStatuses {
			out = append(out, string(e))
		}
	}
	return out
}
