// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package validation checks decoded request payloads with validator/v10 and
// reports failures as apperr validation errors keyed by JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"foodgram/internal/apperr"
	"foodgram/internal/models"
)

// usernamePattern is the character set allowed in usernames: Unicode
// letters and digits plus _ . @ + -.
var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

// Validator wraps go-playground/validator with apperr conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the json tag name func and the custom
// "username" rule registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// Registration only fails for an empty tag or a nil func.
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return usernamePattern.MatchString(s) && s != models.ReservedUsername
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns an apperr validation error
// listing every failing field.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return formatError(err)
	}
	return nil
}

func formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = friendlyMessage(e)
	}
	return apperr.Validation("validation failed", fieldErrors)
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "Обязательное поле."
	case "email":
		return "Введите правильный адрес электронной почты."
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("Убедитесь, что это значение содержит не более %s символов.", e.Param())
		}
		return fmt.Sprintf("Убедитесь, что это значение меньше либо равно %s.", e.Param())
	case "min", "gte":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("Убедитесь, что это значение содержит не менее %s символов.", e.Param())
		}
		return fmt.Sprintf("Убедитесь, что это значение больше либо равно %s.", e.Param())
	case "username":
		return fmt.Sprintf("Введите правильное имя пользователя. Имя %q зарезервировано; "+
			"допустимы буквы, цифры и символы @/./+/-/_.", models.ReservedUsername)
	case "oneof":
		return fmt.Sprintf("Выберите один из вариантов: %s.", e.Param())
	default:
		return "Некорректное значение."
	}
}
