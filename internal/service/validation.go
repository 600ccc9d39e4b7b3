package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shenikar/crisis_connect/internal/models"
)

// newValidator - имена полей в ошибках берутся из json-тегов
func newValidator() *validator.Validate {
	v := validator.New()
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

// validateInput превращает ошибки validator в ValidationError со всеми полями сразу
func validateInput(v *validator.Validate, input any) error {
	err := v.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("service: could not validate input: %w", err)
	}
	out := &models.ValidationError{}
	for _, fe := range verrs {
		out.Add(fieldPath(fe), fe.Tag(), fieldMessage(fe))
	}
	return out
}

// fieldPath отбрасывает имя корневой структуры: IncidentInput.latitude -> latitude
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "latitude":
		return fmt.Sprintf("%s must be within [-90, 90]", fe.Field())
	case "longitude":
		return fmt.Sprintf("%s must be within [-180, 180]", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}

// mergeValidation объединяет ошибки валидации из разных источников
func mergeValidation(errs ...error) error {
	out := &models.ValidationError{}
	for _, err := range errs {
		if err == nil {
			continue
		}
		var verr *models.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		out.Fields = append(out.Fields, verr.Fields...)
	}
	return out.OrNil()
}
