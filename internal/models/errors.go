package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrForbidden - роль или владение не позволяют операцию; существование сущности не раскрывается
	ErrForbidden = errors.New("access denied")
	// ErrNotFound - ссылка на сущность не разрешается
	ErrNotFound = errors.New("not found")
	// ErrInvalidState - переход недопустим из текущего состояния
	ErrInvalidState = errors.New("invalid state transition")
	// ErrConflict - конкурентный переход выиграл гонку
	ErrConflict = errors.New("state conflict")
)

// FieldError - одно нарушенное поле входных данных
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError всегда содержит полный список нарушений, а не только первое
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}

// Add добавляет нарушение
func (e *ValidationError) Add(field, rule, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Rule: rule, Message: message})
}

// OrNil возвращает nil, если нарушений нет
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// NotificationError - сбой побочного канала уведомлений. Только логируется.
type NotificationError struct {
	Channel string
	Err     error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notification via %s failed: %v", e.Channel, e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }
