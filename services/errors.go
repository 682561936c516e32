package services

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrCashFenceNotFound - смена не найдена или принадлежит другой организации
	ErrCashFenceNotFound = errors.New("кассовая смена не найдена")
	// ErrCashFenceClosed - смена уже закрыта и не может быть изменена
	ErrCashFenceClosed = errors.New("кассовая смена уже закрыта")
)

// StorageError описывает сбой SQL-запроса при работе с кассовыми сменами
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "ошибка базы данных (" + e.Op + "): " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ValidationError содержит сообщения об ошибках валидации DTO
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// newValidationError переводит ошибки валидатора в понятные сообщения
func newValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return &ValidationError{Messages: []string{err.Error()}}
	}

	var errorMessages []string
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			errorMessages = append(errorMessages, "поле "+e.Field()+" обязательно")
		case "max":
			errorMessages = append(errorMessages, "поле "+e.Field()+" должно содержать максимум "+e.Param()+" символов")
		case "gte":
			errorMessages = append(errorMessages, "поле "+e.Field()+" должно быть больше или равно "+e.Param())
		case "oneof":
			errorMessages = append(errorMessages, "поле "+e.Field()+" должно быть одним из: "+e.Param())
		default:
			errorMessages = append(errorMessages, "поле "+e.Field()+" заполнено неверно")
		}
	}
	return &ValidationError{Messages: errorMessages}
}
