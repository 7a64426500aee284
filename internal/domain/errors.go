package domain

import "errors"

// Общие доменные ошибки
var (
	ErrSellerNotFound  = notFoundError("seller not found")
	ErrStoreNotFound   = notFoundError("store not found")
	ErrProductNotFound = notFoundError("product not found")
	ErrOrderNotFound   = notFoundError("order not found")
	ErrDuplicateSlug   = duplicateError("store slug already exists")
)

type notFoundError string

func (e notFoundError) Error() string { return string(e) }

type duplicateError string

func (e duplicateError) Error() string { return string(e) }

type validationError string

func (e validationError) Error() string { return string(e) }

// Validation — ошибка некорректного ввода с понятным пользователю текстом.
func Validation(msg string) error { return validationError(msg) }

// Duplicate — нарушение ограничения уникальности в хранилище.
func Duplicate(msg string) error { return duplicateError(msg) }

type storageError struct{ cause error }

func (e storageError) Error() string { return "storage unavailable: " + e.cause.Error() }
func (e storageError) Unwrap() error { return e.cause }

// StorageFailure помечает err как недоступность хранилища.
func StorageFailure(err error) error {
	if err == nil {
		return nil
	}
	return storageError{cause: err}
}

type gatewayError struct{ cause error }

func (e gatewayError) Error() string { return "payment gateway failure: " + e.cause.Error() }
func (e gatewayError) Unwrap() error { return e.cause }

// GatewayFailure помечает err как сбой платёжного шлюза
// (таймаут или транспорт — не явный отказ).
func GatewayFailure(err error) error {
	if err == nil {
		return nil
	}
	return gatewayError{cause: err}
}

func IsNotFound(err error) bool {
	var t notFoundError
	return errors.As(err, &t)
}

func IsDuplicate(err error) bool {
	var t duplicateError
	return errors.As(err, &t)
}

func IsValidation(err error) bool {
	var t validationError
	return errors.As(err, &t)
}

func IsStorageFailure(err error) bool {
	var t storageError
	return errors.As(err, &t)
}

func IsGatewayFailure(err error) bool {
	var t gatewayError
	return errors.As(err, &t)
}
