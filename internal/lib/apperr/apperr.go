// Package apperr содержит общие ошибки приложения, по которым
// HTTP-слой выбирает код ответа.
package apperr

import "errors"

var (
	// ErrNotFound - запрошенная сущность отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrValidation - входные данные не прошли проверку.
	ErrValidation = errors.New("validation failed")
	// ErrExternalService - внешний сервис недоступен или ответил ошибкой.
	ErrExternalService = errors.New("external service failure")
)
