package contract

import "errors"

var (
	ErrValidation      = errors.New("validation failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrLLMUnavailable  = errors.New("language model unavailable")
	ErrUnavailable     = errors.New("service unavailable")
	ErrTimeout         = errors.New("operation timed out")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrNotFound        = errors.New("not found")
)
