package contract

import "errors"

var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrInvalidRound    = errors.New("negotiation session is terminal")
	ErrDuplicateRecord = errors.New("deal already recorded")
	ErrPersistence     = errors.New("persistence failure")
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
)
