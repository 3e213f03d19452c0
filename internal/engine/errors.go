package engine

import "errors"

// ErrNotFound and related errors describe command and persistence failures.
var (
	ErrNotFound    = errors.New("not found")
	ErrNotEligible = errors.New("required level not met")
	ErrCorruptSave = errors.New("corrupt save payload")
	ErrNoItem      = errors.New("action references an undefined item")
)
