package domain

import "errors"

var (
	ErrInvalidID   = errors.New("invalid id")
	ErrInvalidName = errors.New("invalid name")
	ErrInvalidCost = errors.New("invalid action cost")
	ErrInvalidRate = errors.New("invalid gather rate")
)
