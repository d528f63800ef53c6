package services

import "errors"

// Service errors
var (
	// Dataset errors
	ErrNoDataset    = errors.New("no dataset loaded")
	ErrEmptyPayload = errors.New("empty payload")

	// Query errors
	ErrInvalidRange = errors.New("invalid date range")
)
