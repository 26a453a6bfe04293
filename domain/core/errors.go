package core

import (
	"errors"
)

// Domain errors - centralized error definitions
var (
	ErrDatasetMissing  = errors.New("dataset not loaded")
	ErrUnknownStatus   = errors.New("unknown commune status")
	ErrInvalidDateSpan = errors.New("invalid date range")
)
