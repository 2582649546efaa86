package repositories

import "errors"

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateTitle = errors.New("Job title must be unique")
)
