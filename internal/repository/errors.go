package repository

import "errors"

var (
	ErrNotFound         = errors.New("entity not found")
	ErrAlreadyExists    = errors.New("entity already exists")
	ErrConnectionFailed = errors.New("database connection failed")
	ErrQueryFailed      = errors.New("database query failed")
	ErrTooLarge         = errors.New("object exceeds size limit")
)
