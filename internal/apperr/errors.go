package apperr

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrNoText    = errors.New("no text extracted")
	ErrDuplicate = errors.New("duplicate receipt")
)
