package domain

import "errors"

var (
	// ErrValidation means a required canonical field is missing; the record
	// is dropped and the batch continues.
	ErrValidation = errors.New("validation failed")

	// ErrStorage wraps unexpected persistence failures.
	ErrStorage = errors.New("storage failure")

	// ErrExtraction means every extraction strategy failed for a URL.
	ErrExtraction = errors.New("could not extract posting")

	// ErrDuplicate is returned by stores when a write hits a unique
	// constraint.
	ErrDuplicate = errors.New("duplicate record")

	ErrNotFound        = errors.New("not found")
	ErrProtectedSource = errors.New("website is protected and cannot be deleted")
)
