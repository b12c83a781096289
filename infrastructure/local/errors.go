package local

import "errors"

var (
	// ErrInstanceNotFound indicates an instance-bound entry's instance is missing.
	ErrInstanceNotFound = errors.New("instance not found")

	// ErrInstanceType indicates an instance of the wrong type.
	ErrInstanceType = errors.New("instance has wrong type")
)
