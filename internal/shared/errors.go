package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Admin gate errors
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrUnauthorized       = fmt.Errorf("invalid admin credentials")

	// Catalog errors
	ErrSongNotFound = fmt.Errorf("song not found")
	ErrStorage      = fmt.Errorf("storage failure")
	ErrInvalidLink  = fmt.Errorf("invalid link")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
