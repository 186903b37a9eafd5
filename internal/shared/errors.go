package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Chord engine errors
	ErrNotFound            = fmt.Errorf("chord data not found")
	ErrInvalidShape        = fmt.Errorf("invalid chord shape")
	ErrInvalidKeyComponent = fmt.Errorf("invalid variant key component")
	ErrInvalidTheme        = fmt.Errorf("invalid theme")

	// Persistence errors
	ErrRecordNotFound = fmt.Errorf("record not found")
	ErrDuplicate      = fmt.Errorf("record already exists")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Collaborator errors
	ErrSourceRequest      = fmt.Errorf("tab source request failed")
	ErrStoreRequest       = fmt.Errorf("object store request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
