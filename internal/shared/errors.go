package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrSessionExpired   = fmt.Errorf("session expired")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// Input validation errors (local, no network call made)
	ErrInvalidInput     = fmt.Errorf("invalid input")
	ErrMissingArgument  = fmt.Errorf("missing required argument")
	ErrInvalidFlag      = fmt.Errorf("invalid flag value")
	ErrNoImage          = fmt.Errorf("no image selected")
	ErrInvalidImageType = fmt.Errorf("file is not an image")
	ErrFileTooLarge     = fmt.Errorf("file too large")

	// Local IO errors
	ErrFileRead = fmt.Errorf("failed to read file")

	// Remote errors (non-2xx responses from the styling service)
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrRemoteRejected     = fmt.Errorf("styling request rejected")

	// Protocol errors (2xx responses missing the expected payload shape)
	ErrNoImageReturned = fmt.Errorf("no image returned")

	// Workflow errors
	ErrSubmissionInFlight = fmt.Errorf("a styling request is already in flight")
	ErrNoResult           = fmt.Errorf("no styled result available")
)
