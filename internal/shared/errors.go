package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// API and gateway errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrRepoNotFound       = fmt.Errorf("repository not found")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Backup errors
	ErrNoBackups = fmt.Errorf("no backups found")
	ErrNoIndex   = fmt.Errorf("backup index not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
