package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoTarget is returned when no start URL is provided.
	ErrNoTarget = errors.New("no start URL specified: provide one or more URLs as arguments")

	// ErrInvalidTimeout is returned when the HTTP timeout is not positive.
	// A zero or negative timeout would cause immediate request failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxBytes is returned when the download byte ceiling is not
	// positive. A ceiling of zero would truncate every download.
	ErrInvalidMaxBytes = errors.New("invalid max bytes: must be positive")

	// ErrInvalidMaxPages is returned when the page budget is not positive.
	// A budget of zero would fetch nothing, including the start URL.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidBatchSize is returned when the batch concurrency is not
	// positive. Zero concurrency would mean no crawls run at all.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidDelay is returned when the politeness delay is negative.
	// Use 0 for no delay between page fetches.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")
)
