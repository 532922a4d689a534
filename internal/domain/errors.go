package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. year or calendar week outside the configured bounds).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrBackendUnavailable is returned when no render backend is wired for this
// deployment. Handlers should map this to HTTP 503.
var ErrBackendUnavailable = errors.New("export backend unavailable")

// ErrBackendFailure is returned when the selected render backend fails mid
// request: a network error or malformed response from the export worker, or
// a non-zero exit from the local export subprocess.
// Handlers should map this to HTTP 502 Bad Gateway.
var ErrBackendFailure = errors.New("export backend failure")
