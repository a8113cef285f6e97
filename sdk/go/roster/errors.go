// Package roster provides a Go client for the rosterd scheduling API.
package roster

import "fmt"

// Error represents an error response from the rosterd API, carrying the
// HTTP status code and the server's error code and message.
type Error struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("roster: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.StatusCode == 404
	}
	return false
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.StatusCode == 401
	}
	return false
}

// IsForbidden reports whether err is a 403 response.
func IsForbidden(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.StatusCode == 403
	}
	return false
}

// IsUnprocessable reports whether err is a 422 response, which rosterd uses
// for a SolveContext that failed validation before a solve was attempted.
func IsUnprocessable(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.StatusCode == 422
	}
	return false
}

// IsRateLimited reports whether err is a 429 response.
func IsRateLimited(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.StatusCode == 429
	}
	return false
}
