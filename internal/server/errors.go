package server

import "errors"

// Sentinel errors returned by handlers and mapped to HTTP status codes.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRunNotFound        = errors.New("run not found")
	ErrArtifactNotFound   = errors.New("artifact not found")
	ErrValidation         = errors.New("validation failed")
)

// HTTPStatus maps an error to the HTTP status code it should produce.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return 401
	case errors.Is(err, ErrRunNotFound), errors.Is(err, ErrArtifactNotFound):
		return 404
	case errors.Is(err, ErrValidation):
		return 400
	default:
		return 500
	}
}
