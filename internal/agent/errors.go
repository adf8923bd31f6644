package agent

import "errors"

var (
	// ErrNotFound is returned when a session id is unknown.
	ErrNotFound = errors.New("session not found")
	// ErrInvalidInput is returned when a user message is empty.
	ErrInvalidInput = errors.New("message is required")
	// ErrProviderUnavailable marks a misconfigured or failing generative model.
	// It never reaches callers of Service.Generate.
	ErrProviderUnavailable = errors.New("generative provider unavailable")
)
