package domain

import "errors"

var (
	// ErrNotInitialized is returned when an operation runs before Initialize.
	ErrNotInitialized = errors.New("learner brain not initialized")

	// ErrValidation marks malformed input that cannot degrade to defaults.
	ErrValidation = errors.New("validation failed")

	// ErrExternalService marks LLM or durable-store failures.
	ErrExternalService = errors.New("external service failed")
)
