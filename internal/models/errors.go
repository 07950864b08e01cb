package models

import "errors"

// Application-wide standard errors
var (
	// ErrAllPromptsUsed means every active catalog prompt has already been
	// shown on the device. Terminal for the rotation attempt; the caller
	// decides the fallback experience.
	ErrAllPromptsUsed = errors.New("all active prompts have been used on this device")

	// Catalog management errors
	ErrPromptNotFound = errors.New("prompt not found")

	// General Request/Server Errors
	ErrInternalServer = errors.New("internal server error")
	ErrBadRequest     = errors.New("bad request")
	ErrInvalidInput   = errors.New("invalid input data")
)
