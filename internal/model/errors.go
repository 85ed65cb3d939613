package model

import (
	"errors"
	"fmt"
)

// Fatal errors abort the connector run
var (
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrBoardUnavailable    = errors.New("board unavailable")
	ErrProvisioningFailed  = errors.New("provisioning failed")
)

// Recoverable errors are logged where they happen and retried on the next run
var (
	ErrCardMutationFailed          = errors.New("card mutation failed")
	ErrLabelMutationFailed         = errors.New("label mutation failed")
	ErrChecklistItemMutationFailed = errors.New("checklist item mutation failed")
)

// ErrInvalidRecord marks an upstream record missing a required field
var ErrInvalidRecord = errors.New("invalid record")

// APIError describes a failed call to one of the remote services
type APIError struct {
	Service    string // "reliefweb" or "trello"
	Method     string
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s %s: status %d: %s", e.Service, e.Method, e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s %s: %s", e.Service, e.Method, e.Endpoint, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err must abort the run
func IsFatal(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable) ||
		errors.Is(err, ErrBoardUnavailable) ||
		errors.Is(err, ErrProvisioningFailed)
}
