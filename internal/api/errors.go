package api

import (
	"errors"
	"fmt"
)

// NotFoundError represents a resource not found error with contextual information.
// The control plane returns it when a session cluster or job does not exist;
// callers treat it as an expected outcome, not as a failure.
type NotFoundError struct {
	// ResourceType categorizes the type of resource that was not found
	// (e.g., "application", "job", "savepoint")
	ResourceType string

	// ResourceName is the specific identifier of the resource that was not found
	ResourceName string

	// Message provides a custom error message if the default format is insufficient
	Message string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s not found", e.ResourceType, e.ResourceName)
}

// IsNotFound checks if an error is a NotFoundError using error unwrapping.
//
// Example:
//
//	report, err := descriptor.ApplicationReport(ctx, id)
//	if api.IsNotFound(err) {
//	    // nothing to reattach to
//	}
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// NewNotFoundError creates a new NotFoundError with the specified resource type and name.
func NewNotFoundError(resourceType, resourceName string) *NotFoundError {
	return &NotFoundError{
		ResourceType: resourceType,
		ResourceName: resourceName,
	}
}

var (
	// NewApplicationNotFoundError creates a session cluster not found error.
	NewApplicationNotFoundError = func(id string) *NotFoundError {
		return NewNotFoundError("application", id)
	}

	// NewJobNotFoundError creates a job not found error.
	NewJobNotFoundError = func(jobID string) *NotFoundError {
		return NewNotFoundError("job", jobID)
	}
)

// SecurityPreconditionError reports that the environment mandates credentials
// which are not available. It is fatal and raised before any cluster action.
type SecurityPreconditionError struct {
	Reason string
}

func (e *SecurityPreconditionError) Error() string {
	return "security precondition not met: " + e.Reason
}

// IsSecurityPrecondition reports whether err is or wraps a SecurityPreconditionError.
func IsSecurityPrecondition(err error) bool {
	var secErr *SecurityPreconditionError
	return errors.As(err, &secErr)
}

// ControlPlaneError wraps transport, authentication and state failures returned
// by the resource manager or by a session cluster's REST endpoint.
type ControlPlaneError struct {
	// Operation names the control-plane call that failed (e.g. "create deployment").
	Operation string

	// StatusCode is the HTTP status returned by the remote side, 0 for transport errors.
	StatusCode int

	// Message carries the remote error text when one was returned.
	Message string

	Err error
}

func (e *ControlPlaneError) Error() string {
	msg := e.Operation + " failed"
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ControlPlaneError) Unwrap() error {
	return e.Err
}

// IsControlPlaneFailure reports whether err is or wraps a ControlPlaneError.
func IsControlPlaneFailure(err error) bool {
	var cpErr *ControlPlaneError
	return errors.As(err, &cpErr)
}

// NewControlPlaneError wraps err as a failure of the named control-plane operation.
func NewControlPlaneError(operation string, err error) *ControlPlaneError {
	return &ControlPlaneError{Operation: operation, Err: err}
}

// ValidationError is returned when a request is rejected at entry.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}
