// Package domain defines the shared error taxonomy used across services.
// Logic-style errors map to 4xx statuses and can usually be corrected by the
// caller; integration errors flagged critical map to 5xx.
package domain

import "fmt"

// ErrorField points at the request field that caused a validation failure.
type ErrorField struct {
	Key         string `json:"key"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// NotFoundError indicates the referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// NewNotFoundError creates a NotFoundError for the given entity and id.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// ForbiddenError indicates the entity exists but the caller may not access it.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

// NewForbiddenError creates a ForbiddenError with the given message.
func NewForbiddenError(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}

// ValidationError indicates a business-rule rejection of the request,
// optionally carrying field-level error codes.
type ValidationError struct {
	Message string
	Fields  []ErrorField
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError creates a ValidationError without field details.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// NewFieldValidationError creates a ValidationError carrying field details.
func NewFieldValidationError(message string, fields ...ErrorField) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

// IntegrationError indicates a failure returned by an external dependency.
// Critical errors are not correctable by the caller (remote 5xx); others
// mirror a remote 4xx.
type IntegrationError struct {
	ServiceID  string
	Code       string
	StatusCode int
	Critical   bool
	Cause      error
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("integration %s failed with status %d (%s)", e.ServiceID, e.StatusCode, e.Code)
}

func (e *IntegrationError) Unwrap() error { return e.Cause }

// NewIntegrationLogicError creates a caller-correctable integration error.
func NewIntegrationLogicError(serviceID, code string, statusCode int) *IntegrationError {
	return &IntegrationError{ServiceID: serviceID, Code: code, StatusCode: statusCode}
}

// NewIntegrationCriticalError creates a non-correctable integration error.
func NewIntegrationCriticalError(serviceID, code string, statusCode int) *IntegrationError {
	return &IntegrationError{ServiceID: serviceID, Code: code, StatusCode: statusCode, Critical: true}
}
