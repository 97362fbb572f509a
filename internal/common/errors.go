package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Extraction errors
var (
	ErrUnsupportedMediaKind = errors.New("unsupported media kind")
	ErrEmptyInput           = errors.New("empty input")
	ErrDependencyMissing    = errors.New("extraction dependency missing")
	ErrNoExtractableText    = errors.New("no extractable text")
)

// Oracle errors
var (
	ErrOracleTransport   = errors.New("oracle transport failure")
	ErrOracleMalformed   = errors.New("oracle output malformed")
	ErrContractViolation = errors.New("contract violation")
)

// Domain/infrastructure errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrDatabase     = errors.New("database error")
	ErrInvalidInput = errors.New("invalid input")
)

// DependencyMissingError names the specific external tool that is absent
// (page renderer vs OCR engine), so callers can render an actionable message.
type DependencyMissingError struct {
	Dependency string // "renderer" | "ocr-engine"
	Hint       string
}

func (e *DependencyMissingError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s unavailable: %s", e.Dependency, e.Hint)
	}
	return fmt.Sprintf("%s unavailable", e.Dependency)
}

func (e *DependencyMissingError) Unwrap() error { return ErrDependencyMissing }

// ContractViolationError rejects schema-noncompliant oracle output,
// naming the offending field and the violated constraint.
type ContractViolationError struct {
	Field      string
	Constraint string
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("contract violation at %q: %s", e.Field, e.Constraint)
}

func (e *ContractViolationError) Unwrap() error { return ErrContractViolation }

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
