// Package ncu structured error types shared by the runtime and its callers.
package ncu

import (
	"errors"
	"fmt"
)

// ErrorKind represents categories of runtime errors.
type ErrorKind int

const (
	// ErrKindAllocation covers device memory reservation and release failures.
	ErrKindAllocation ErrorKind = iota
	// ErrKindTransfer covers host/device copy failures.
	ErrKindTransfer
	// ErrKindLaunch covers kernel dispatch and synchronization failures.
	ErrKindLaunch
	// ErrKindInvalidArg covers invalid argument errors.
	ErrKindInvalidArg
	// ErrKindDevice covers device selection and capability query failures.
	ErrKindDevice
)

// Error represents a structured runtime error with operation context.
type Error struct {
	Kind    ErrorKind
	Op      string // operation that failed, e.g. "Malloc"
	Message string // human-readable message
	Err     error  // underlying error if any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ncu %s error in %s: %s (caused by: %v)",
			e.Kind.String(), e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("ncu %s error in %s: %s",
		e.Kind.String(), e.Op, e.Message)
}

// Unwrap allows error chain inspection.
func (e *Error) Unwrap() error {
	return e.Err
}

// String returns the error kind as a string.
func (k ErrorKind) String() string {
	switch k {
	case ErrKindAllocation:
		return "Allocation"
	case ErrKindTransfer:
		return "Transfer"
	case ErrKindLaunch:
		return "Launch"
	case ErrKindInvalidArg:
		return "InvalidArgument"
	case ErrKindDevice:
		return "Device"
	default:
		return "Unknown"
	}
}

// Common error constructors

// NewAllocationError creates a device memory allocation error.
func NewAllocationError(op string, message string, err error) error {
	return &Error{
		Kind:    ErrKindAllocation,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewTransferError creates a host/device transfer error.
func NewTransferError(op string, message string, err error) error {
	return &Error{
		Kind:    ErrKindTransfer,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewLaunchError creates a kernel launch error.
func NewLaunchError(op string, message string, err error) error {
	return &Error{
		Kind:    ErrKindLaunch,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewInvalidArgError creates an invalid argument error.
func NewInvalidArgError(op string, message string) error {
	return &Error{
		Kind:    ErrKindInvalidArg,
		Op:      op,
		Message: message,
	}
}

// NewDeviceError creates a device error.
func NewDeviceError(op string, message string, err error) error {
	return &Error{
		Kind:    ErrKindDevice,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// Common pre-defined errors

var (
	// ErrOutOfMemory indicates device memory exhaustion.
	ErrOutOfMemory = NewAllocationError("Malloc", "out of memory", nil)

	// ErrInvalidSize indicates an invalid size parameter.
	ErrInvalidSize = NewInvalidArgError("Malloc", "size must be positive")

	// ErrNullPointer indicates a transfer through a null pointer.
	ErrNullPointer = NewTransferError("Memcpy", "null pointer", nil)

	// ErrDoubleFree indicates a double free attempt.
	ErrDoubleFree = NewAllocationError("Free", "double free detected", nil)

	// ErrInvalidDevice indicates an invalid device ID.
	ErrInvalidDevice = NewInvalidArgError("SetDevice", "invalid device ID")
)

// IsAllocationError checks if an error is a device memory allocation error.
func IsAllocationError(err error) bool {
	return hasKind(err, ErrKindAllocation)
}

// IsTransferError checks if an error is a host/device transfer error.
func IsTransferError(err error) bool {
	return hasKind(err, ErrKindTransfer)
}

// IsLaunchError checks if an error is a kernel launch error.
func IsLaunchError(err error) bool {
	return hasKind(err, ErrKindLaunch)
}

// IsInvalidArgError checks if an error is an invalid argument error.
func IsInvalidArgError(err error) bool {
	return hasKind(err, ErrKindInvalidArg)
}

// IsDeviceError checks if an error is a device error.
func IsDeviceError(err error) bool {
	return hasKind(err, ErrKindDevice)
}

func hasKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
