// go-rf230
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-rf230.
//
// go-rf230 is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-rf230 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-rf230; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package rf230

import (
	"errors"
	"fmt"

	"github.com/ZaparooProject/go-rf230/ieee802154"
	"github.com/ZaparooProject/go-rf230/internal/frame"
)

// Transport errors
var (
	ErrTransportRead  = errors.New("bus read failed")
	ErrTransportWrite = errors.New("bus write failed")
	ErrPinControl     = errors.New("pin control failed")
)

// Driver errors
var (
	// ErrOversizeFrame is returned before any bus activity when a frame or
	// frame-buffer write exceeds its length limit
	ErrOversizeFrame = ieee802154.ErrOversizeFrame
	// ErrUnrecognizedState is wrapped by StateError when TRX_STATUS holds an unknown code
	ErrUnrecognizedState = errors.New("unrecognized hardware state")
	// ErrTransitionTimeout is returned when the radio does not reach a target state in time
	ErrTransitionTimeout = errors.New("state transition timeout")
	// ErrBufferIndexOutOfRange is returned for an access beyond the received frame length
	ErrBufferIndexOutOfRange = frame.ErrIndexOutOfRange
	// ErrInvalidTargetState is returned when DriveTo is asked for a state it cannot command
	ErrInvalidTargetState = errors.New("invalid target state")
	ErrNotInitialized     = errors.New("transceiver not initialized")
	ErrBusy               = errors.New("transceiver busy")
	ErrDeviceNotFound     = errors.New("RF230 not found")
	ErrInvalidParameter   = errors.New("invalid parameter")
)

// ErrorType classifies errors for retry decisions
type ErrorType int

const (
	// ErrorTypePermanent errors will not go away by retrying
	ErrorTypePermanent ErrorType = iota
	// ErrorTypeTransient errors may succeed on a later attempt
	ErrorTypeTransient
	// ErrorTypeTimeout errors indicate the hardware did not respond in time
	ErrorTypeTimeout
)

// String returns the error type name
func (t ErrorType) String() string {
	switch t {
	case ErrorTypePermanent:
		return "permanent"
	case ErrorTypeTransient:
		return "transient"
	case ErrorTypeTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("ErrorType(%d)", int(t))
	}
}

// TransportError describes a failed operation on the radio bus
type TransportError struct {
	Err       error
	Op        string
	Port      string
	Type      ErrorType
	Retryable bool
}

// Error implements the error interface
func (e *TransportError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("%s on %s: %v", e.Op, e.Port, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a TransportError; timeout and transient errors are retryable
func NewTransportError(op, port string, err error, errType ErrorType) *TransportError {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       err,
		Type:      errType,
		Retryable: errType == ErrorTypeTimeout || errType == ErrorTypeTransient,
	}
}

// NewTransportReadError wraps a failed bus transfer while reading
func NewTransportReadError(op, port string, cause error) *TransportError {
	return NewTransportError(op, port, fmt.Errorf("%w: %w", ErrTransportRead, cause), ErrorTypeTransient)
}

// NewTransportWriteError wraps a failed bus transfer while writing
func NewTransportWriteError(op, port string, cause error) *TransportError {
	return NewTransportError(op, port, fmt.Errorf("%w: %w", ErrTransportWrite, cause), ErrorTypeTransient)
}

// NewTimeoutError creates a retryable timeout error
func NewTimeoutError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrTransitionTimeout, ErrorTypeTimeout)
}

// NewDataTooLargeError creates a permanent oversize error
func NewDataTooLargeError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrOversizeFrame, ErrorTypePermanent)
}

// StateError reports a TRX_STATUS code outside the documented set
type StateError struct {
	Code byte
}

// Error implements the error interface
func (e *StateError) Error() string {
	return fmt.Sprintf("%v: 0x%02X", ErrUnrecognizedState, e.Code)
}

// Unwrap returns ErrUnrecognizedState
func (*StateError) Unwrap() error {
	return ErrUnrecognizedState
}

// TransitionError reports a state transition that did not complete
type TransitionError struct {
	Err    error
	Target RadioState
	Last   RadioState
	Polls  int
}

// Error implements the error interface
func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition to %s: last state %s after %d polls: %v", e.Target, e.Last, e.Polls, e.Err)
}

// Unwrap returns the underlying error
func (e *TransitionError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether the operation that returned err may succeed if repeated
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}

	switch {
	case errors.Is(err, ErrUnrecognizedState),
		errors.Is(err, ErrTransitionTimeout),
		errors.Is(err, ErrBusy),
		errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrTransportWrite):
		return true
	default:
		return false
	}
}

// GetErrorType classifies err
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ErrorTypePermanent
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Type
	}

	switch {
	case errors.Is(err, ErrTransitionTimeout):
		return ErrorTypeTimeout
	case errors.Is(err, ErrUnrecognizedState),
		errors.Is(err, ErrBusy),
		errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrTransportWrite):
		return ErrorTypeTransient
	default:
		return ErrorTypePermanent
	}
}
