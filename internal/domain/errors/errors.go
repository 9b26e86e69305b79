package errors

import (
	"errors"
	"net/http"
)

// Validation errors — reported synchronously, abort with no state change.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrAlreadyExists   = errors.New("resource already exists")
	ErrInvalidInput    = errors.New("invalid input")
	ErrBadRequest      = errors.New("bad request")
	ErrBridgePaused    = errors.New("bridge is paused")
	ErrChainDisabled   = errors.New("chain is disabled")
	ErrTokenDisabled   = errors.New("token is disabled")
	ErrSameChain       = errors.New("source and destination chain are identical")
	ErrWrongSource     = errors.New("source chain is not the current chain")
	ErrWrongDest       = errors.New("destination chain mismatch")
	ErrBelowMinimum    = errors.New("amount below minimum")
	ErrAboveMaximum    = errors.New("amount above maximum")
	ErrVolumeExceeded  = errors.New("daily volume limit exceeded")
	ErrFeeTooHigh      = errors.New("fee exceeds global ceiling")
	ErrInvalidAmount   = errors.New("amount is not a valid decimal integer")
	ErrInvalidAddress  = errors.New("invalid account address")
)

// Conflict errors — double settlement, replay, tampering. Never silently succeed.
var (
	ErrAlreadyFinalized  = errors.New("request already finalized")
	ErrUnknownCommitment = errors.New("commitment was never registered")
	ErrHashMismatch      = errors.New("commitment does not match stored fields")
	ErrReplayedTxHash    = errors.New("commitment already seen")
)

// Expiry errors — the complete and cancel windows are complementary.
var (
	ErrExpiredWindow     = errors.New("completion window has expired")
	ErrWindowNotElapsed  = errors.New("timeout window has not elapsed")
	ErrTooSoon           = errors.New("fee adjustment window has not elapsed")
	ErrRootExpired       = errors.New("merkle root has expired")
)

// Authorization errors.
var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrNotSender     = errors.New("caller is not the request sender")
	ErrTokenExpired  = errors.New("token expired")
)

// Attestation / registry errors.
var (
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrInsufficientSignatures = errors.New("signatures below threshold")
	ErrInvalidProof           = errors.New("merkle proof verification failed")
	ErrThresholdOutOfRange    = errors.New("threshold out of range")
	ErrLastValidator          = errors.New("cannot remove the last validator")
)

// Machine-readable error codes returned in HTTP bodies.
const (
	CodeNotFound      = "ERR_NOT_FOUND"
	CodeInvalidInput  = "ERR_INVALID_INPUT"
	CodeBadRequest    = "ERR_BAD_REQUEST"
	CodeUnauthorized  = "ERR_UNAUTHORIZED"
	CodeForbidden     = "ERR_FORBIDDEN"
	CodeConflict      = "ERR_CONFLICT"
	CodeExpired       = "ERR_EXPIRED"
	CodeInternalError = "ERR_INTERNAL"
)

// AppError carries an HTTP status and machine code alongside the wrapped cause.
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidInput, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, ErrAlreadyExists)
}

func Expired(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeExpired, message, ErrExpiredWindow)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

func InternalServerError(message string) *AppError {
	return &AppError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternalError,
		Message: message,
	}
}

// NewError creates a new error with a custom message wrapping an existing error
func NewError(message string, err error) error {
	return &AppError{
		Status:  http.StatusBadRequest,
		Code:    CodeBadRequest,
		Message: message,
		Err:     err,
	}
}
