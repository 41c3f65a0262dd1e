package errcode

import (
	"context"
	"errors"

	"audiocodec-go/drivers/ac101"
)

// Code is a stable, bus-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK                Code = "ok"
	Busy              Code = "busy"
	Unsupported       Code = "unsupported"
	InvalidParams     Code = "invalid_params"
	InvalidPayload    Code = "invalid_payload"
	UnknownCapability Code = "unknown_capability"
	HALNotReady       Code = "hal_not_ready"
	InvalidTopic      Code = "invalid_topic"
	Unavailable       Code = "unavailable"
	Conflict          Code = "conflict"

	UnknownBus Code = "unknown_bus"
	BusInUse   Code = "bus_in_use"
	Timeout    Code = "timeout"
	IOError    Code = "io_error"

	// Codec device state
	DeviceFailed Code = "device_failed"
	NotReady     Code = "not_ready"
	ResetVerify  Code = "reset_verify"

	Error Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	type coder interface{ Code() Code }
	var x coder
	if errors.As(err, &x) {
		return x.Code()
	}
	return Error
}

// MapDriverErr maps low-level driver errors to a Code.
func MapDriverErr(err error) Code {
	switch {
	case err == nil:
		return OK
	case errors.Is(err, ac101.ErrResetVerify):
		return ResetVerify
	case errors.Is(err, ac101.ErrDeviceFailed):
		return DeviceFailed
	case errors.Is(err, ac101.ErrInvalidRes), errors.Is(err, ac101.ErrInvalidMode):
		return InvalidPayload
	case errors.Is(err, context.DeadlineExceeded):
		return Timeout
	}
	if c := Of(err); c != Error {
		return c
	}
	return IOError
}
