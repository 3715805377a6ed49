// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package usb

import (
	"fmt"

	"github.com/usbarmory/microbits/internal/status"
)

// ErrorCategory identifies errors originating in the USB control engine.
var ErrorCategory = status.NewCategory("usb")

// Control-engine error codes. These are recorded on the engine's sticky
// status carrier during request processing; per the propagation policy
// they never escape to the application (the engine stalls and recovers
// locally). The exception is ErrFunctionMismatch, which Device.Initialize
// returns inside an InitError. They are exported so tests and
// diagnostics can name them.
const (
	ErrInvalidSetupLength = iota + 1
	ErrUnresolvedControlRequest
	ErrControlRequestRejected
	ErrControlValidationFailed
	ErrControlDataTooLong
	ErrFunctionMismatch
)

// errorName maps a code to a short diagnostic string.
func errorName(code int) string {
	switch code {
	case ErrInvalidSetupLength:
		return "invalid setup length"
	case ErrUnresolvedControlRequest:
		return "unresolved control request"
	case ErrControlRequestRejected:
		return "control request rejected"
	case ErrControlValidationFailed:
		return "control validation failed"
	case ErrControlDataTooLong:
		return "control data too long"
	case ErrFunctionMismatch:
		return "function mismatch"
	default:
		return "unknown usb error"
	}
}

// InitError wraps a failure raised during Device.Initialize, which is
// the one place USB-domain errors are allowed to propagate to the
// caller rather than being recovered locally by the control engine.
type InitError struct {
	Code int
}

func (e *InitError) Error() string {
	return fmt.Sprintf("usb: %s", errorName(e.Code))
}
