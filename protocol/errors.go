package protocol

import (
	"errors"
	"fmt"
)

// The two error kinds surfaced to the MAC layer. Every error returned by the
// radio adapter wraps exactly one of them.
var (
	ErrOther    = errors.New("radio error")
	ErrTxFailed = errors.New("transmission failed")
)

var (
	ErrEmptyFrame     = fmt.Errorf("%w: empty frame", ErrOther)
	ErrFrameTooLarge  = fmt.Errorf("%w: frame too large for buffer", ErrOther)
	ErrSubmitRejected = fmt.Errorf("%w: driver rejected transmission", ErrOther)
	ErrRadioClosed    = fmt.Errorf("%w: radio closed", ErrOther)
	ErrInvalidChannel = errors.New("invalid channel (valid range: 11-26)")
)

// ErrorKind classifies a radio error for the caller's retry logic.
type ErrorKind uint8

const (
	KindNone ErrorKind = iota
	KindOther
	KindTxFailed
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindOther:
		return "other"
	case KindTxFailed:
		return "tx-failed"
	default:
		return "INVALID"
	}
}

// Retryable reports whether the caller's backoff logic should retry. Only a
// transmission failure reported by the driver (missing ACK, busy channel) is.
func (k ErrorKind) Retryable() bool { return k == KindTxFailed }

// KindOf returns the error kind wrapped by err. Errors that wrap neither kind
// sentinel, context cancellation included, map to KindNone.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrTxFailed):
		return KindTxFailed
	case errors.Is(err, ErrOther):
		return KindOther
	default:
		return KindNone
	}
}
