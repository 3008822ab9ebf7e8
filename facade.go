// Package otradio provides a façade to access the 802.15.4 radio adapter.
package otradio

import (
	"github.com/ystepanoff/otradio/protocol"
	"github.com/ystepanoff/otradio/transport"
)

// The actual implementation is split into build-tag specific files:
// - constructors_nrf.go - for embedded platforms (//go:build tinygo || baremetal)
// - constructors_host.go - for development/testing (//go:build !tinygo && !baremetal)

// Re-export types used by a MAC layer
type (
	Radio           = transport.Radio
	RadioOpts       = transport.RadioOpts
	Driver          = transport.Driver
	Config          = protocol.Config
	Cca             = protocol.Cca
	PsduMeta        = protocol.PsduMeta
	Capabilities    = protocol.Capabilities
	MacCapabilities = protocol.MacCapabilities
	ErrorKind       = protocol.ErrorKind
)

// Error constants exposed in the public API
var (
	ErrOther          = protocol.ErrOther
	ErrTxFailed       = protocol.ErrTxFailed
	ErrInvalidChannel = protocol.ErrInvalidChannel
	ErrRadioInUse     = transport.ErrRadioInUse
	ErrRadioClosed    = protocol.ErrRadioClosed
)

// Constants exposed in the public API
const (
	Caps    = transport.Caps
	MacCaps = transport.MacCaps

	MaxPSDUSize    = protocol.MaxPSDUSize
	DefaultChannel = protocol.DefaultChannel
)

// DefaultConfig returns the configuration a Radio starts with.
func DefaultConfig() Config { return protocol.DefaultConfig() }

// KindOf classifies an error returned by a Radio.
func KindOf(err error) ErrorKind { return protocol.KindOf(err) }

// NewRadioWithDriver binds a Radio to an arbitrary driver.
func NewRadioWithDriver(d Driver, opts RadioOpts) (*Radio, error) {
	return transport.New(d, opts)
}
