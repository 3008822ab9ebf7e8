//go:build tinygo || baremetal

// This file is built only for embedded targets (using real radio hardware).
package otradio

import (
	"github.com/ystepanoff/otradio/driver/nrf"
	"github.com/ystepanoff/otradio/transport"
)

func NewRadio(opts RadioOpts) (*Radio, error) {
	return transport.New(nrf.New(), opts)
}
