//go:build !tinygo && !baremetal

// This file is built only for non-embedded targets (host-based testing).
package otradio

import (
	"github.com/ystepanoff/otradio/driver/stub"
	"github.com/ystepanoff/otradio/transport"
)

// Medium is the simulated band host radios are attached to. Attach peers
// with stub.New(Medium, ...).
var Medium = stub.NewMedium()

func NewRadio(opts RadioOpts) (*Radio, error) {
	return transport.New(stub.New(Medium, stub.Opts{RSSI: -45}), opts)
}
