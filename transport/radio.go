package transport

import (
	"context"

	proto "github.com/ystepanoff/otradio/protocol"
)

// LogPrintf is the logger signature accepted by the adapter.
type LogPrintf func(format string, v ...interface{})

// RadioOpts holds optional settings for New.
type RadioOpts struct {
	Logger LogPrintf // nil disables tracing
}

// Caps are the radio capabilities the adapter reports. Receive-on-when-idle
// is withheld: it is only safe while Wi-Fi/BLE coexistence arbitration is off.
// TODO: report CapRxOnWhenIdle once the driver can tell whether coexistence is enabled.
const Caps = proto.CapAckTimeout | proto.CapCsmaBackoff

// MacCaps are the software MAC features the caller may run on top of the radio.
const MacCaps = proto.MacCapsAll

// Radio adapts an interrupt-driven Driver to sequential request/response calls.
// A Radio is used by one caller at a time; Transmit, Receive and SetConfig
// must not run concurrently.
type Radio struct {
	driver Driver
	config proto.Config
	events *events
	log    LogPrintf
}

// New binds d to the process-wide notification state and programs the default
// configuration. Only one Radio may exist until Close is called.
func New(d Driver, opts RadioOpts) (*Radio, error) {
	ev, err := acquireEvents()
	if err != nil {
		return nil, err
	}

	r := &Radio{
		driver: d,
		config: proto.DefaultConfig(),
		events: ev,
		log:    opts.Logger,
	}
	if r.log == nil {
		r.log = func(string, ...interface{}) {}
	}

	d.SetRxAvailableCallback(ev.rxAvailable)
	d.SetTxDoneCallback(ev.txDone)
	d.SetTxFailedCallback(ev.txFailed)

	dc := TranslateConfig(&r.config)
	d.SetConfig(dc)
	r.log("802.15.4: Initial config %s", r.config)

	return r, nil
}

// Close unregisters the driver callbacks and frees the binding. Transmit and
// Receive on a closed Radio return protocol.ErrRadioClosed.
func (r *Radio) Close() {
	if r.events == nil {
		return
	}

	noop := func() {}
	r.driver.SetRxAvailableCallback(noop)
	r.driver.SetTxDoneCallback(noop)
	r.driver.SetTxFailedCallback(noop)

	r.events.release()
	r.events = nil
}

// Config returns the configuration last pushed to the driver.
func (r *Radio) Config() proto.Config {
	return r.config
}

func (r *Radio) Capabilities() proto.Capabilities {
	return Caps
}

func (r *Radio) MacCapabilities() proto.MacCapabilities {
	return MacCaps
}

// SetConfig stores cfg and re-programs the driver. An unchanged configuration
// does not touch the driver.
func (r *Radio) SetConfig(ctx context.Context, cfg *proto.Config) error {
	if r.config == *cfg {
		return nil
	}

	r.log("802.15.4: Setting config %s", cfg)

	r.config = *cfg
	r.driver.SetConfig(TranslateConfig(cfg))

	return nil
}
