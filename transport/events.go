package transport

import (
	"errors"
	"sync/atomic"
)

// ErrRadioInUse is returned by New while another Radio holds the transceiver.
var ErrRadioInUse = errors.New("radio already bound to an adapter")

// There is a single 802.15.4 radio per device, so the notification cells fed
// by its interrupts are package state. bound makes sure only one Radio at a
// time reaches them.
var (
	txSignal = NewSignal[bool]()     // true: tx done, false: tx failed
	rxSignal = NewSignal[struct{}]() // frame available
)

var bound atomic.Bool

// events is the handle through which an adapter owns the interrupt state.
type events struct {
	tx *Signal[bool]
	rx *Signal[struct{}]
}

func acquireEvents() (*events, error) {
	if !bound.CompareAndSwap(false, true) {
		return nil, ErrRadioInUse
	}
	txSignal.Reset()
	rxSignal.Reset()
	return &events{tx: txSignal, rx: rxSignal}, nil
}

func (e *events) release() {
	e.tx.Reset()
	e.rx.Reset()
	bound.Store(false)
}

// Interrupt entry points registered with the driver.

func (e *events) rxAvailable() { e.rx.Signal(struct{}{}) }

func (e *events) txDone() { e.tx.Signal(true) }

func (e *events) txFailed() { e.tx.Signal(false) }
