package transport

import (
	"context"
	"fmt"

	proto "github.com/ystepanoff/otradio/protocol"
)

// Transmit sends psdu, after a clear channel assessment when cca is set, and
// waits for the driver to report the outcome.
//
// ack is the buffer for the acknowledgment PSDU; nil means no acknowledgment
// is expected. The returned metadata is nil when no acknowledgment was
// requested or captured, or when it does not fit in ack. A failed transmission
// returns an error wrapping protocol.ErrTxFailed and leaves ack untouched.
// The acknowledgment metadata carries the channel the driver heard it on.
func (r *Radio) Transmit(ctx context.Context, psdu []byte, cca bool, ack []byte) (*proto.PsduMeta, error) {
	if r.events == nil {
		return nil, proto.ErrRadioClosed
	}
	r.events.tx.Reset()

	r.log("802.15.4: About to TX %d bytes ch%d", len(psdu), r.config.Channel)

	if err := r.driver.TransmitRaw(psdu, cca); err != nil {
		return nil, fmt.Errorf("%w: %w", proto.ErrSubmitRejected, err)
	}

	ok, err := r.events.tx.Wait(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		r.log("802.15.4: TX failed")
		return nil, proto.ErrTxFailed
	}

	r.log("802.15.4: TX done")

	if ack == nil {
		return nil, nil
	}

	raw := r.driver.AckFrame()
	if raw == nil {
		r.log("802.15.4: No ACK captured")
		return nil, nil
	}

	f, err := proto.DecodeFrame(raw.Data)
	if err != nil {
		return nil, nil
	}
	if _, err := f.CopyTo(ack); err != nil {
		r.log("802.15.4: ACK of %d bytes does not fit buffer of %d", len(f.PSDU), len(ack))
		return nil, nil
	}

	meta := f.Meta(raw.Channel)
	r.log("802.15.4: ACK %d bytes rssi %v", meta.Len, meta.RSSI)

	return &meta, nil
}
