package transport

import (
	"context"

	proto "github.com/ystepanoff/otradio/protocol"
)

// Receive puts the radio in receive mode and blocks until a frame is
// available, then copies its PSDU into buf.
//
// A frame already buffered by the driver is returned without waiting. An empty
// frame, or a PSDU larger than buf, yields an error wrapping protocol.ErrOther.
func (r *Radio) Receive(ctx context.Context, buf []byte) (proto.PsduMeta, error) {
	if r.events == nil {
		return proto.PsduMeta{}, proto.ErrRadioClosed
	}
	r.events.rx.Reset()

	r.log("802.15.4: RX ch%d", r.config.Channel)
	r.driver.StartReceive()

	var raw *RawFrame
	for {
		// Poll before waiting: a frame may have arrived before the reset above.
		if raw = r.driver.RawReceived(); raw != nil {
			break
		}
		if _, err := r.events.rx.Wait(ctx); err != nil {
			return proto.PsduMeta{}, err
		}
	}

	f, err := proto.DecodeFrame(raw.Data)
	if err != nil {
		return proto.PsduMeta{}, err
	}
	if _, err := f.CopyTo(buf); err != nil {
		r.log("802.15.4: RX frame of %d bytes does not fit buffer of %d", len(f.PSDU), len(buf))
		return proto.PsduMeta{}, err
	}

	meta := f.Meta(raw.Channel)
	r.log("802.15.4: Received %d bytes ch%d rssi %v", meta.Len, meta.Channel, meta.RSSI)

	return meta, nil
}
