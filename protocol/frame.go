package protocol

// Frame is a decoded raw driver frame.
// Layout: Length(1) | PSDU(0-127) | RSSI(0-1)
// Length&0x7F is the declared PSDU length; when fewer bytes are actually present
// the PSDU is clamped to what is there. A byte following the PSDU is the RSSI.
type Frame struct {
	PSDU    []byte // aliases the raw buffer on decode
	RSSI    int8
	HasRSSI bool
}

// PsduMeta describes a PSDU copied into a caller buffer.
type PsduMeta struct {
	Len     int
	Channel uint8
	RSSI    int8
	HasRSSI bool
}

// EncodeFrame serialises a Frame into the raw driver envelope.
func EncodeFrame(f *Frame) []byte {
	if f == nil {
		return make([]byte, 0)
	}

	psdu := f.PSDU
	if len(psdu) > MaxPSDUSize {
		psdu = psdu[:MaxPSDUSize]
	}

	totalLen := LengthFieldSize + len(psdu)
	if f.HasRSSI {
		totalLen += RSSIFieldSize
	}

	data := make([]byte, totalLen)
	data[0] = byte(len(psdu))
	copy(data[LengthFieldSize:], psdu)
	if f.HasRSSI {
		data[totalLen-1] = byte(f.RSSI)
	}

	return data
}

// DecodeFrame parses a raw driver frame. The returned PSDU is a view into raw
// and must be copied out before the driver reuses the buffer.
func DecodeFrame(raw []byte) (*Frame, error) {
	// Must have at least the length byte
	if len(raw) < LengthFieldSize {
		return nil, ErrEmptyFrame
	}

	psduLen := min(int(raw[0]&LengthMask), len(raw)-LengthFieldSize)

	f := &Frame{PSDU: raw[LengthFieldSize : LengthFieldSize+psduLen]}

	// Only read RSSI if there is at least one byte after the PSDU.
	if len(raw) > LengthFieldSize+psduLen {
		f.RSSI = int8(raw[LengthFieldSize+psduLen])
		f.HasRSSI = true
	}

	return f, nil
}

// CopyTo copies the PSDU into dst. If it does not fit, dst is left untouched
// and ErrFrameTooLarge is returned.
func (f *Frame) CopyTo(dst []byte) (int, error) {
	if len(f.PSDU) > len(dst) {
		return 0, ErrFrameTooLarge
	}
	return copy(dst, f.PSDU), nil
}

// Meta returns the metadata reported to the MAC layer for this frame.
func (f *Frame) Meta(channel uint8) PsduMeta {
	return PsduMeta{
		Len:     len(f.PSDU),
		Channel: channel,
		RSSI:    f.RSSI,
		HasRSSI: f.HasRSSI,
	}
}
