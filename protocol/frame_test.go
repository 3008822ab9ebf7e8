package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestDecodeFrame(t *testing.T) {
	tests := []struct {
		name     string
		raw      []byte
		wantPSDU []byte
		wantRSSI int8
		hasRSSI  bool
	}{
		{
			name:     "psdu with trailing rssi",
			raw:      []byte{0x05, 1, 2, 3, 4, 5, 0x10},
			wantPSDU: []byte{1, 2, 3, 4, 5},
			wantRSSI: 16,
			hasRSSI:  true,
		},
		{
			name:     "declared length longer than available bytes",
			raw:      []byte{0x85, 1, 2},
			wantPSDU: []byte{1, 2},
		},
		{
			name:     "negative rssi",
			raw:      []byte{0x02, 0xAA, 0xBB, 0xC4},
			wantPSDU: []byte{0xAA, 0xBB},
			wantRSSI: -60,
			hasRSSI:  true,
		},
		{
			name:     "length byte only",
			raw:      []byte{0x00},
			wantPSDU: []byte{},
		},
		{
			name:     "zero length with rssi",
			raw:      []byte{0x80, 0xD8},
			wantPSDU: []byte{},
			wantRSSI: -40,
			hasRSSI:  true,
		},
		{
			name:     "extra bytes after rssi are ignored",
			raw:      []byte{0x01, 0x42, 0xF6, 0x00, 0x00},
			wantPSDU: []byte{0x42},
			wantRSSI: -10,
			hasRSSI:  true,
		},
		{
			name:     "reserved bit does not count towards the length",
			raw:      append([]byte{0xFF}, bytes.Repeat([]byte{0x11}, MaxPSDUSize)...),
			wantPSDU: bytes.Repeat([]byte{0x11}, MaxPSDUSize),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := DecodeFrame(tt.raw)
			if err != nil {
				t.Fatalf("DecodeFrame() error = %v", err)
			}
			if !bytes.Equal(f.PSDU, tt.wantPSDU) {
				t.Errorf("PSDU = %v, want %v", f.PSDU, tt.wantPSDU)
			}
			if f.HasRSSI != tt.hasRSSI {
				t.Errorf("HasRSSI = %v, want %v", f.HasRSSI, tt.hasRSSI)
			}
			if f.RSSI != tt.wantRSSI {
				t.Errorf("RSSI = %v, want %v", f.RSSI, tt.wantRSSI)
			}
		})
	}
}

func TestDecodeFrameLengthProperty(t *testing.T) {
	// For every first byte and every raw length the PSDU length is
	// min(v&0x7F, L-1) and RSSI is present iff L > 1+psdu_len.
	for v := 0; v < 256; v++ {
		for l := 1; l <= MaxRawFrameSize; l++ {
			raw := make([]byte, l)
			raw[0] = byte(v)

			f, err := DecodeFrame(raw)
			if err != nil {
				t.Fatalf("DecodeFrame(v=%#x, L=%d) error = %v", v, l, err)
			}

			want := min(v&LengthMask, l-1)
			if len(f.PSDU) != want {
				t.Fatalf("v=%#x L=%d: psdu len = %d, want %d", v, l, len(f.PSDU), want)
			}
			if f.HasRSSI != (l > 1+want) {
				t.Fatalf("v=%#x L=%d: HasRSSI = %v, want %v", v, l, f.HasRSSI, l > 1+want)
			}
		}
	}
}

func TestDecodeEmptyFrame(t *testing.T) {
	for _, raw := range [][]byte{nil, {}} {
		f, err := DecodeFrame(raw)
		if f != nil {
			t.Errorf("DecodeFrame(%v) = %v, want nil", raw, f)
		}
		if !errors.Is(err, ErrOther) {
			t.Errorf("DecodeFrame(%v) error = %v, want ErrOther", raw, err)
		}
		if KindOf(err) != KindOther {
			t.Errorf("KindOf() = %v, want %v", KindOf(err), KindOther)
		}
	}
}

func TestFrameCopyTo(t *testing.T) {
	f, err := DecodeFrame([]byte{0x04, 9, 8, 7, 6})
	if err != nil {
		t.Fatalf("DecodeFrame() error = %v", err)
	}

	t.Run("fits", func(t *testing.T) {
		dst := make([]byte, 8)
		n, err := f.CopyTo(dst)
		if err != nil {
			t.Fatalf("CopyTo() error = %v", err)
		}
		if n != 4 || !bytes.Equal(dst[:n], []byte{9, 8, 7, 6}) {
			t.Errorf("CopyTo() = %d %v", n, dst[:n])
		}
	})

	t.Run("exact fit", func(t *testing.T) {
		dst := make([]byte, 4)
		if n, err := f.CopyTo(dst); err != nil || n != 4 {
			t.Errorf("CopyTo() = %d, %v", n, err)
		}
	})

	t.Run("too large leaves destination untouched", func(t *testing.T) {
		dst := []byte{0xEE, 0xEE, 0xEE}
		n, err := f.CopyTo(dst)
		if !errors.Is(err, ErrFrameTooLarge) || !errors.Is(err, ErrOther) {
			t.Fatalf("CopyTo() error = %v, want ErrFrameTooLarge", err)
		}
		if n != 0 {
			t.Errorf("CopyTo() n = %d, want 0", n)
		}
		if !bytes.Equal(dst, []byte{0xEE, 0xEE, 0xEE}) {
			t.Errorf("destination modified: %v", dst)
		}
	})
}

func TestFrameMeta(t *testing.T) {
	f, _ := DecodeFrame([]byte{0x02, 1, 2, 0xB0})
	meta := f.Meta(20)
	want := PsduMeta{Len: 2, Channel: 20, RSSI: -80, HasRSSI: true}
	if meta != want {
		t.Errorf("Meta() = %+v, want %+v", meta, want)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		frame *Frame
	}{
		{name: "empty psdu", frame: &Frame{PSDU: []byte{}}},
		{name: "with rssi", frame: &Frame{PSDU: []byte{1, 2, 3}, RSSI: -42, HasRSSI: true}},
		{name: "maximum psdu", frame: &Frame{PSDU: bytes.Repeat([]byte{0xAA}, MaxPSDUSize), RSSI: 3, HasRSSI: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := DecodeFrame(EncodeFrame(tt.frame))
			if err != nil {
				t.Fatalf("DecodeFrame() error = %v", err)
			}
			if !bytes.Equal(decoded.PSDU, tt.frame.PSDU) {
				t.Errorf("PSDU mismatch")
			}
			if decoded.HasRSSI != tt.frame.HasRSSI || decoded.RSSI != tt.frame.RSSI {
				t.Errorf("RSSI = %v/%v, want %v/%v", decoded.RSSI, decoded.HasRSSI, tt.frame.RSSI, tt.frame.HasRSSI)
			}
		})
	}
}

func TestEncodeFrameTruncates(t *testing.T) {
	raw := EncodeFrame(&Frame{PSDU: bytes.Repeat([]byte{0x01}, MaxPSDUSize+10)})
	if len(raw) != LengthFieldSize+MaxPSDUSize {
		t.Errorf("EncodeFrame() size = %d, want %d", len(raw), LengthFieldSize+MaxPSDUSize)
	}
	if raw[0] != MaxPSDUSize {
		t.Errorf("length byte = %d, want %d", raw[0], MaxPSDUSize)
	}
	if len(EncodeFrame(nil)) != 0 {
		t.Errorf("EncodeFrame(nil) not empty")
	}
}
