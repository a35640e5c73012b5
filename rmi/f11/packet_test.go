package f11

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmikit/rmitouch/sensor"
)

func TestFingerStateBitmapPacking(t *testing.T) {
	// Ten slots, four states per byte: slot i lives at byte i/4, bit (i%4)*2.
	pkt := []byte{
		0x01 | 0x02<<2 | 0x03<<4 | 0x00<<6,
		0x01<<0 | 0x01<<6,
		0x02 << 2,
	}
	want := []FingerState{
		StatePresent, StateInaccurate, StateReserved, StateNone,
		StatePresent, StateNone, StateNone, StatePresent,
		StateNone, StateInaccurate,
	}
	for i, w := range want {
		assert.Equal(t, w, fingerStateAt(pkt, i), "slot %d", i)
	}
}

func TestDecodeSlotFields(t *testing.T) {
	l := PacketLayout{NrFingers: 2, PacketSize: 11, AttnSize: 11, AbsPosOffset: 1}

	tests := []struct {
		name string
		pos  [5]byte
		want sensor.Object
	}{
		{
			name: "nibble split position",
			pos:  [5]byte{0x4C, 0x2A, 0x01, 0x54, 0x30},
			want: sensor.Object{Type: sensor.ObjectFinger, X: 0x4C1, Y: 0x2A0, Z: 0x30, WX: 4, WY: 5},
		},
		{
			name: "max twelve bit coordinates",
			pos:  [5]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
			want: sensor.Object{Type: sensor.ObjectFinger, X: 0xFFF, Y: 0xFFF, Z: 0xFF, WX: 0x0F, WY: 0x0F},
		},
		{
			name: "origin",
			pos:  [5]byte{0, 0, 0, 0, 0},
			want: sensor.Object{Type: sensor.ObjectFinger},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pkt := make([]byte, l.PacketSize)
			pkt[0] = 0x01 // slot 0 present
			copy(pkt[l.AbsPosOffset:], tc.pos[:])

			state, obj := DecodeSlot(pkt, &l, 0)
			assert.Equal(t, StatePresent, state)
			assert.Equal(t, tc.want, obj)
		})
	}
}

func TestDecodeSlotHoverIsNotAFinger(t *testing.T) {
	l := PacketLayout{NrFingers: 1, PacketSize: 6, AttnSize: 6, AbsPosOffset: 1}
	pkt := []byte{0x02, 0x10, 0x20, 0x00, 0x11, 0x25}

	state, obj := DecodeSlot(pkt, &l, 0)
	assert.Equal(t, StateInaccurate, state)
	assert.Equal(t, sensor.ObjectNone, obj.Type)
}

func TestAssembleReport(t *testing.T) {
	l := PacketLayout{NrFingers: 2, PacketSize: 11, AttnSize: 11, AbsPosOffset: 1}
	now := time.Now()

	pkt := make([]byte, l.PacketSize)
	pkt[0] = 0x01 | 0x03<<2 // slot 0 present, slot 1 reserved
	copy(pkt[1:], []byte{0x10, 0x20, 0x00, 0x11, 0x25})

	var rep sensor.Report
	malformed := AssembleReport(pkt, &l, now, nil, &rep)

	assert.Equal(t, 1, malformed)
	assert.False(t, rep.Discard)
	assert.Equal(t, 2, rep.Fingers)
	assert.Equal(t, now, rep.Timestamp)
	assert.Equal(t, sensor.ObjectFinger, rep.Objects[0].Type)
	assert.Equal(t, sensor.ObjectNone, rep.Objects[1].Type)
}

func TestAssembleReportDiscard(t *testing.T) {
	l := PacketLayout{NrFingers: 1, PacketSize: 6, AttnSize: 6, AbsPosOffset: 1}
	pkt := []byte{0x01, 0x10, 0x20, 0x00, 0x11, 0x25}

	var rep sensor.Report
	rep.Objects[0] = sensor.Object{Type: sensor.ObjectFinger}

	malformed := AssembleReport(pkt, &l, time.Now(), func(time.Time) bool { return true }, &rep)
	require.Equal(t, 0, malformed)
	assert.True(t, rep.Discard)
	assert.Equal(t, 0, rep.Fingers)
}

func TestAssembleReportClampsToPacket(t *testing.T) {
	// Layout claims more fingers than the packet holds; only the decodable
	// region is used.
	l := PacketLayout{NrFingers: 5, PacketSize: 27, AttnSize: 27, AbsPosOffset: 2}
	pkt := make([]byte, 12) // room for two finger records

	var rep sensor.Report
	AssembleReport(pkt, &l, time.Now(), nil, &rep)
	assert.Equal(t, 2, rep.Fingers)
}
