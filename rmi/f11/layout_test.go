package f11

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveFingerCount(t *testing.T) {
	tests := []struct {
		code uint8
		want int
	}{
		{0, 1},
		{1, 2},
		{2, 3},
		{3, 4},
		{4, 5},
		{5, 10},
		{6, 7},
		{7, 8},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, resolveFingerCount(tc.code), "code %d", tc.code)
	}
}

func TestComputeLayout(t *testing.T) {
	tests := []struct {
		name    string
		q       SensorQueries
		want    PacketLayout
	}{
		{
			name: "one finger abs only",
			q:    SensorQueries{NrFingers: 0, HasAbs: true},
			want: PacketLayout{NrFingers: 1, PacketSize: 6, AttnSize: 6, AbsPosOffset: 1},
		},
		{
			name: "five finger clickpad",
			q: SensorQueries{
				NrFingers: 4, HasAbs: true, HasGestures: true,
				Query8Nonzero: true, HasPalmDet: true,
			},
			want: PacketLayout{NrFingers: 5, PacketSize: 28, AttnSize: 27, AbsPosOffset: 2},
		},
		{
			name: "ten fingers with rel",
			q:    SensorQueries{NrFingers: 5, HasAbs: true, HasRel: true},
			want: PacketLayout{NrFingers: 10, PacketSize: 3 + 50 + 20, AttnSize: 53, AbsPosOffset: 3},
		},
		{
			name: "query7 gestures add two bytes",
			q: SensorQueries{
				NrFingers: 0, HasAbs: true,
				Query7Nonzero: true, Query8Nonzero: true,
			},
			want: PacketLayout{NrFingers: 1, PacketSize: 8, AttnSize: 6, AbsPosOffset: 1},
		},
		{
			name: "pinch only",
			q:    SensorQueries{NrFingers: 0, HasAbs: true, HasPinch: true, Query7Nonzero: true},
			want: PacketLayout{NrFingers: 1, PacketSize: 6 + 2 + 1, AttnSize: 6, AbsPosOffset: 1},
		},
		{
			name: "pinch flick rotate",
			q: SensorQueries{
				NrFingers: 0, HasAbs: true,
				HasPinch: true, HasFlick: true, HasRotate: true, Query7Nonzero: true,
			},
			want: PacketLayout{NrFingers: 1, PacketSize: 6 + 2 + 3, AttnSize: 6, AbsPosOffset: 1},
		},
		{
			name: "touch shapes rounded to bytes",
			q: SensorQueries{
				NrFingers: 0, HasAbs: true, HasGestures: true,
				Query8Nonzero: true, HasTouchShapes: true, NrTouchShapes: 8,
			},
			want: PacketLayout{NrFingers: 1, PacketSize: 6 + 1 + 2, AttnSize: 6, AbsPosOffset: 1},
		},
		{
			name: "acm widens attention read only",
			q:    SensorQueries{NrFingers: 4, HasAbs: true, HasACM: true},
			want: PacketLayout{NrFingers: 5, PacketSize: 27, AttnSize: 27 + 10, AbsPosOffset: 2},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ComputeLayout(&tc.q))
		})
	}
}

// Without advanced coordinate mode the attention read is always a prefix of
// the full data block.
func TestAttentionReadWithinPacket(t *testing.T) {
	for code := uint8(0); code <= 7; code++ {
		for bits := 0; bits < 64; bits++ {
			q := SensorQueries{
				NrFingers:     code,
				HasAbs:        true,
				HasRel:        bits&1 != 0,
				Query7Nonzero: bits&2 != 0,
				Query8Nonzero: bits&4 != 0,
				HasPinch:      bits&8 != 0,
				HasFlick:      bits&16 != 0,
				HasRotate:     bits&32 != 0,
			}
			l := ComputeLayout(&q)
			assert.LessOrEqual(t, l.AttnSize, l.PacketSize,
				"code=%d bits=%06b", code, bits)
		}
	}
}

func TestComputeLayoutPanicsOnCorruptCode(t *testing.T) {
	q := SensorQueries{NrFingers: 8, HasAbs: true}
	assert.Panics(t, func() { ComputeLayout(&q) })
}
