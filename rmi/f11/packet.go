package f11

import (
	"time"

	"github.com/rmikit/rmitouch/sensor"
)

// FingerState is the raw 2-bit per-finger presence code from the leading
// bitmap region of a data packet.
type FingerState uint8

const (
	// StateNone: no contact on this slot.
	StateNone FingerState = fingerStateNone
	// StatePresent: contact present with positional accuracy.
	StatePresent FingerState = fingerStatePresent
	// StateInaccurate: contact present without accuracy (hover).
	StateInaccurate FingerState = fingerStateInaccurate
	// StateReserved: invalid bit pattern; the slot is skipped for this
	// packet only.
	StateReserved FingerState = fingerStateReserved
)

// fingerStateAt extracts slot i's 2-bit state from the bitmap region. Slot i
// lives at byte i/4, bit offset (i%4)*2.
func fingerStateAt(pkt []byte, i int) FingerState {
	return FingerState(pkt[i/4] >> ((i % 4) * 2) & 0x03)
}

// DecodeSlot extracts one contact from a raw packet. It never fails: a
// reserved state yields a zero Object and is the caller's job to count. The
// caller bounds-checks i against the layout's finger count.
func DecodeSlot(pkt []byte, l *PacketLayout, i int) (FingerState, sensor.Object) {
	state := fingerStateAt(pkt, i)
	if state == StateReserved || state == StateNone {
		return state, sensor.Object{}
	}

	pos := pkt[l.AbsPosOffset+i*absBytesPerFinger:]
	obj := sensor.Object{
		X:  uint16(pos[0])<<4 | uint16(pos[2])&0x0F,
		Y:  uint16(pos[1])<<4 | uint16(pos[2])>>4,
		Z:  pos[4],
		WX: pos[3] & 0x0F,
		WY: pos[3] >> 4,
	}
	// Only a full-accuracy contact is a finger; a hover contact keeps its
	// slot but is treated as inactive.
	if state == StatePresent {
		obj.Type = sensor.ObjectFinger
	}
	return state, obj
}

// AssembleReport decodes every finger slot of a raw packet into rep. When
// discard reports true for now, decoding is skipped entirely and the report
// carries zero fingers; the packet still counts as consumed.
//
// The active slot count is clamped to what the packet can actually hold, in
// case the negotiated finger count and packet size ever disagree. The return
// value is the number of reserved (malformed) slots encountered.
func AssembleReport(pkt []byte, l *PacketLayout, now time.Time, discard func(time.Time) bool, rep *sensor.Report) int {
	rep.Timestamp = now
	rep.Fingers = 0
	rep.Discard = false

	if discard != nil && discard(now) {
		rep.Discard = true
		return 0
	}

	fingers := l.NrFingers
	if fingers*absBytesPerFinger > len(pkt) {
		fingers = len(pkt) / absBytesPerFinger
	}

	malformed := 0
	for i := 0; i < fingers; i++ {
		state, obj := DecodeSlot(pkt, l, i)
		if state == StateReserved {
			malformed++
		}
		rep.Objects[i] = obj
	}
	rep.Fingers = fingers
	return malformed
}
