package f11

import "fmt"

// PacketLayout is the fixed shape of one attention data packet, derived from
// the negotiated capability record. Computed once at initialization and
// treated as immutable for the life of the session.
type PacketLayout struct {
	// NrFingers is the resolved finger count (the wire code is a code, not
	// a count).
	NrFingers int
	// PacketSize is the full data block size in bytes.
	PacketSize int
	// AttnSize is the subset read on simple touch interrupts.
	AttnSize int
	// AbsPosOffset is the byte offset of the per-finger absolute data
	// region; the finger-state bitmap occupies [0, AbsPosOffset).
	AbsPosOffset int
}

// resolveFingerCount maps the 3-bit wire code to a finger count: code 5
// means ten fingers, everything else is code+1.
func resolveFingerCount(code uint8) int {
	if code == 5 {
		return 10
	}
	return int(code) + 1
}

// ComputeLayout derives the packet layout from a capability record. It is a
// pure function of q and cannot fail on any record the query decoder can
// produce; an out-of-range finger code indicates corrupt negotiation and
// panics rather than clamping.
func ComputeLayout(q *SensorQueries) PacketLayout {
	if q.NrFingers > nrFingersMask {
		panic(fmt.Sprintf("f11: finger count code %d out of protocol range", q.NrFingers))
	}

	var l PacketLayout
	l.NrFingers = resolveFingerCount(q.NrFingers)

	// Leading bitmap: 2 bits per finger, packed four to a byte.
	l.PacketSize = (l.NrFingers + 3) / 4
	l.AbsPosOffset = l.PacketSize

	if q.HasAbs {
		l.PacketSize += l.NrFingers * absBytesPerFinger
		l.AttnSize = l.PacketSize
	}

	if q.HasRel {
		l.PacketSize += l.NrFingers * relBytesPerFinger
	}

	if q.Query7Nonzero {
		l.PacketSize++
	}
	if q.Query7Nonzero || q.Query8Nonzero {
		l.PacketSize++
	}

	// One byte per supported gesture among pinch/flick/rotate.
	if q.HasPinch || q.HasFlick || q.HasRotate {
		l.PacketSize += 3
		if !q.HasFlick {
			l.PacketSize--
		}
		if !q.HasRotate {
			l.PacketSize--
		}
	}

	if q.HasTouchShapes {
		l.PacketSize += (int(q.NrTouchShapes) + 1 + 7) / 8
	}

	// Advanced coordinate mode widens the interrupt-driven short read but
	// not the full data block.
	if q.HasACM {
		l.AttnSize += l.NrFingers * relBytesPerFinger
	}

	return l
}
