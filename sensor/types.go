package sensor

import "time"

// ObjectType is the coarse classification of one decoded contact.
type ObjectType uint8

const (
	ObjectNone ObjectType = iota
	ObjectFinger
	ObjectStylus
)

// MaxFingers is the protocol ceiling for simultaneous contacts; the F11
// finger-count code tops out at ten.
const MaxFingers = 10

// Object is one decoded contact in device coordinates: absolute position,
// size/pressure proxy and the two width nibbles used for shape heuristics.
type Object struct {
	Type ObjectType
	X, Y uint16
	Z    uint8
	WX   uint8
	WY   uint8
}

// Report is the transient per-packet decode result. It is built by the
// function handler for every attention event, folded into the sensor state
// and then cleared. Objects[:Fingers] is the valid region.
type Report struct {
	Timestamp time.Time
	Fingers   int
	// Discard marks a report dropped before decoding (touchpad disabled or
	// typing cooldown); consumers must leave all slot state untouched.
	Discard bool
	Objects [MaxFingers]Object
}

// FingerType is the persistent identity assigned to a contact for the
// duration of its continuous touch. The host uses it for per-finger gesture
// tracking, so it must stay stable while the contact remains valid.
type FingerType uint8

const (
	TypeUndefined FingerType = iota
	TypeThumb
	TypeIndex
	TypeMiddle
	TypeRing
	TypeLittle

	typeCount
)

// Slot is one host-facing transducer: a physical contact slot together with
// its assigned identity and output coordinates.
type Slot struct {
	// ID is the physical slot index the contact was reported on.
	ID int
	// Valid reports whether the contact survived type and palm checks.
	Valid bool
	Type  FingerType
	// X, Y are host coordinates (Y flipped from device coordinates).
	X, Y         uint16
	PrevX, PrevY uint16
	// Width is the contact size derived from the Z proxy.
	Width uint8
	// Pressure is binary: 255 while the force-touch lock is engaged, else 0.
	Pressure uint8
	// ButtonDown reports a mechanical clickpad press not absorbed by the
	// force-touch lock.
	ButtonDown bool
}

// Frame is one finished multitouch event delivered to the host input
// collaborator. Slots[:Contacts] is the valid region.
type Frame struct {
	Timestamp time.Time
	Contacts  int
	Slots     [MaxFingers]Slot
}

// Sink consumes finished frames. Delivery is fire-and-forget: the sensor
// does not wait for, or react to, the consumer.
type Sink interface {
	DeliverFrame(*Frame)
}

// Tee fans every frame out to several sinks in order.
type Tee []Sink

func (t Tee) DeliverFrame(f *Frame) {
	for _, s := range t {
		s.DeliverFrame(f)
	}
}
