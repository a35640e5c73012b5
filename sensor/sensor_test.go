package sensor

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testMaxX = 1216
	testMaxY = 672
)

type captureSink struct {
	frames []Frame
}

func (c *captureSink) DeliverFrame(fr *Frame) { c.frames = append(c.frames, *fr) }

func newTestSensor(t *testing.T) (*Sensor, *captureSink) {
	t.Helper()
	sink := &captureSink{}
	s := New(DefaultConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.SetGeometry(testMaxX, testMaxY, 100, 60)
	s.Attach(sink)
	return s, sink
}

func finger(x, y uint16, z uint8) Object {
	return Object{Type: ObjectFinger, X: x, Y: y, Z: z, WX: 4, WY: 4}
}

func report(objs ...Object) *Report {
	rep := &Report{Timestamp: time.Now(), Fingers: len(objs)}
	copy(rep.Objects[:], objs)
	return rep
}

func TestPalmRejection(t *testing.T) {
	tests := []struct {
		name  string
		obj   Object
		valid bool
	}{
		{"normal finger", Object{Type: ObjectFinger, X: 100, Y: 100, Z: 40, WX: 4, WY: 5}, true},
		{"large contact", Object{Type: ObjectFinger, X: 100, Y: 100, Z: 120, WX: 4, WY: 5}, false},
		{"anisotropic contact", Object{Type: ObjectFinger, X: 100, Y: 100, Z: 40, WX: 2, WY: 8}, false},
		{"skew just under threshold", Object{Type: ObjectFinger, X: 100, Y: 100, Z: 40, WX: 6, WY: 4}, true},
		{"no contact", Object{}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, sink := newTestSensor(t)
			s.HandleReport(report(tc.obj))
			require.Len(t, sink.frames, 1)
			assert.Equal(t, tc.valid, sink.frames[0].Slots[0].Valid)
		})
	}
}

func TestYAxisFlip(t *testing.T) {
	s, sink := newTestSensor(t)
	s.HandleReport(report(finger(300, 100, 40)))

	fr := sink.frames[0]
	assert.Equal(t, uint16(300), fr.Slots[0].X)
	assert.Equal(t, uint16(testMaxY-100), fr.Slots[0].Y)
}

func TestWidthFromPressure(t *testing.T) {
	s, sink := newTestSensor(t)
	s.HandleReport(report(finger(300, 100, 60)))
	assert.Equal(t, uint8(40), sink.frames[0].Slots[0].Width)
}

func TestIdentityAllocationOrder(t *testing.T) {
	s, sink := newTestSensor(t)

	s.HandleReport(report(
		finger(100, 100, 40),
		finger(200, 100, 40),
		finger(300, 100, 40),
	))
	fr := sink.frames[0]
	assert.Equal(t, TypeIndex, fr.Slots[0].Type)
	assert.Equal(t, TypeMiddle, fr.Slots[1].Type)
	assert.Equal(t, TypeRing, fr.Slots[2].Type)
}

func TestIdentityReleaseAndReuse(t *testing.T) {
	s, sink := newTestSensor(t)

	s.HandleReport(report(finger(100, 100, 40), finger(200, 100, 40)))
	s.HandleReport(report(Object{}, finger(210, 110, 40)))
	s.HandleReport(report(finger(50, 50, 40), finger(220, 120, 40)))

	second := sink.frames[1]
	assert.False(t, second.Slots[0].Valid)
	assert.Equal(t, TypeUndefined, second.Slots[0].Type)
	assert.Equal(t, TypeMiddle, second.Slots[1].Type)

	third := sink.frames[2]
	assert.Equal(t, TypeIndex, third.Slots[0].Type)
	assert.Equal(t, TypeMiddle, third.Slots[1].Type)
}

func TestThumbAssignedAtExactlyFourContacts(t *testing.T) {
	s, sink := newTestSensor(t)

	// Three contacts: no thumb.
	s.HandleReport(report(
		finger(100, 500, 40), finger(200, 500, 40), finger(300, 500, 40),
	))
	for i := 0; i < 3; i++ {
		assert.NotEqual(t, TypeThumb, sink.frames[0].Slots[i].Type)
	}

	// Fourth contact low on the pad becomes the thumb.
	s.HandleReport(report(
		finger(100, 500, 40), finger(200, 500, 40), finger(300, 500, 40),
		finger(250, 100, 40),
	))
	fr := sink.frames[1]
	assert.Equal(t, TypeThumb, fr.Slots[3].Type)
}

func TestThumbNotReassignedWhileHeld(t *testing.T) {
	s, sink := newTestSensor(t)

	four := report(
		finger(100, 500, 40), finger(200, 500, 40), finger(300, 500, 40),
		finger(250, 100, 40),
	)
	s.HandleReport(four)

	// Thumb taken; a second four-contact report must not steal it from a
	// different slot.
	s.HandleReport(report(
		finger(100, 100, 40), finger(200, 500, 40), finger(300, 500, 40),
		finger(250, 510, 40),
	))
	fr := sink.frames[1]
	assert.Equal(t, TypeThumb, fr.Slots[3].Type)
	assert.NotEqual(t, TypeThumb, fr.Slots[0].Type)
}

func TestForceTouchLock(t *testing.T) {
	s, sink := newTestSensor(t)
	s.SetClickpadState(true)

	s.HandleReport(report(finger(400, 300, 100)))
	s.HandleReport(report(finger(450, 350, 100)))

	fr := sink.frames[1]
	assert.Equal(t, uint8(255), fr.Slots[0].Pressure)
	assert.False(t, fr.Slots[0].ButtonDown)
	// Position frozen at the pre-lock coordinates.
	assert.Equal(t, uint16(400), fr.Slots[0].X)
	assert.Equal(t, uint16(testMaxY-300), fr.Slots[0].Y)
}

func TestForceTouchRequiresEmulationEnabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ForceTouchEmulation = false
	sink := &captureSink{}
	s := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.SetGeometry(testMaxX, testMaxY, 100, 60)
	s.Attach(sink)
	s.SetClickpadState(true)

	s.HandleReport(report(finger(400, 300, 100)))
	s.HandleReport(report(finger(450, 350, 100)))

	fr := sink.frames[1]
	assert.Equal(t, uint8(0), fr.Slots[0].Pressure)
	assert.True(t, fr.Slots[0].ButtonDown)
	assert.Equal(t, uint16(450), fr.Slots[0].X)
}

func TestForceTouchDefeatedByMultipleFingers(t *testing.T) {
	s, sink := newTestSensor(t)
	s.SetClickpadState(true)

	s.HandleReport(report(finger(400, 300, 100)))
	// A second finger lands: the lock is dropped from the second contact
	// onward.
	s.HandleReport(report(finger(410, 310, 100), finger(600, 300, 40)))

	fr := sink.frames[1]
	assert.Equal(t, uint16(600), fr.Slots[1].X)
	assert.Equal(t, uint8(0), fr.Slots[1].Pressure)
	assert.True(t, fr.Slots[1].ButtonDown)

	// With the pad released both contacts report live positions again.
	s.SetClickpadState(false)
	s.HandleReport(report(finger(420, 320, 100), finger(610, 310, 40)))
	fr = sink.frames[2]
	assert.Equal(t, uint16(420), fr.Slots[0].X)
	assert.Equal(t, uint8(0), fr.Slots[0].Pressure)
}

func TestForceTouchReleasedAtZeroFingers(t *testing.T) {
	s, sink := newTestSensor(t)
	s.SetClickpadState(true)

	s.HandleReport(report(finger(400, 300, 100)))
	s.SetClickpadState(false)
	s.HandleReport(report())
	s.HandleReport(report(finger(500, 400, 40)))

	fr := sink.frames[2]
	assert.Equal(t, uint8(0), fr.Slots[0].Pressure)
	assert.Equal(t, uint16(500), fr.Slots[0].X)
}

func TestButtonDownFollowsClickpad(t *testing.T) {
	s, sink := newTestSensor(t)

	s.HandleReport(report(finger(100, 100, 40)))
	assert.False(t, sink.frames[0].Slots[0].ButtonDown)

	s.SetClickpadState(true)
	s.HandleReport(report(finger(100, 100, 40)))
	assert.True(t, sink.frames[1].Slots[0].ButtonDown)
}

func TestShouldDiscard(t *testing.T) {
	s, _ := newTestSensor(t)
	now := time.Now()

	assert.False(t, s.ShouldDiscard(now))

	s.NotifyKeyboardActivity(now)
	assert.True(t, s.ShouldDiscard(now.Add(499*time.Millisecond)))
	assert.False(t, s.ShouldDiscard(now.Add(501*time.Millisecond)))

	s.SetEnabled(false)
	assert.True(t, s.ShouldDiscard(now.Add(time.Second)))
	s.SetEnabled(true)
	assert.False(t, s.ShouldDiscard(now.Add(time.Second)))
}

func TestKeyboardTimestampsNeverRewind(t *testing.T) {
	s, _ := newTestSensor(t)
	now := time.Now()

	s.NotifyKeyboardActivity(now)
	s.NotifyKeyboardActivity(now.Add(-time.Minute))
	assert.True(t, s.ShouldDiscard(now.Add(100*time.Millisecond)))
}

func TestReportClearedAfterHandling(t *testing.T) {
	s, _ := newTestSensor(t)
	rep := report(finger(100, 100, 40))
	s.HandleReport(rep)
	assert.Equal(t, Report{}, *rep)
}
