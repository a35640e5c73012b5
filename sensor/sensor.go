// Package sensor turns per-packet touch reports into a stable multitouch
// event stream: persistent finger identities, palm rejection and force-touch
// click emulation.
package sensor

import (
	"log/slog"
	"sync"
	"time"
)

// Palm rejection thresholds: contacts at or above this size, or with
// sufficiently anisotropic widths, are palms or edge touches, not fingers.
const (
	palmMaxZ         = 120
	palmMaxWidthSkew = 3
)

// Config holds the behavior knobs read once at initialization.
type Config struct {
	// DisableWhileTyping suppresses reports for this long after keyboard
	// activity.
	DisableWhileTyping time.Duration `help:"Ignore touch input for this long after a key press" default:"500ms" env:"RMITOUCH_DISABLE_WHILE_TYPING"`
	// ForceTouchMinPressure is the Z threshold that engages the force-touch
	// lock while the clickpad is pressed.
	ForceTouchMinPressure uint8 `help:"Pressure threshold for force touch emulation" default:"80" env:"RMITOUCH_FORCE_TOUCH_MIN_PRESSURE"`
	// ForceTouchEmulation enables the pressure lock altogether.
	ForceTouchEmulation bool `help:"Emulate force touch via the clickpad" default:"true" negatable:"" env:"RMITOUCH_FORCE_TOUCH_EMULATION"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		DisableWhileTyping:    500 * time.Millisecond,
		ForceTouchMinPressure: 80,
		ForceTouchEmulation:   true,
	}
}

// Sensor is the per-session multitouch state machine. HandleReport and
// ShouldDiscard are only ever called from the single attention-servicing
// goroutine; the external control signals (clickpad, keyboard activity,
// enable flag) may arrive from other goroutines and are guarded by their own
// mutex, kept off the decode path.
type Sensor struct {
	cfg    Config
	logger *slog.Logger

	// Device geometry, fixed after initialization.
	maxX, maxY uint16
	xMM, yMM   uint16

	mu           sync.Mutex
	enabled      bool
	clickpad     bool
	lastKeyboard time.Time

	free         [typeCount]bool
	pressureLock bool
	frame        Frame

	sink Sink
}

// New returns a Sensor with every finger identity free and the touchpad
// enabled.
func New(cfg Config, logger *slog.Logger) *Sensor {
	s := &Sensor{
		cfg:     cfg,
		logger:  logger,
		enabled: true,
	}
	for t := TypeThumb; t < typeCount; t++ {
		s.free[t] = true
	}
	return s
}

// SetGeometry records the device coordinate range and physical size read
// during capability negotiation. Must be called before the first report.
func (s *Sensor) SetGeometry(maxX, maxY, xMM, yMM uint16) {
	s.maxX, s.maxY = maxX, maxY
	s.xMM, s.yMM = xMM, yMM
}

// Geometry returns the recorded coordinate range and physical size.
func (s *Sensor) Geometry() (maxX, maxY, xMM, yMM uint16) {
	return s.maxX, s.maxY, s.xMM, s.yMM
}

// Attach sets the frame consumer. Frames produced while no sink is attached
// are dropped.
func (s *Sensor) Attach(sink Sink) { s.sink = sink }

// SetEnabled toggles whether reports are processed at all.
func (s *Sensor) SetEnabled(on bool) {
	s.mu.Lock()
	s.enabled = on
	s.mu.Unlock()
}

// Enabled reports the current enable flag.
func (s *Sensor) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Config returns the behavior knobs the sensor was built with.
func (s *Sensor) Config() Config { return s.cfg }

// ClickpadPressed reports the last recorded mechanical press signal.
func (s *Sensor) ClickpadPressed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clickpad
}

// SetClickpadState records the mechanical clickpad press signal.
func (s *Sensor) SetClickpadState(pressed bool) {
	s.mu.Lock()
	s.clickpad = pressed
	s.mu.Unlock()
}

// NotifyKeyboardActivity records a key press timestamp for the
// disable-while-typing window.
func (s *Sensor) NotifyKeyboardActivity(ts time.Time) {
	s.mu.Lock()
	if ts.After(s.lastKeyboard) {
		s.lastKeyboard = ts
	}
	s.mu.Unlock()
}

// ShouldDiscard reports whether a packet arriving at now should be dropped
// without decoding: touchpad disabled or still inside the typing cooldown.
func (s *Sensor) ShouldDiscard(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.enabled ||
		(!s.lastKeyboard.IsZero() && now.Sub(s.lastKeyboard) < s.cfg.DisableWhileTyping)
}

// HandleReport folds one decoded report into the persistent slot state and
// delivers the resulting frame. The report is cleared afterwards.
func (s *Sensor) HandleReport(rep *Report) {
	s.mu.Lock()
	clickpad := s.clickpad
	s.mu.Unlock()

	transducers := 0
	realFingers := 0

	for i := 0; i < rep.Fingers; i++ {
		obj := rep.Objects[i]
		isValid := obj.Type == ObjectFinger || obj.Type == ObjectStylus

		t := &s.frame.Slots[transducers]
		transducers++
		t.ID = i
		t.Valid = isValid

		if !isValid {
			continue
		}
		realFingers++

		// Rudimentary palm detection.
		t.Valid = obj.Z < palmMaxZ && widthSkew(obj.WX, obj.WY) < palmMaxWidthSkew
		t.PrevX, t.PrevY = t.X, t.Y
		t.Width = uint8(uint16(obj.Z) * 2 / 3)

		// Multi-finger activity cancels single-finger force touch.
		if realFingers != 1 {
			s.pressureLock = false
		}

		if !s.pressureLock {
			t.X = obj.X
			t.Y = s.maxY - obj.Y
		} else {
			// Lock position for force touch.
			t.X, t.Y = t.PrevX, t.PrevY
		}

		if clickpad && s.cfg.ForceTouchEmulation && obj.Z > s.cfg.ForceTouchMinPressure {
			s.pressureLock = true
		}

		if s.pressureLock {
			t.Pressure = 255
		} else {
			t.Pressure = 0
		}
		t.ButtonDown = clickpad && !s.pressureLock

		s.logger.Debug("finger",
			"slot", i, "x", obj.X, "y", obj.Y,
			"z", obj.Z, "wx", obj.WX, "wy", obj.WY,
			"type", t.Type, "pressure", t.Pressure, "button", t.ButtonDown)
	}

	if realFingers == 4 && s.free[TypeThumb] {
		s.assignThumb(rep.Fingers)
	}

	// Second pass: identity assignment and release.
	for i := 0; i < rep.Fingers; i++ {
		t := &s.frame.Slots[i]
		if t.Valid {
			if t.Type == TypeUndefined {
				t.Type = s.takeFingerType()
			}
		} else {
			if t.Type != TypeUndefined {
				s.free[t.Type] = true
			}
			t.Type = TypeUndefined
		}
	}

	s.frame.Contacts = transducers
	s.frame.Timestamp = rep.Timestamp

	if realFingers == 0 {
		s.pressureLock = false
	}

	if s.sink != nil {
		s.sink.DeliverFrame(&s.frame)
	}
	*rep = Report{}
}

// assignThumb force-assigns the thumb identity to the contact closest to the
// user (largest flipped Y), pre-empting normal allocation.
func (s *Sensor) assignThumb(fingers int) {
	lowest := -1
	var maxY uint16
	for i := 0; i < fingers; i++ {
		t := &s.frame.Slots[i]
		if t.Valid && t.Y > maxY {
			maxY = t.Y
			lowest = i
		}
	}
	if lowest == -1 {
		s.logger.Error("no valid contact found for thumb assignment with 4 fingers down")
		return
	}

	t := &s.frame.Slots[lowest]
	if t.Type != TypeUndefined {
		s.free[t.Type] = true
	}
	t.Type = TypeThumb
	s.free[TypeThumb] = false
}

// takeFingerType allocates the lowest free non-thumb identity, or Undefined
// when the pool is exhausted.
func (s *Sensor) takeFingerType() FingerType {
	for t := TypeIndex; t < typeCount; t++ {
		if s.free[t] {
			s.free[t] = false
			return t
		}
	}
	return TypeUndefined
}

func widthSkew(wx, wy uint8) uint8 {
	if wx > wy {
		return wx - wy
	}
	return wy - wx
}
