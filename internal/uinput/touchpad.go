//go:build linux

// Package uinput creates the virtual multitouch touchpad that finished
// sensor frames are delivered to, speaking the kernel's MT protocol B.
package uinput

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sys/unix"

	"github.com/rmikit/rmitouch/sensor"
)

// DefaultDevice is the uinput control node.
const DefaultDevice = "/dev/uinput"

type inputID struct {
	Bustype uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

type userDev struct {
	Name       [maxNameSize]byte
	ID         inputID
	EffectsMax uint32
	Absmax     [absSize]int32
	Absmin     [absSize]int32
	Absfuzz    [absSize]int32
	Absflat    [absSize]int32
}

type inputEvent struct {
	Time  unix.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

// Touchpad is a virtual clickpad-style touch device. It implements
// sensor.Sink; delivery is fire-and-forget, write failures are logged and
// the frame dropped.
type Touchpad struct {
	f      *os.File
	logger *slog.Logger

	active   [sensor.MaxFingers]bool
	tracking [sensor.MaxFingers]int32
	nextID   int32
	button   bool

	buf bytes.Buffer
}

// Create registers a virtual touchpad with the given coordinate range on the
// uinput control node at path (DefaultDevice for the kernel default).
func Create(path, name string, maxX, maxY int32, logger *slog.Logger) (*Touchpad, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|unix.O_NONBLOCK, 0o660)
	if err != nil {
		return nil, fmt.Errorf("uinput: open %s: %w", path, err)
	}

	setup := func(req uintptr, arg int) error {
		return ioctl(f, req, uintptr(arg))
	}

	steps := []struct {
		req  uintptr
		args []int
	}{
		{uiSetEvBit, []int{evKey, evAbs}},
		{uiSetKeyBit, []int{btnLeft, btnTouch, btnToolFinger}},
		{uiSetPropBit, []int{inputPropPointer, inputPropButtonpad}},
		{uiSetAbsBit, []int{
			absX, absY,
			absMtSlot, absMtPositionX, absMtPositionY,
			absMtTrackingID, absMtTouchMajor, absMtPressure,
		}},
	}
	for _, st := range steps {
		for _, arg := range st.args {
			if err := setup(st.req, arg); err != nil {
				_ = f.Close()
				return nil, fmt.Errorf("uinput: ioctl %#x(%#x): %w", st.req, arg, err)
			}
		}
	}

	var dev userDev
	copy(dev.Name[:], name)
	dev.ID = inputID{Bustype: busI2C, Vendor: 0x06cb, Product: 0x0011, Version: 1}

	for _, axis := range []int{absX, absMtPositionX} {
		dev.Absmax[axis] = maxX
	}
	for _, axis := range []int{absY, absMtPositionY} {
		dev.Absmax[axis] = maxY
	}
	dev.Absmax[absMtSlot] = sensor.MaxFingers - 1
	dev.Absmax[absMtTouchMajor] = 255
	dev.Absmax[absMtPressure] = 255

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, dev); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("uinput: encode device: %w", err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("uinput: register device: %w", err)
	}
	if err := ioctl(f, uiDevCreate, 0); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("uinput: create device: %w", err)
	}

	return &Touchpad{f: f, logger: logger}, nil
}

// Close destroys the virtual device.
func (t *Touchpad) Close() error {
	_ = ioctl(t.f, uiDevDestroy, 0)
	return t.f.Close()
}

// DeliverFrame implements sensor.Sink: one MT protocol B event batch per
// frame, ending in a SYN_REPORT.
func (t *Touchpad) DeliverFrame(fr *sensor.Frame) {
	t.buf.Reset()
	touching := 0

	for i := 0; i < fr.Contacts; i++ {
		s := &fr.Slots[i]
		if s.Valid {
			touching++
			t.emit(evAbs, absMtSlot, int32(s.ID))
			if !t.active[s.ID] {
				t.active[s.ID] = true
				t.tracking[s.ID] = t.nextID
				t.nextID++
				t.emit(evAbs, absMtTrackingID, t.tracking[s.ID])
			}
			t.emit(evAbs, absMtPositionX, int32(s.X))
			t.emit(evAbs, absMtPositionY, int32(s.Y))
			t.emit(evAbs, absMtTouchMajor, int32(s.Width))
			t.emit(evAbs, absMtPressure, int32(s.Pressure))
		} else if t.active[s.ID] {
			t.active[s.ID] = false
			t.emit(evAbs, absMtSlot, int32(s.ID))
			t.emit(evAbs, absMtTrackingID, -1)
		}
	}

	t.emit(evKey, btnTouch, btoi(touching > 0))
	t.emit(evKey, btnToolFinger, btoi(touching == 1))

	button := false
	for i := 0; i < fr.Contacts; i++ {
		if fr.Slots[i].ButtonDown {
			button = true
			break
		}
	}
	if button != t.button {
		t.button = button
		t.emit(evKey, btnLeft, btoi(button))
	}

	t.emit(evSyn, synReport, 0)

	if _, err := t.f.Write(t.buf.Bytes()); err != nil {
		t.logger.Error("frame delivery failed", "error", err)
	}
}

func (t *Touchpad) emit(typ, code uint16, value int32) {
	ev := inputEvent{Type: typ, Code: code, Value: value}
	_ = binary.Write(&t.buf, binary.LittleEndian, ev)
}

func btoi(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func ioctl(f *os.File, req uintptr, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), req, arg)
	if errno != 0 {
		return errno
	}
	return nil
}
