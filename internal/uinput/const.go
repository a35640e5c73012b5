//go:build linux

package uinput

// From uinput.h.
const (
	uiDevCreate  = 0x5501
	uiDevDestroy = 0x5502
	uiSetEvBit   = 0x40045564
	uiSetKeyBit  = 0x40045565
	uiSetAbsBit  = 0x40045567
	uiSetPropBit = 0x4004556a

	maxNameSize = 80
	absSize     = 64
)

// From input-event-codes.h.
const (
	evSyn = 0x00
	evKey = 0x01
	evAbs = 0x03

	synReport = 0x00

	btnLeft       = 0x110
	btnToolFinger = 0x145
	btnTouch      = 0x14a

	absX             = 0x00
	absY             = 0x01
	absMtSlot        = 0x2f
	absMtTouchMajor  = 0x30
	absMtPositionX   = 0x35
	absMtPositionY   = 0x36
	absMtTrackingID  = 0x39
	absMtPressure    = 0x3a

	inputPropPointer   = 0x00
	inputPropButtonpad = 0x02

	busI2C = 0x18
)
