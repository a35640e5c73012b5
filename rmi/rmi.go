// Package rmi provides the register-addressed bus abstraction and shared
// plumbing for Synaptics RMI4 function handlers.
package rmi

import "errors"

// Bus is the synchronous register transport an RMI4 device is reached
// through. Implementations cover real hardware (SMBus/I2C) as well as the
// in-memory simulator used by tests. All calls block until the transfer
// completes or fails; retry policy, if any, belongs to the implementation.
type Bus interface {
	// Read reads a single byte register.
	Read(addr uint16) (byte, error)
	// ReadBlock fills buf from consecutive registers starting at addr.
	ReadBlock(addr uint16, buf []byte) error
	// BlockWrite writes data to consecutive registers starting at addr.
	BlockWrite(addr uint16, data []byte) error
}

// ErrUnsupportedDevice is returned during initialization when capability
// negotiation succeeded but the device lacks features the driver cannot work
// without (absolute position reporting, physical sensor size).
var ErrUnsupportedDevice = errors.New("rmi: device lacks mandatory capabilities")
