// Package smbus implements the rmi.Bus transport for an I2C-attached RMI4
// device using periph.io. RMI4 exposes a 16-bit register space over an
// 8-bit bus via a page select register; the page is tracked so steady-state
// traffic stays one transaction per transfer.
package smbus

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// DefaultAddr is the I2C address Synaptics RMI4 touchpads respond on.
const DefaultAddr = 0x20

const pageSelectReg = 0xFF

// Bus is an I2C-attached RMI4 register transport. Transfers are serialized;
// the driver issues one at a time, but control writes from other goroutines
// are tolerated.
type Bus struct {
	mu     sync.Mutex
	dev    i2c.Dev
	closer i2c.BusCloser
	page   int // currently selected page, -1 if unknown
}

// Open initializes the periph host, opens the named I2C bus (empty for the
// first available one) and returns a transport for the device at addr.
func Open(busName string, addr uint16) (*Bus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("smbus: host init: %w", err)
	}
	b, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("smbus: open %q: %w", busName, err)
	}
	return &Bus{
		dev:    i2c.Dev{Bus: b, Addr: addr},
		closer: b,
		page:   -1,
	}, nil
}

// Close releases the underlying I2C bus.
func (b *Bus) Close() error {
	return b.closer.Close()
}

// setPage selects the register page for addr if it isn't current. The page
// cache is invalidated on failure so the next transfer retries the select.
func (b *Bus) setPage(page byte) error {
	if b.page == int(page) {
		return nil
	}
	if err := b.dev.Tx([]byte{pageSelectReg, page}, nil); err != nil {
		b.page = -1
		return fmt.Errorf("smbus: select page %#02x: %w", page, err)
	}
	b.page = int(page)
	return nil
}

// Read implements rmi.Bus.
func (b *Bus) Read(addr uint16) (byte, error) {
	var buf [1]byte
	if err := b.ReadBlock(addr, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadBlock implements rmi.Bus.
func (b *Bus) ReadBlock(addr uint16, buf []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.setPage(byte(addr >> 8)); err != nil {
		return err
	}
	if err := b.dev.Tx([]byte{byte(addr)}, buf); err != nil {
		return fmt.Errorf("smbus: read %d bytes at %#04x: %w", len(buf), addr, err)
	}
	return nil
}

// BlockWrite implements rmi.Bus.
func (b *Bus) BlockWrite(addr uint16, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.setPage(byte(addr >> 8)); err != nil {
		return err
	}
	w := make([]byte, 1+len(data))
	w[0] = byte(addr)
	copy(w[1:], data)
	if err := b.dev.Tx(w, nil); err != nil {
		return fmt.Errorf("smbus: write %d bytes at %#04x: %w", len(data), addr, err)
	}
	return nil
}
