// Package simbus provides an in-memory register map implementing rmi.Bus,
// plus a canonical clickpad fixture. It backs the driver's tests and the
// sim example; no hardware is required.
package simbus

import (
	"fmt"
	"sync"
)

// Bus is a register-addressed memory with optional per-address error
// injection. Safe for concurrent use, though the driver only ever issues
// one transfer at a time.
type Bus struct {
	mu    sync.Mutex
	regs  map[uint16]byte
	fail  map[uint16]error
	wrote map[uint16][]byte
}

// New returns an empty register map.
func New() *Bus {
	return &Bus{
		regs:  make(map[uint16]byte),
		fail:  make(map[uint16]error),
		wrote: make(map[uint16][]byte),
	}
}

// Program stores data at consecutive registers starting at addr.
func (b *Bus) Program(addr uint16, data ...byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, v := range data {
		b.regs[addr+uint16(i)] = v
	}
}

// FailAt makes any transfer touching addr return err.
func (b *Bus) FailAt(addr uint16, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail[addr] = err
}

// Written returns the last block written at addr, or nil.
func (b *Bus) Written(addr uint16) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.wrote[addr]
}

// Read implements rmi.Bus.
func (b *Bus) Read(addr uint16) (byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.fail[addr]; err != nil {
		return 0, err
	}
	return b.regs[addr], nil
}

// ReadBlock implements rmi.Bus.
func (b *Bus) ReadBlock(addr uint16, buf []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range buf {
		a := addr + uint16(i)
		if err := b.fail[a]; err != nil {
			return fmt.Errorf("simbus: read block at %#04x: %w", a, err)
		}
		buf[i] = b.regs[a]
	}
	return nil
}

// BlockWrite implements rmi.Bus.
func (b *Bus) BlockWrite(addr uint16, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, v := range data {
		a := addr + uint16(i)
		if err := b.fail[a]; err != nil {
			return fmt.Errorf("simbus: write block at %#04x: %w", a, err)
		}
		b.regs[a] = v
	}
	b.wrote[addr] = append([]byte(nil), data...)
	return nil
}
