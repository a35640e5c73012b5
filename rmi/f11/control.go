package f11

import (
	"fmt"

	"github.com/rmikit/rmitouch/rmi"
)

// controlRegs mirrors the device's ctrl0..ctrl11 behavior block. It is read
// once at startup, adjusted, and written back; later rewrites (after a
// resume, for instance) must happen outside the attention path.
type controlRegs struct {
	baseAddr uint16
	regs     [ctrlRegCount]byte
}

func (c *controlRegs) read(bus rmi.Bus, base uint16) error {
	c.baseAddr = base
	if err := bus.ReadBlock(base, c.regs[:]); err != nil {
		return fmt.Errorf("f11: read control block at %#04x: %w", base, err)
	}
	return nil
}

func (c *controlRegs) write(bus rmi.Bus) error {
	if err := bus.BlockWrite(c.baseAddr, c.regs[:]); err != nil {
		return fmt.Errorf("f11: write control block at %#04x: %w", c.baseAddr, err)
	}
	return nil
}

// apply adjusts the block for this driver: dribble packets and firmware palm
// detection are both turned off when present, since the sensor state machine
// does its own palm rejection and dribble only adds noise.
func (c *controlRegs) apply(q *SensorQueries) {
	if q.HasDribble {
		c.regs[ctrlDribbleReg] &^= ctrlDribbleBit
	}
	if q.HasPalmDet {
		c.regs[ctrlPalmReg] &^= ctrlPalmBit
	}
}

// readMaxPos reads the sensor's maximum X/Y coordinates from the control
// block (16-bit little-endian at fixed offsets).
func readMaxPos(bus rmi.Bus, ctrlBase uint16) (maxX, maxY uint16, err error) {
	var buf [2]byte
	if err := bus.ReadBlock(ctrlBase+ctrlMaxXPosOffset, buf[:]); err != nil {
		return 0, 0, fmt.Errorf("f11: read max x: %w", err)
	}
	maxX = uint16(buf[0]) | uint16(buf[1])<<8
	if err := bus.ReadBlock(ctrlBase+ctrlMaxYPosOffset, buf[:]); err != nil {
		return 0, 0, fmt.Errorf("f11: read max y: %w", err)
	}
	maxY = uint16(buf[0]) | uint16(buf[1])<<8
	return maxX, maxY, nil
}
