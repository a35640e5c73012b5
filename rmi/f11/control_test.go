package f11

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmikit/rmitouch/simbus"
)

func TestControlSyncClearsFirmwareFilters(t *testing.T) {
	pad := simbus.NewClickpad()

	var c controlRegs
	require.NoError(t, c.read(pad, pad.FD.ControlBase))
	assert.NotZero(t, c.regs[ctrlDribbleReg]&ctrlDribbleBit)
	assert.NotZero(t, c.regs[ctrlPalmReg]&ctrlPalmBit)

	c.apply(&SensorQueries{HasDribble: true, HasPalmDet: true})
	require.NoError(t, c.write(pad))

	written := pad.Written(pad.FD.ControlBase)
	require.Len(t, written, ctrlRegCount)
	assert.Zero(t, written[ctrlDribbleReg]&ctrlDribbleBit)
	assert.Zero(t, written[ctrlPalmReg]&ctrlPalmBit)
}

func TestControlSyncLeavesBitsWithoutCapability(t *testing.T) {
	pad := simbus.NewClickpad()

	var c controlRegs
	require.NoError(t, c.read(pad, pad.FD.ControlBase))

	// Neither capability present: the block is written back untouched.
	c.apply(&SensorQueries{})
	require.NoError(t, c.write(pad))

	written := pad.Written(pad.FD.ControlBase)
	assert.NotZero(t, written[ctrlDribbleReg]&ctrlDribbleBit)
	assert.NotZero(t, written[ctrlPalmReg]&ctrlPalmBit)
}

func TestReadMaxPos(t *testing.T) {
	pad := simbus.NewClickpad()

	maxX, maxY, err := readMaxPos(pad, pad.FD.ControlBase)
	require.NoError(t, err)
	assert.Equal(t, uint16(simbus.ClickpadMaxX), maxX)
	assert.Equal(t, uint16(simbus.ClickpadMaxY), maxY)
}
