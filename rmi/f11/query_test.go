package f11

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmikit/rmitouch/rmi"
	"github.com/rmikit/rmitouch/simbus"
)

func decodeClickpad(t *testing.T, pad *simbus.Clickpad) (SensorQueries, int, error) {
	t.Helper()

	q0, err := pad.Read(pad.FD.QueryBase)
	require.NoError(t, err)

	var q SensorQueries
	q.ExtQuery9 = q0&hasQuery9 != 0
	q.ExtQuery11 = q0&hasQuery11 != 0
	q.ExtQuery12 = q0&hasQuery12 != 0
	q.ExtQuery27 = q0&hasQuery27 != 0
	q.ExtQuery28 = q0&hasQuery28 != 0

	return DecodeQueries(pad, pad.FD.QueryBase+1, q)
}

func TestDecodeQueriesClickpad(t *testing.T) {
	pad := simbus.NewClickpad()

	q, consumed, err := decodeClickpad(t, pad)
	require.NoError(t, err)

	assert.Equal(t, uint8(4), q.NrFingers)
	assert.False(t, q.HasRel)
	assert.True(t, q.HasAbs)
	assert.True(t, q.HasGestures)
	assert.Equal(t, uint8(0x0F), q.NrXElectrodes)
	assert.Equal(t, uint8(0x19), q.NrYElectrodes)

	assert.True(t, q.HasDribble)
	assert.False(t, q.Query7Nonzero)
	assert.True(t, q.Query8Nonzero)
	assert.True(t, q.HasPalmDet)
	assert.False(t, q.HasTouchShapes)

	assert.True(t, q.HasInfo2)
	assert.True(t, q.HasPhysicalProps)
	assert.Equal(t, uint8(1), q.ClickpadProps)
	assert.Equal(t, uint8(0), q.MouseButtons)

	assert.Equal(t, uint16(100), q.XSensorSizeMM)
	assert.Equal(t, uint16(60), q.YSensorSizeMM)

	assert.False(t, q.HasACM)
	assert.Equal(t, 30, consumed)

	require.NoError(t, q.Validate())
}

func TestDecodeQueriesACM(t *testing.T) {
	pad := simbus.NewClickpad()
	// Query 36 advertises advanced coordinate mode.
	pad.Program(pad.FD.QueryBase+31, 1<<5)

	q, _, err := decodeClickpad(t, pad)
	require.NoError(t, err)
	assert.True(t, q.HasACM)
}

func TestDecodeQueriesMinimalChain(t *testing.T) {
	// Absolute-only sensor with no extended blocks: the chain is just
	// queries 1-5.
	bus := simbus.New()
	bus.Program(0x0050, 0x10, 0x02, 0x02, 0x02) // queries 1-4: one finger, abs only
	bus.Program(0x0054, 0x00)                   // query 5

	var q SensorQueries
	q, consumed, err := DecodeQueries(bus, 0x0050, q)
	require.NoError(t, err)

	assert.Equal(t, uint8(0), q.NrFingers)
	assert.True(t, q.HasAbs)
	assert.False(t, q.HasGestures)
	assert.Equal(t, 5, consumed)

	// No physical size data: the device cannot drive the pipeline.
	err = q.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, rmi.ErrUnsupportedDevice)
}

func TestDecodeQueriesGatedBlocksNotRead(t *testing.T) {
	// The same registers decode differently depending on earlier flags: with
	// gestures disabled, the bytes that held queries 7-8 are never read.
	bus := simbus.New()
	bus.Program(0x0050, 0x10, 0x01, 0x01, 0x01)
	bus.Program(0x0054, 0x00)
	// Poison the registers after the chain; a correct decoder never touches
	// them.
	bus.FailAt(0x0055, io.ErrUnexpectedEOF)

	_, consumed, err := DecodeQueries(bus, 0x0050, SensorQueries{})
	require.NoError(t, err)
	assert.Equal(t, 5, consumed)
}

func TestDecodeQueriesReadFailureAborts(t *testing.T) {
	pad := simbus.NewClickpad()
	busErr := errors.New("nak")
	pad.FailAt(pad.FD.QueryBase+5, busErr)

	_, _, err := decodeClickpad(t, pad)
	require.Error(t, err)
	assert.ErrorIs(t, err, busErr)
}

func TestValidateRejectsRelativeOnly(t *testing.T) {
	q := SensorQueries{HasRel: true, HasPhysicalProps: true}
	err := q.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, rmi.ErrUnsupportedDevice)
}
