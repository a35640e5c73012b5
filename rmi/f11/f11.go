// Package f11 implements the RMI4 Function 11 handler: capability
// negotiation against the flag-gated query chain, packet layout derivation,
// and per-attention decoding of finger records into sensor reports.
package f11

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/rmikit/rmitouch/rmi"
	"github.com/rmikit/rmitouch/sensor"
)

// rezeroWait is how long the sensor needs after a rezero command before
// reports are trustworthy again.
const rezeroWait = 100 * time.Millisecond

func init() {
	rmi.RegisterFunction(FunctionNumber, New)
}

// F11 is one 2D sensor session. The receive buffer and the negotiated
// records are allocated during Initialize and never reallocated; Attention
// decodes in place and is free of allocation.
//
// Attention must be serviced from a single goroutine: one packet is decoded
// to completion before the next is read.
type F11 struct {
	bus    rmi.Bus
	fd     rmi.FunctionDescriptor
	logger *slog.Logger

	queries SensorQueries
	layout  PacketLayout
	ctrl    controlRegs
	sensor  *sensor.Sensor

	pkt            []byte
	report         sensor.Report
	malformedSlots atomic.Uint64
}

// New constructs an F11 handler for a scanned function descriptor.
func New(bus rmi.Bus, fd rmi.FunctionDescriptor, logger *slog.Logger) rmi.Function {
	return &F11{
		bus:    bus,
		fd:     fd,
		logger: logger.With("function", "F11"),
	}
}

// Number implements rmi.Function.
func (f *F11) Number() uint8 { return FunctionNumber }

// Attach binds the multitouch state machine the decoded reports feed.
// Must be called before Initialize.
func (f *F11) Attach(s *sensor.Sensor) { f.sensor = s }

// Sensor returns the attached state machine.
func (f *F11) Sensor() *sensor.Sensor { return f.sensor }

// Queries returns the negotiated capability record. Only valid after
// Initialize succeeds.
func (f *F11) Queries() SensorQueries { return f.queries }

// Layout returns the derived packet layout. Only valid after Initialize
// succeeds.
func (f *F11) Layout() PacketLayout { return f.layout }

// MalformedSlots returns how many reserved finger-state patterns have been
// skipped since initialization.
func (f *F11) MalformedSlots() uint64 { return f.malformedSlots.Load() }

// Initialize implements rmi.Function: it negotiates capabilities, derives
// the packet layout, allocates the receive buffer and synchronizes the
// control register block. Any bus failure or unsupported capability set is
// fatal; the session must not be used afterwards.
func (f *F11) Initialize() error {
	if f.sensor == nil {
		return fmt.Errorf("f11: no sensor attached")
	}

	q0, err := f.bus.Read(f.fd.QueryBase)
	if err != nil {
		return fmt.Errorf("f11: read query base: %w", err)
	}

	var q SensorQueries
	q.ExtQuery9 = q0&hasQuery9 != 0
	q.ExtQuery11 = q0&hasQuery11 != 0
	q.ExtQuery12 = q0&hasQuery12 != 0
	q.ExtQuery27 = q0&hasQuery27 != 0
	q.ExtQuery28 = q0&hasQuery28 != 0

	q, consumed, err := DecodeQueries(f.bus, f.fd.QueryBase+1, q)
	if err != nil {
		return err
	}
	if err := q.Validate(); err != nil {
		return err
	}
	f.queries = q

	maxX, maxY, err := readMaxPos(f.bus, f.fd.ControlBase)
	if err != nil {
		return err
	}
	f.sensor.SetGeometry(maxX, maxY, q.XSensorSizeMM, q.YSensorSizeMM)

	f.layout = ComputeLayout(&f.queries)
	f.pkt = make([]byte, f.layout.PacketSize)

	if err := f.ctrl.read(f.bus, f.fd.ControlBase); err != nil {
		return err
	}
	f.ctrl.apply(&f.queries)
	if err := f.ctrl.write(f.bus); err != nil {
		return err
	}

	f.logger.Info("sensor initialized",
		"fingers", f.layout.NrFingers,
		"packet_size", f.layout.PacketSize,
		"attn_size", f.layout.AttnSize,
		"query_regs", consumed+1,
		"max_x", maxX, "max_y", maxY,
		"x_mm", q.XSensorSizeMM, "y_mm", q.YSensorSizeMM,
		"clickpad", q.ClickpadProps != 0)
	return nil
}

// Attention implements rmi.Function: it reads one data packet and folds it
// into the sensor state. A bus failure aborts the packet atomically; the
// session itself stays usable for the next attention event.
func (f *F11) Attention(now time.Time) error {
	if err := f.bus.ReadBlock(f.fd.DataBase, f.pkt); err != nil {
		return fmt.Errorf("f11: read attention data: %w", err)
	}

	malformed := AssembleReport(f.pkt, &f.layout, now, f.sensor.ShouldDiscard, &f.report)
	if malformed > 0 {
		f.malformedSlots.Add(uint64(malformed))
		f.logger.Debug("skipped reserved finger states", "count", malformed)
	}
	if f.report.Discard {
		f.logger.Debug("report discarded")
		return nil
	}

	f.sensor.HandleReport(&f.report)
	return nil
}
