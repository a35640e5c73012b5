package f11

import (
	"fmt"

	"github.com/rmikit/rmitouch/rmi"
)

// SensorQueries is the negotiated capability record for one 2D sensor. It is
// built once during initialization and immutable afterwards. Fields gated by
// a presence flag are only meaningful when that flag is set; the decoder
// never reads a register whose governing flag is clear.
type SensorQueries struct {
	// Extended query block flags from query 0.
	ExtQuery9  bool
	ExtQuery11 bool
	ExtQuery12 bool
	ExtQuery27 bool
	ExtQuery28 bool

	// Queries 1-4.
	NrFingers          uint8
	HasRel             bool
	HasAbs             bool
	HasGestures        bool
	HasSensitivityAdj  bool
	Configurable       bool
	NrXElectrodes      uint8
	NrYElectrodes      uint8
	MaxElectrodes      uint8

	// Query 5, gated by HasAbs.
	AbsDataSize               uint8
	HasAnchoredFinger         bool
	HasAdjHyst                bool
	HasDribble                bool
	HasBendingCorrection      bool
	HasLargeObjectSuppression bool
	HasJitterFilter           bool

	// Query 6, gated by HasRel. Stored opaque.
	Query6 uint8

	// Queries 7-8, gated by HasGestures.
	HasSingleTap             bool
	HasTapNHold              bool
	HasDoubleTap             bool
	HasEarlyTap              bool
	HasFlick                 bool
	HasPress                 bool
	HasPinch                 bool
	HasChiral                bool
	HasPalmDet               bool
	HasRotate                bool
	HasTouchShapes           bool
	HasScrollZones           bool
	HasIndividualScrollZones bool
	HasMfScroll              bool
	HasMfEdgeMotion          bool
	HasMfScrollInertia       bool
	Query7Nonzero            bool
	Query8Nonzero            bool

	// Query 9, gated by ExtQuery9.
	HasPen                    bool
	HasProximity              bool
	HasPalmDetSensitivity     bool
	HasSuppressOnPalmDetect   bool
	HasTwoPenThresholds       bool
	HasContactGeometry        bool
	HasPenHoverDiscrimination bool
	HasPenFilters             bool

	// Touch shape count, gated by HasTouchShapes.
	NrTouchShapes uint8

	// Query 11, gated by ExtQuery11.
	HasZTuning                    bool
	HasAlgorithmSelection         bool
	HasWTuning                    bool
	HasPitchInfo                  bool
	HasFingerSize                 bool
	HasSegmentationAggressiveness bool
	HasXYClip                     bool
	HasDrummingFilter             bool

	// Query 12, gated by ExtQuery12.
	HasGaplessFinger       bool
	HasGaplessFingerTuning bool
	Has8BitW               bool
	HasAdjustableMapping   bool
	HasInfo2               bool
	HasPhysicalProps       bool
	HasFingerLimit         bool
	HasLinearCoeff2        bool

	// Jitter filter query, gated by HasJitterFilter.
	JitterWindowSize uint8
	JitterFilterType uint8

	// Info2 (query 14), gated by HasInfo2.
	LightControl        uint8
	IsClear             bool
	ClickpadProps       uint8
	MouseButtons        uint8
	HasAdvancedGestures bool

	// Physical properties (queries 15-18), gated by HasPhysicalProps.
	XSensorSizeMM uint16
	YSensorSizeMM uint16

	// Advanced coordinate mode, derived from query 36 via query 28.
	HasACM bool
}

// queryCursor tracks the running register offset while walking the
// flag-gated query chain.
type queryCursor struct {
	bus  rmi.Bus
	addr uint16
	n    int
}

func (c *queryCursor) read(buf []byte) error {
	if err := c.bus.ReadBlock(c.addr, buf); err != nil {
		return fmt.Errorf("f11: read query block at %#04x: %w", c.addr, err)
	}
	c.addr += uint16(len(buf))
	c.n += len(buf)
	return nil
}

func (c *queryCursor) skip(n int) {
	c.addr += uint16(n)
	c.n += n
}

// queryStep is one optional block of the chain: read size bytes and decode
// them iff present reports true. Every governing flag is decoded by an
// earlier step, so the table is evaluated strictly in order.
type queryStep struct {
	present func(*SensorQueries) bool
	size    int
	decode  func(*SensorQueries, []byte)
}

var queryChain = []queryStep{
	{ // Query 5: absolute data sub-features.
		present: func(q *SensorQueries) bool { return q.HasAbs },
		size:    1,
		decode: func(q *SensorQueries, b []byte) {
			q.AbsDataSize = b[0] & absDataSizeMask
			q.HasAnchoredFinger = b[0]&hasAnchoredFinger != 0
			q.HasAdjHyst = b[0]&hasAdjHyst != 0
			q.HasDribble = b[0]&hasDribble != 0
			q.HasBendingCorrection = b[0]&hasBendingCorrection != 0
			q.HasLargeObjectSuppression = b[0]&hasLargeObjectSuppression != 0
			q.HasJitterFilter = b[0]&hasJitterFilter != 0
		},
	},
	{ // Query 6: relative data sub-features, not decoded further.
		present: func(q *SensorQueries) bool { return q.HasRel },
		size:    1,
		decode:  func(q *SensorQueries, b []byte) { q.Query6 = b[0] },
	},
	{ // Queries 7-8: gestures. These bytes gate later blocks.
		present: func(q *SensorQueries) bool { return q.HasGestures },
		size:    queryGestureSize,
		decode: func(q *SensorQueries, b []byte) {
			q.HasSingleTap = b[0]&hasSingleTap != 0
			q.HasTapNHold = b[0]&hasTapNHold != 0
			q.HasDoubleTap = b[0]&hasDoubleTap != 0
			q.HasEarlyTap = b[0]&hasEarlyTap != 0
			q.HasFlick = b[0]&hasFlick != 0
			q.HasPress = b[0]&hasPress != 0
			q.HasPinch = b[0]&hasPinch != 0
			q.HasChiral = b[0]&hasChiral != 0

			q.HasPalmDet = b[1]&hasPalmDet != 0
			q.HasRotate = b[1]&hasRotate != 0
			q.HasTouchShapes = b[1]&hasTouchShapes != 0
			q.HasScrollZones = b[1]&hasScrollZones != 0
			q.HasIndividualScrollZones = b[1]&hasIndividualScrollZones != 0
			q.HasMfScroll = b[1]&hasMfScroll != 0
			q.HasMfEdgeMotion = b[1]&hasMfEdgeMotion != 0
			q.HasMfScrollInertia = b[1]&hasMfScrollInertia != 0

			q.Query7Nonzero = b[0] != 0
			q.Query8Nonzero = b[1] != 0
		},
	},
	{ // Query 9: pen and proximity.
		present: func(q *SensorQueries) bool { return q.ExtQuery9 },
		size:    1,
		decode: func(q *SensorQueries, b []byte) {
			q.HasPen = b[0]&hasPen != 0
			q.HasProximity = b[0]&hasProximity != 0
			q.HasPalmDetSensitivity = b[0]&hasPalmDetSensitivity != 0
			q.HasSuppressOnPalmDetect = b[0]&hasSuppressOnPalmDetect != 0
			q.HasTwoPenThresholds = b[0]&hasTwoPenThresholds != 0
			q.HasContactGeometry = b[0]&hasContactGeometry != 0
			q.HasPenHoverDiscrimination = b[0]&hasPenHoverDiscrimination != 0
			q.HasPenFilters = b[0]&hasPenFilters != 0
		},
	},
	{ // Touch shape count.
		present: func(q *SensorQueries) bool { return q.HasTouchShapes },
		size:    1,
		decode: func(q *SensorQueries, b []byte) {
			q.NrTouchShapes = b[0] & nrTouchShapesMask
		},
	},
	{ // Query 11: tuning.
		present: func(q *SensorQueries) bool { return q.ExtQuery11 },
		size:    1,
		decode: func(q *SensorQueries, b []byte) {
			q.HasZTuning = b[0]&hasZTuning != 0
			q.HasAlgorithmSelection = b[0]&hasAlgorithmSelection != 0
			q.HasWTuning = b[0]&hasWTuning != 0
			q.HasPitchInfo = b[0]&hasPitchInfo != 0
			q.HasFingerSize = b[0]&hasFingerSize != 0
			q.HasSegmentationAggressiveness = b[0]&hasSegmentationAggressiveness != 0
			q.HasXYClip = b[0]&hasXYClip != 0
			q.HasDrummingFilter = b[0]&hasDrummingFilter != 0
		},
	},
	{ // Query 12: second tuning set.
		present: func(q *SensorQueries) bool { return q.ExtQuery12 },
		size:    1,
		decode: func(q *SensorQueries, b []byte) {
			q.HasGaplessFinger = b[0]&hasGaplessFinger != 0
			q.HasGaplessFingerTuning = b[0]&hasGaplessFingerTuning != 0
			q.Has8BitW = b[0]&has8BitW != 0
			q.HasAdjustableMapping = b[0]&hasAdjustableMapping != 0
			q.HasInfo2 = b[0]&hasInfo2 != 0
			q.HasPhysicalProps = b[0]&hasPhysicalProps != 0
			q.HasFingerLimit = b[0]&hasFingerLimit != 0
			q.HasLinearCoeff2 = b[0]&hasLinearCoeff2 != 0
		},
	},
	{ // Jitter filter parameters.
		present: func(q *SensorQueries) bool { return q.HasJitterFilter },
		size:    1,
		decode: func(q *SensorQueries, b []byte) {
			q.JitterWindowSize = b[0] & jitterWindowMask
			q.JitterFilterType = (b[0] & jitterFilterMask) >> jitterFilterShift
		},
	},
	{ // Info2 (query 14): clickpad properties.
		present: func(q *SensorQueries) bool { return q.HasInfo2 },
		size:    1,
		decode: func(q *SensorQueries, b []byte) {
			q.LightControl = b[0] & lightControlMask
			q.IsClear = b[0]&isClear != 0
			q.ClickpadProps = (b[0] & clickpadPropsMask) >> clickpadPropsShift
			q.MouseButtons = (b[0] & mouseButtonsMask) >> mouseButtonsShift
			q.HasAdvancedGestures = b[0]&hasAdvancedGestures != 0
		},
	},
}

// DecodeQueries walks the flag-gated query chain starting one register past
// the function's query base (query 0 is read separately by the caller and its
// extended-block flags are expected in q). It returns the fully populated
// record and the number of query registers consumed, so the caller can locate
// whatever follows the chain.
//
// A read failure at any point aborts the whole negotiation; no partial record
// is usable.
func DecodeQueries(bus rmi.Bus, base uint16, q SensorQueries) (SensorQueries, int, error) {
	cur := &queryCursor{bus: bus, addr: base}

	var buf [querySize]byte
	if err := cur.read(buf[:]); err != nil {
		return q, 0, err
	}
	q.NrFingers = buf[0] & nrFingersMask
	q.HasRel = buf[0]&hasRel != 0
	q.HasAbs = buf[0]&hasAbs != 0
	q.HasGestures = buf[0]&hasGestures != 0
	q.HasSensitivityAdj = buf[0]&hasSensitivityAdj != 0
	q.Configurable = buf[0]&configurable != 0
	q.NrXElectrodes = buf[1] & nrElectrodesMask
	q.NrYElectrodes = buf[2] & nrElectrodesMask
	q.MaxElectrodes = buf[3] & nrElectrodesMask

	for _, step := range queryChain {
		if !step.present(&q) {
			continue
		}
		if err := cur.read(buf[:step.size]); err != nil {
			return q, 0, err
		}
		step.decode(&q, buf[:step.size])
	}

	if q.HasPhysicalProps {
		if err := cur.read(buf[:4]); err != nil {
			return q, 0, err
		}
		// Sensor size arrives in tenths of a millimeter.
		q.XSensorSizeMM = (uint16(buf[0]) | uint16(buf[1])<<8) / 10
		q.YSensorSizeMM = (uint16(buf[2]) | uint16(buf[3])<<8) / 10
		// Queries 15-18 held the size; 19-26 carry bezel dimensions we do
		// not decode.
		cur.skip(12)
	}

	if q.ExtQuery27 {
		cur.skip(1)
	}

	hasQuery36 := false
	if q.ExtQuery28 {
		if err := cur.read(buf[:1]); err != nil {
			return q, 0, err
		}
		hasQuery36 = buf[0]&(1<<6) != 0
	}

	if hasQuery36 {
		// Query 36 sits two registers past query 28 on every clickpad this
		// was validated against; the pairing is not documented, so the
		// offset arithmetic is preserved exactly as observed. Needs
		// confirmation against more hardware.
		cur.skip(2)
		b, err := bus.Read(cur.addr)
		if err != nil {
			return q, 0, fmt.Errorf("f11: read query 36 at %#04x: %w", cur.addr, err)
		}
		if b&(1<<5) != 0 {
			q.HasACM = true
		}
	}

	return q, cur.n, nil
}

// Validate classifies the negotiated record. Devices without absolute
// position reporting or physical size data cannot drive the multitouch
// pipeline and are rejected.
func (q *SensorQueries) Validate() error {
	if !q.HasAbs {
		return fmt.Errorf("%w: no absolute reporting support", rmi.ErrUnsupportedDevice)
	}
	if !q.HasPhysicalProps {
		return fmt.Errorf("%w: no physical size data", rmi.ErrUnsupportedDevice)
	}
	return nil
}
