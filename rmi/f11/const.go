package f11

// FunctionNumber is the RMI4 function number for 2D absolute touch sensors.
const FunctionNumber = 0x11

// Query 0, read at the query base: which extended query blocks exist.
const (
	hasQuery9  = 1 << 3
	hasQuery11 = 1 << 4
	hasQuery12 = 1 << 5
	hasQuery27 = 1 << 6
	hasQuery28 = 1 << 7
)

// Queries 1-4, the fixed leading block of the per-sensor chain.
const (
	querySize = 4

	nrFingersMask      = 0x07
	hasRel             = 1 << 3
	hasAbs             = 1 << 4
	hasGestures        = 1 << 5
	hasSensitivityAdj  = 1 << 6
	configurable       = 1 << 7
	nrElectrodesMask   = 0x7F
)

// Query 5: absolute data sub-features.
const (
	absDataSizeMask           = 0x03
	hasAnchoredFinger         = 1 << 2
	hasAdjHyst                = 1 << 3
	hasDribble                = 1 << 4
	hasBendingCorrection      = 1 << 5
	hasLargeObjectSuppression = 1 << 6
	hasJitterFilter           = 1 << 7
)

// Queries 7 and 8: gesture sub-features (read as one two-byte block).
const (
	queryGestureSize = 2

	hasSingleTap = 1 << 0
	hasTapNHold  = 1 << 1
	hasDoubleTap = 1 << 2
	hasEarlyTap  = 1 << 3
	hasFlick     = 1 << 4
	hasPress     = 1 << 5
	hasPinch     = 1 << 6
	hasChiral    = 1 << 7

	hasPalmDet               = 1 << 0
	hasRotate                = 1 << 1
	hasTouchShapes           = 1 << 2
	hasScrollZones           = 1 << 3
	hasIndividualScrollZones = 1 << 4
	hasMfScroll              = 1 << 5
	hasMfEdgeMotion          = 1 << 6
	hasMfScrollInertia       = 1 << 7
)

// Query 9: pen and proximity sub-features.
const (
	hasPen                   = 1 << 0
	hasProximity             = 1 << 1
	hasPalmDetSensitivity    = 1 << 2
	hasSuppressOnPalmDetect  = 1 << 3
	hasTwoPenThresholds      = 1 << 4
	hasContactGeometry       = 1 << 5
	hasPenHoverDiscrimination = 1 << 6
	hasPenFilters            = 1 << 7
)

// Touch shape count query.
const nrTouchShapesMask = 0x1F

// Query 11: tuning sub-features.
const (
	hasZTuning                    = 1 << 0
	hasAlgorithmSelection         = 1 << 1
	hasWTuning                    = 1 << 2
	hasPitchInfo                  = 1 << 3
	hasFingerSize                 = 1 << 4
	hasSegmentationAggressiveness = 1 << 5
	hasXYClip                     = 1 << 6
	hasDrummingFilter             = 1 << 7
)

// Query 12: second tuning set; gates the info2 and physical property blocks.
const (
	hasGaplessFinger       = 1 << 0
	hasGaplessFingerTuning = 1 << 1
	has8BitW               = 1 << 2
	hasAdjustableMapping   = 1 << 3
	hasInfo2               = 1 << 4
	hasPhysicalProps       = 1 << 5
	hasFingerLimit         = 1 << 6
	hasLinearCoeff2        = 1 << 7
)

// Jitter filter query.
const (
	jitterWindowMask  = 0x1F
	jitterFilterMask  = 0x60
	jitterFilterShift = 5
)

// Info2 (query 14): clickpad and mouse button properties.
const (
	lightControlMask    = 0x03
	isClear             = 1 << 2
	clickpadPropsMask   = 0x18
	clickpadPropsShift  = 3
	mouseButtonsMask    = 0x60
	mouseButtonsShift   = 5
	hasAdvancedGestures = 1 << 7
)

// Per-finger packet encoding.
const (
	fingerStateNone       = 0x00
	fingerStatePresent    = 0x01
	fingerStateInaccurate = 0x02
	fingerStateReserved   = 0x03

	absBytesPerFinger = 5
	relBytesPerFinger = 2
)

// Control register block.
const (
	ctrlRegCount = 12

	ctrlDribbleReg = 0
	ctrlDribbleBit = 1 << 6
	ctrlPalmReg    = 11
	ctrlPalmBit    = 1 << 0

	ctrlMaxXPosOffset = 6
	ctrlMaxYPosOffset = 8
)
