package simbus

import (
	"github.com/rmikit/rmitouch/rmi"
)

// Clickpad register geometry. The layout mirrors a common Synaptics
// clickpad: a single F11 entry in the PDT, a five-finger absolute sensor
// with gestures, clickpad info and physical size data.
const (
	clickpadQueryBase   = 0x0050
	clickpadCommandBase = 0x0070
	clickpadControlBase = 0x0060
	clickpadDataBase    = 0x0010

	// ClickpadMaxX and ClickpadMaxY are the coordinate ranges the fixture
	// reports in its control block.
	ClickpadMaxX = 0x04C0
	ClickpadMaxY = 0x02A0

	// ClickpadFingers is the resolved finger count of the fixture (wire
	// code 4).
	ClickpadFingers = 5

	// ClickpadPacketSize: 2 bitmap bytes + 5x5 absolute bytes + 1 gesture
	// byte (query 8 is nonzero).
	ClickpadPacketSize = 28

	clickpadBitmapBytes = 2
)

// Clickpad is a scripted five-finger clickpad behind a simulated bus.
type Clickpad struct {
	*Bus
	FD rmi.FunctionDescriptor
}

// NewClickpad programs a fresh register map with the fixture's PDT, query
// chain, and control block, and returns it together with the F11 function
// descriptor a PDT scan would find.
func NewClickpad() *Clickpad {
	b := New()

	// PDT entry for F11 at the top scan address.
	b.Program(0x00E9,
		byte(clickpadQueryBase), byte(clickpadCommandBase),
		byte(clickpadControlBase), byte(clickpadDataBase),
		0x01, 0x11)

	// Query 0: extended blocks 9, 11, 12 and 28 present.
	b.Program(clickpadQueryBase, 0xB8)

	// Queries 1-4: finger code 4 (five fingers), absolute + gestures,
	// electrode counts.
	b.Program(clickpadQueryBase+1, 0x34, 0x0F, 0x19, 0x19)
	// Query 5: has dribble.
	b.Program(clickpadQueryBase+5, 0x10)
	// Queries 7-8: no query-7 gestures; palm detect in query 8.
	b.Program(clickpadQueryBase+6, 0x00, 0x01)
	// Query 9: no pen features.
	b.Program(clickpadQueryBase+8, 0x00)
	// Query 11: no tuning features.
	b.Program(clickpadQueryBase+9, 0x00)
	// Query 12: info2 + physical properties.
	b.Program(clickpadQueryBase+10, 0x30)
	// Info2: clickpad properties = 1.
	b.Program(clickpadQueryBase+11, 0x08)
	// Physical size: 100.0mm x 60.0mm in tenths, then 12 reserved bytes.
	b.Program(clickpadQueryBase+12, 0xE8, 0x03, 0x58, 0x02)
	// Query 28 with bit 6: query 36 present two registers on; no ACM.
	b.Program(clickpadQueryBase+28, 0x40)
	b.Program(clickpadQueryBase+31, 0x00)

	// Control block: dribble enabled (ctrl0 bit 6), palm detect enabled
	// (ctrl11 bit 0) so initialization has something to clear, and the
	// coordinate maxima at offsets 6 and 8.
	b.Program(clickpadControlBase,
		0x40, 0x00, 0x00, 0x00, 0x00, 0x00,
		byte(ClickpadMaxX&0xFF), byte(ClickpadMaxX>>8),
		byte(ClickpadMaxY&0xFF), byte(ClickpadMaxY>>8),
		0x00, 0x01)

	return &Clickpad{
		Bus: b,
		FD: rmi.FunctionDescriptor{
			QueryBase:    clickpadQueryBase,
			CommandBase:  clickpadCommandBase,
			ControlBase:  clickpadControlBase,
			DataBase:     clickpadDataBase,
			IntSourceCnt: 1,
			Number:       0x11,
		},
	}
}

// Touch is one scripted contact for SetFrame.
type Touch struct {
	Slot   int
	X, Y   uint16
	Z      uint8
	WX, WY uint8
	// Hover marks the contact present-without-accuracy.
	Hover bool
}

// SetFrame programs the data block with the given contacts; untouched slots
// read as absent. Call before each simulated attention event.
func (c *Clickpad) SetFrame(touches ...Touch) {
	pkt := make([]byte, ClickpadPacketSize)
	for _, t := range touches {
		state := byte(0x01)
		if t.Hover {
			state = 0x02
		}
		pkt[t.Slot/4] |= state << ((t.Slot % 4) * 2)

		pos := pkt[clickpadBitmapBytes+t.Slot*5:]
		pos[0] = byte(t.X >> 4)
		pos[1] = byte(t.Y >> 4)
		pos[2] = byte(t.X&0x0F) | byte(t.Y&0x0F)<<4
		pos[3] = t.WX&0x0F | t.WY<<4
		pos[4] = t.Z
	}
	c.Program(clickpadDataBase, pkt...)
}
