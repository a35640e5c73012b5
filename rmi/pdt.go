package rmi

import "fmt"

// FunctionDescriptor is one entry of the Page Description Table: the base
// addresses a function's register blocks live at, as reported by the device.
type FunctionDescriptor struct {
	QueryBase    uint16
	CommandBase  uint16
	ControlBase  uint16
	DataBase     uint16
	IntSourceCnt uint8
	Number       uint8
}

// PDT layout on page 0: 6-byte descriptors packed downwards from 0xE9.
// A function number of 0x00 terminates the table.
const (
	pdtTop        = 0x00E9
	pdtBottom     = 0x0005
	pdtEntrySize  = 6
	pdtFnNumberNP = 0x00
)

// ScanPDT walks the Page Description Table and returns every populated
// function descriptor in table order. Only page 0 is scanned; all known F11
// touch sensors expose their descriptor there.
func ScanPDT(bus Bus) ([]FunctionDescriptor, error) {
	var fns []FunctionDescriptor
	var buf [pdtEntrySize]byte
	for addr := uint16(pdtTop); addr >= pdtBottom; addr -= pdtEntrySize {
		if err := bus.ReadBlock(addr, buf[:]); err != nil {
			return nil, fmt.Errorf("rmi: read PDT entry at %#04x: %w", addr, err)
		}
		if buf[5] == pdtFnNumberNP {
			break
		}
		fns = append(fns, FunctionDescriptor{
			QueryBase:    uint16(buf[0]),
			CommandBase:  uint16(buf[1]),
			ControlBase:  uint16(buf[2]),
			DataBase:     uint16(buf[3]),
			IntSourceCnt: buf[4] & 0x07,
			Number:       buf[5],
		})
	}
	return fns, nil
}

// FindFunction scans the PDT for a specific function number.
func FindFunction(bus Bus, number uint8) (FunctionDescriptor, error) {
	fns, err := ScanPDT(bus)
	if err != nil {
		return FunctionDescriptor{}, err
	}
	for _, fd := range fns {
		if fd.Number == number {
			return fd, nil
		}
	}
	return FunctionDescriptor{}, fmt.Errorf("rmi: function 0x%02x not present", number)
}
