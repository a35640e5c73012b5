package log

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rmikit/rmitouch/rmi"
)

// RawLogger handles raw register traffic logs with optional file output.
type RawLogger interface {
	Log(write bool, addr uint16, data []byte)
}

// rawLogger implements RawLogger with thread-safe logging.
type rawLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewRaw creates a new RawLogger. If writer is nil, returns a no-op logger.
func NewRaw(w io.Writer) RawLogger {
	return &rawLogger{w: w}
}

// Log emits a single-line register transaction log with timestamp, direction
// and hex dump. write=true means host->device, write=false means a read.
func (r *rawLogger) Log(write bool, addr uint16, data []byte) {
	if len(data) == 0 {
		return
	}
	if r.w == nil {
		return
	}

	dir := "RD"
	if write {
		dir = "WR"
	}

	var hexbuf bytes.Buffer
	const hexdigits = "0123456789abcdef"
	for i, b := range data {
		if i > 0 {
			hexbuf.WriteByte(' ')
		}
		hexbuf.WriteByte(hexdigits[b>>4])
		hexbuf.WriteByte(hexdigits[b&0x0f])
	}

	line := fmt.Sprintf("%s %s %#04x: %d bytes, hex: %s\n",
		time.Now().Format("2006/01/02 15:04:05"),
		dir,
		addr,
		len(data),
		hexbuf.String())

	r.mu.Lock()
	_, _ = r.w.Write([]byte(line))
	r.mu.Unlock()
}

// TracedBus wraps an rmi.Bus and mirrors every transaction to a RawLogger.
type TracedBus struct {
	Bus rmi.Bus
	Raw RawLogger
}

func (t TracedBus) Read(addr uint16) (byte, error) {
	b, err := t.Bus.Read(addr)
	if err == nil {
		t.Raw.Log(false, addr, []byte{b})
	}
	return b, err
}

func (t TracedBus) ReadBlock(addr uint16, buf []byte) error {
	err := t.Bus.ReadBlock(addr, buf)
	if err == nil {
		t.Raw.Log(false, addr, buf)
	}
	return err
}

func (t TracedBus) BlockWrite(addr uint16, data []byte) error {
	t.Raw.Log(true, addr, data)
	return t.Bus.BlockWrite(addr, data)
}
