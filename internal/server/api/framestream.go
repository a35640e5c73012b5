package api

import (
	"encoding/json"
	"log/slog"
	"net"
	"sync"

	"github.com/rmikit/rmitouch/apitypes"
	"github.com/rmikit/rmitouch/sensor"
)

var fingerNames = map[sensor.FingerType]string{
	sensor.TypeUndefined: "undefined",
	sensor.TypeThumb:     "thumb",
	sensor.TypeIndex:     "index",
	sensor.TypeMiddle:    "middle",
	sensor.TypeRing:      "ring",
	sensor.TypeLittle:    "little",
}

// FrameStream fans finished multitouch frames out to stream subscribers.
// It implements sensor.Sink; a slow subscriber drops frames instead of
// stalling the decode path.
type FrameStream struct {
	mu   sync.Mutex
	subs map[chan []byte]struct{}
}

func NewFrameStream() *FrameStream {
	return &FrameStream{subs: map[chan []byte]struct{}{}}
}

// DeliverFrame implements sensor.Sink.
func (fs *FrameStream) DeliverFrame(fr *sensor.Frame) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if len(fs.subs) == 0 {
		return
	}

	ev := apitypes.EventFrame{
		TimestampMS: fr.Timestamp.UnixMilli(),
		Slots:       make([]apitypes.EventSlot, 0, fr.Contacts),
	}
	for i := 0; i < fr.Contacts; i++ {
		s := &fr.Slots[i]
		if !s.Valid {
			continue
		}
		if s.ButtonDown {
			ev.Button = true
		}
		ev.Slots = append(ev.Slots, apitypes.EventSlot{
			ID:       s.ID,
			Finger:   fingerNames[s.Type],
			X:        s.X,
			Y:        s.Y,
			Width:    s.Width,
			Pressure: s.Pressure,
		})
	}

	line, err := json.Marshal(ev)
	if err != nil {
		return
	}
	line = append(line, '\n')

	for ch := range fs.subs {
		select {
		case ch <- line:
		default:
		}
	}
}

func (fs *FrameStream) subscribe() chan []byte {
	ch := make(chan []byte, 64)
	fs.mu.Lock()
	fs.subs[ch] = struct{}{}
	fs.mu.Unlock()
	return ch
}

func (fs *FrameStream) unsubscribe(ch chan []byte) {
	fs.mu.Lock()
	delete(fs.subs, ch)
	fs.mu.Unlock()
}

// EventsStreamHandler returns a stream handler that forwards frames from the
// given FrameStream until the client disconnects.
func EventsStreamHandler(fs *FrameStream) StreamHandlerFunc {
	return func(conn net.Conn, _ map[string]string, logger *slog.Logger) error {
		defer conn.Close()

		ch := fs.subscribe()
		defer fs.unsubscribe(ch)

		// Detect client disconnect; the client never sends after the
		// subscription command.
		done := make(chan struct{})
		go func() {
			defer close(done)
			var b [1]byte
			_, _ = conn.Read(b[:])
		}()

		for {
			select {
			case line := <-ch:
				if _, err := conn.Write(line); err != nil {
					return nil
				}
			case <-done:
				logger.Debug("events subscriber disconnected")
				return nil
			}
		}
	}
}
