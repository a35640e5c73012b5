package cmd

import (
	"log/slog"

	"github.com/rmikit/rmitouch/internal/uinput"
	"github.com/rmikit/rmitouch/sensor"
)

// openDeliverySink creates the virtual multitouch device frames are written
// to.
func openDeliverySink(path, name string, maxX, maxY uint16, logger *slog.Logger) (sensor.Sink, func() error, error) {
	tp, err := uinput.Create(path, name, int32(maxX), int32(maxY), logger)
	if err != nil {
		return nil, nil, err
	}
	return tp, tp.Close, nil
}
