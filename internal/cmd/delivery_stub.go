//go:build !linux

package cmd

import (
	"errors"
	"log/slog"

	"github.com/rmikit/rmitouch/sensor"
)

func openDeliverySink(path, name string, maxX, maxY uint16, logger *slog.Logger) (sensor.Sink, func() error, error) {
	return nil, nil, errors.New("virtual input delivery requires Linux uinput")
}
