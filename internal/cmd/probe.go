package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/rmikit/rmitouch/internal/log"
	"github.com/rmikit/rmitouch/rmi"
	"github.com/rmikit/rmitouch/rmi/f11"
	"github.com/rmikit/rmitouch/rmi/smbus"
	"github.com/rmikit/rmitouch/sensor"
)

// Probe scans the device and prints its function table and negotiated touch
// capabilities without creating any virtual input device.
type Probe struct {
	Bus     string `help:"I2C bus name, empty for the first available" env:"RMITOUCH_BUS"`
	I2CAddr uint16 `help:"I2C device address of the touch controller" default:"32" env:"RMITOUCH_I2C_ADDR"`
}

type probeFunction struct {
	Number      string `json:"number"`
	QueryBase   uint16 `json:"queryBase"`
	CommandBase uint16 `json:"commandBase"`
	ControlBase uint16 `json:"controlBase"`
	DataBase    uint16 `json:"dataBase"`
	IntSources  uint8  `json:"intSources"`
	Supported   bool   `json:"supported"`
}

type probeReport struct {
	Functions []probeFunction    `json:"functions"`
	Touch     *f11.SensorQueries `json:"touch,omitempty"`
	Layout    *f11.PacketLayout  `json:"layout,omitempty"`
	MaxX      uint16             `json:"maxX,omitempty"`
	MaxY      uint16             `json:"maxY,omitempty"`
}

// Run is called by Kong when the probe command is executed.
func (p *Probe) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	hw, err := smbus.Open(p.Bus, p.I2CAddr)
	if err != nil {
		return err
	}
	defer func() { _ = hw.Close() }()

	var bus rmi.Bus = log.TracedBus{Bus: hw, Raw: rawLogger}

	fns, err := rmi.ScanPDT(bus)
	if err != nil {
		return err
	}

	supported := map[uint8]bool{}
	for _, n := range rmi.RegisteredFunctions() {
		supported[n] = true
	}

	var report probeReport
	for _, fd := range fns {
		report.Functions = append(report.Functions, probeFunction{
			Number:      fmt.Sprintf("0x%02x", fd.Number),
			QueryBase:   fd.QueryBase,
			CommandBase: fd.CommandBase,
			ControlBase: fd.ControlBase,
			DataBase:    fd.DataBase,
			IntSources:  fd.IntSourceCnt,
			Supported:   supported[fd.Number],
		})
	}

	for _, fd := range fns {
		if fd.Number != f11.FunctionNumber {
			continue
		}
		fn, err := rmi.NewFunction(bus, fd, logger)
		if err != nil {
			return err
		}
		dev := fn.(*f11.F11)
		sen := sensor.New(sensor.DefaultConfig(), logger)
		dev.Attach(sen)
		if err := dev.Initialize(); err != nil {
			logger.Warn("touch capability negotiation failed", "error", err)
			break
		}
		q := dev.Queries()
		l := dev.Layout()
		maxX, maxY, _, _ := sen.Geometry()
		report.Touch = &q
		report.Layout = &l
		report.MaxX = maxX
		report.MaxY = maxY
		break
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
