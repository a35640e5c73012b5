package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"
	"time"

	"github.com/rmikit/rmitouch/internal/configpaths"
	"github.com/rmikit/rmitouch/internal/log"
	"github.com/rmikit/rmitouch/internal/server/api"
	"github.com/rmikit/rmitouch/internal/server/api/auth"
	"github.com/rmikit/rmitouch/internal/server/api/handler"
	"github.com/rmikit/rmitouch/rmi"
	"github.com/rmikit/rmitouch/rmi/f11"
	"github.com/rmikit/rmitouch/rmi/smbus"
	"github.com/rmikit/rmitouch/sensor"
)

const keyFileName = "rmitouch.key.txt"

// Run attaches to the touchpad and pumps decoded multitouch frames into a
// virtual input device.
type Run struct {
	Bus        string        `help:"I2C bus name, empty for the first available" env:"RMITOUCH_BUS"`
	I2CAddr    uint16        `help:"I2C device address of the touch controller" default:"32" env:"RMITOUCH_I2C_ADDR"`
	Poll       time.Duration `help:"Attention poll interval" default:"10ms" env:"RMITOUCH_POLL"`
	Uinput     string        `help:"uinput control node" default:"/dev/uinput" env:"RMITOUCH_UINPUT"`
	DeviceName string        `help:"Name of the virtual input device" default:"RMI4 Touchpad" env:"RMITOUCH_DEVICE_NAME"`

	Sensor sensor.Config    `embed:"" prefix:"sensor."`
	Api    api.ServerConfig `embed:"" prefix:"api."`
}

// Run is called by Kong when the run command is executed.
func (r *Run) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return r.Start(ctx, logger, rawLogger)
}

// Start runs the driver until ctx is cancelled or the bus dies.
func (r *Run) Start(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger) error {
	hw, err := smbus.Open(r.Bus, r.I2CAddr)
	if err != nil {
		return err
	}
	defer func() { _ = hw.Close() }()

	var bus rmi.Bus = log.TracedBus{Bus: hw, Raw: rawLogger}

	dev, sen, err := setupDevice(bus, r.Sensor, logger)
	if err != nil {
		return err
	}

	maxX, maxY, _, _ := sen.Geometry()
	sink, closeSink, err := openDeliverySink(r.Uinput, r.DeviceName, maxX, maxY, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closeSink() }()

	frames := api.NewFrameStream()
	sen.Attach(sensor.Tee{sink, frames})

	var apiSrv *api.Server
	if r.Api.Addr != "" {
		if err := r.ensurePassword(logger); err != nil {
			return err
		}
		apiSrv, err = newApiServer(dev, frames, r.Api, logger)
		if err != nil {
			return err
		}
		if err := apiSrv.Start(); err != nil {
			logger.Error("failed to start API server", "error", err)
			return err
		}
		defer apiSrv.Close()
	}

	logger.Info("touchpad attached", "poll", r.Poll.String())
	return attentionLoop(ctx, dev, r.Poll, logger)
}

// setupDevice scans the PDT, constructs the touch function handler and runs
// capability negotiation.
func setupDevice(bus rmi.Bus, cfg sensor.Config, logger *slog.Logger) (*f11.F11, *sensor.Sensor, error) {
	fd, err := rmi.FindFunction(bus, f11.FunctionNumber)
	if err != nil {
		return nil, nil, err
	}

	fn, err := rmi.NewFunction(bus, fd, logger)
	if err != nil {
		return nil, nil, err
	}
	dev, ok := fn.(*f11.F11)
	if !ok {
		return nil, nil, fmt.Errorf("unexpected handler type for function 0x%02x", fd.Number)
	}

	sen := sensor.New(cfg, logger)
	dev.Attach(sen)
	if err := dev.Initialize(); err != nil {
		return nil, nil, err
	}
	return dev, sen, nil
}

func newApiServer(dev api.Device, frames *api.FrameStream, cfg api.ServerConfig, logger *slog.Logger) (*api.Server, error) {
	apiSrv, err := api.New(dev, cfg, logger)
	if err != nil {
		return nil, err
	}
	rt := apiSrv.Router()
	rt.Register("ping", handler.Ping())
	rt.Register("status", handler.Status(dev))
	rt.Register("caps", handler.Caps(dev))
	rt.Register("config", handler.Config(dev))
	rt.Register("enable/{state}", handler.Enable(dev))
	rt.Register("click/{state}", handler.Click(dev))
	rt.Register("typing", handler.Typing(dev))
	rt.RegisterStream("events", api.EventsStreamHandler(frames))
	return apiSrv, nil
}

// ensurePassword loads the persisted API password, generating and persisting
// a fresh one on first run.
func (r *Run) ensurePassword(logger *slog.Logger) error {
	if r.Api.Password != "" {
		return nil
	}

	keyFileDir, err := configpaths.DefaultConfigDir()
	if err != nil {
		return fmt.Errorf("failed to resolve key file path: %w", err)
	}
	keyFilePath := path.Join(keyFileDir, keyFileName)
	if pwd, err := os.ReadFile(keyFilePath); err == nil {
		r.Api.Password = strings.TrimSpace(string(pwd))
		return nil
	}

	newPwd, err := auth.GenerateKey()
	if err != nil {
		return fmt.Errorf("failed to generate new API password: %w", err)
	}
	if err := os.MkdirAll(keyFileDir, 0o700); err != nil {
		return fmt.Errorf("failed to create config dir for key file: %w", err)
	}
	if err := os.WriteFile(keyFilePath, []byte(newPwd), 0o600); err != nil {
		return fmt.Errorf("failed to write new API password to file: %w", err)
	}
	r.Api.Password = newPwd
	logger.Info("Generated API server password", "path", keyFilePath)
	logger.Info("-------------------------------------")
	logger.Info("Your rmitouch API password is:")
	logger.Info("-------------------------------------")
	logger.Info(newPwd)
	logger.Info("-------------------------------------")
	logger.Info("You can change this password at any time by editing the file")
	return nil
}

// attentionLoop polls the function for attention data. Transient bus errors
// are logged and retried; a persistent run of failures aborts the session.
func attentionLoop(ctx context.Context, dev *f11.F11, interval time.Duration, logger *slog.Logger) error {
	const maxConsecutiveErrors = 10

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	errRun := 0
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil
		case now := <-ticker.C:
			if err := dev.Attention(now); err != nil {
				errRun++
				logger.Error("attention failed", "error", err, "consecutive", errRun)
				if errRun >= maxConsecutiveErrors {
					return fmt.Errorf("bus unresponsive after %d consecutive failures: %w", errRun, err)
				}
				continue
			}
			errRun = 0
		}
	}
}
