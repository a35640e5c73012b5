package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/rmikit/rmitouch/apitypes"
	"github.com/rmikit/rmitouch/internal/server/api"
)

// Config returns a handler exposing the sensor configuration in effect.
func Config(dev api.Device) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		cfg := dev.Sensor().Config()
		payload := apitypes.ConfigResponse{
			DisableWhileTyping:    cfg.DisableWhileTyping.String(),
			ForceTouchEmulation:   cfg.ForceTouchEmulation,
			ForceTouchMinPressure: cfg.ForceTouchMinPressure,
		}
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
