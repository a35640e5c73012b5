package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/rmikit/rmitouch/apitypes"
	"github.com/rmikit/rmitouch/internal/server/api"
)

// Enable returns a handler for "enable/{state}" toggling report processing.
func Enable(dev api.Device) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		on, err := parseState(req.Params["state"])
		if err != nil {
			return api.ErrBadRequest(err.Error())
		}
		dev.Sensor().SetEnabled(on)
		logger.Info("touchpad enable state changed", "enabled", on)

		b, err := json.Marshal(apitypes.EnableResponse{Enabled: on})
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}

func parseState(s string) (bool, error) {
	switch s {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid state %q, expected on/off", s)
}
