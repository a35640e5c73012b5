package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/rmikit/rmitouch/apitypes"
	"github.com/rmikit/rmitouch/internal/server/api"
)

// Click returns a handler for "click/{state}" feeding the mechanical
// clickpad press signal. Normally the GPIO collaborator drives this; the
// route exists for integration setups without one.
func Click(dev api.Device) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		pressed, err := parseState(req.Params["state"])
		if err != nil {
			return api.ErrBadRequest(err.Error())
		}
		dev.Sensor().SetClickpadState(pressed)

		b, err := json.Marshal(apitypes.ClickResponse{Pressed: pressed})
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
