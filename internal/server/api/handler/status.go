package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/rmikit/rmitouch/apitypes"
	"github.com/rmikit/rmitouch/internal/server/api"
)

// Status returns a handler reporting the live driver state.
func Status(dev api.Device) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		s := dev.Sensor()
		maxX, maxY, xMM, yMM := s.Geometry()
		payload := apitypes.StatusResponse{
			Enabled:        s.Enabled(),
			Clickpad:       s.ClickpadPressed(),
			MalformedSlots: dev.MalformedSlots(),
			MaxX:           maxX,
			MaxY:           maxY,
			WidthMM:        xMM,
			HeightMM:       yMM,
		}
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
