package handler

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/rmikit/rmitouch/apitypes"
	"github.com/rmikit/rmitouch/internal/server/api"
)

// Typing returns a handler for "typing": it marks keyboard activity so the
// disable-while-typing window starts now.
func Typing(dev api.Device) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		dev.Sensor().NotifyKeyboardActivity(time.Now())

		b, err := json.Marshal(apitypes.TypingResponse{Acknowledged: true})
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
