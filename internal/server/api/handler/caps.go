package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/rmikit/rmitouch/apitypes"
	"github.com/rmikit/rmitouch/internal/server/api"
)

// Caps returns a handler exposing the negotiated capabilities and the packet
// layout derived from them.
func Caps(dev api.Device) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		q := dev.Queries()
		l := dev.Layout()
		payload := apitypes.CapsResponse{
			Fingers:       l.NrFingers,
			PacketSize:    l.PacketSize,
			AttnSize:      l.AttnSize,
			AbsPosOffset:  l.AbsPosOffset,
			HasRel:        q.HasRel,
			HasGestures:   q.HasGestures,
			HasPalmDetect: q.HasPalmDet,
			HasDribble:    q.HasDribble,
			HasACM:        q.HasACM,
			ClickpadProps: q.ClickpadProps,
			MouseButtons:  q.MouseButtons,
			XElectrodes:   q.NrXElectrodes,
			YElectrodes:   q.NrYElectrodes,
		}
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
