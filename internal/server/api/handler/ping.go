package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/rmikit/rmitouch/apitypes"
	"github.com/rmikit/rmitouch/internal/server/api"
)

const serverName = "rmitouch"

// Version is stamped at build time via -ldflags.
var Version = "dev"

// Ping returns a handler answering with server identity and version.
func Ping() api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		b, err := json.Marshal(apitypes.PingResponse{Server: serverName, Version: Version})
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
