package api

import (
	"log/slog"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterMatch(t *testing.T) {
	r := NewRouter()
	r.Register("ping", func(req *Request, res *Response, logger *slog.Logger) error { return nil })
	r.Register("enable/{state}", func(req *Request, res *Response, logger *slog.Logger) error { return nil })

	h, params := r.Match("ping")
	require.NotNil(t, h)
	assert.Empty(t, params)

	h, params = r.Match("enable/on")
	require.NotNil(t, h)
	assert.Equal(t, "on", params["state"])

	h, _ = r.Match("ENABLE/OFF")
	require.NotNil(t, h, "matching is case-insensitive")

	h, _ = r.Match("enable")
	assert.Nil(t, h, "segment count must match")

	h, _ = r.Match("nope")
	assert.Nil(t, h)
}

func TestRouterMatchStream(t *testing.T) {
	r := NewRouter()
	r.RegisterStream("events", func(conn net.Conn, params map[string]string, logger *slog.Logger) error { return nil })

	sh, _ := r.MatchStream("events")
	require.NotNil(t, sh)

	h, _ := r.Match("events")
	assert.Nil(t, h, "stream routes are not plain routes")
}
