package api

import "time"

// ServerConfig represents the diagnostics API configuration.
type ServerConfig struct {
	Addr              string        `help:"Diagnostics API listen address, empty to disable" default:"localhost:3247" env:"RMITOUCH_API_ADDR"`
	Password          string        `help:"API password; auto-generated and persisted when empty" env:"RMITOUCH_API_PASSWORD"`
	RequireAuth       bool          `help:"Reject connections that skip the auth handshake" default:"false" env:"RMITOUCH_API_REQUIRE_AUTH"`
	ConnectionTimeout time.Duration `help:"Per-request read deadline" default:"30s" env:"RMITOUCH_API_CONNECTION_TIMEOUT"`
}
