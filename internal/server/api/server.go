// Package api implements the diagnostics API of the driver: a small TCP
// protocol for inspecting negotiated capabilities, toggling the touchpad and
// streaming decoded multitouch frames. Commands are a null-terminated path
// plus optional payload; responses are single JSON lines.
package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/rmikit/rmitouch/internal/server/api/auth"
	"github.com/rmikit/rmitouch/rmi/f11"
	"github.com/rmikit/rmitouch/sensor"
)

// Device is the live driver state the API reports on. *f11.F11 satisfies it.
type Device interface {
	Queries() f11.SensorQueries
	Layout() f11.PacketLayout
	MalformedSlots() uint64
	Sensor() *sensor.Sensor
}

// Server implements the diagnostics TCP API.
type Server struct {
	dev    Device
	addr   string
	ln     net.Listener
	logger *slog.Logger
	router *Router
	config ServerConfig
	key    []byte
}

// New creates a new API server bound to a device session.
func New(dev Device, config ServerConfig, logger *slog.Logger) (*Server, error) {
	a := &Server{
		dev:    dev,
		addr:   config.Addr,
		logger: logger,
		config: config,
	}
	if config.Password != "" {
		key, err := auth.DeriveKey(config.Password)
		if err != nil {
			return nil, fmt.Errorf("api: derive key: %w", err)
		}
		a.key = key
	}
	a.router = NewRouter()
	return a, nil
}

// Router returns the router used by the API server so callers can register
// handlers.
func (a *Server) Router() *Router { return a.router }

// Device returns the underlying device session.
func (a *Server) Device() Device { return a.dev }

// Config returns the server configuration.
func (a *Server) Config() ServerConfig { return a.config }

// Addr returns the bound listen address. Only valid after Start.
func (a *Server) Addr() string {
	if a.ln != nil {
		return a.ln.Addr().String()
	}
	return a.addr
}

// Start listens on the configured address and serves incoming API commands.
func (a *Server) Start() error {
	ln, err := net.Listen("tcp", a.addr)
	if err != nil {
		return err
	}
	a.ln = ln
	a.logger.Info("API listening", "addr", ln.Addr().String())
	go a.serve()
	return nil
}

// Close stops the API server.
func (a *Server) Close() {
	if a.ln != nil {
		_ = a.ln.Close()
	}
}

func (a *Server) serve() {
	for {
		c, err := a.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || strings.Contains(strings.ToLower(err.Error()), "use of closed network connection") {
				a.logger.Info("API server stopped")
				return
			}
			a.logger.Info("API accept error", "error", err)
			return
		}
		go a.handleConn(c)
	}
}

func (a *Server) writeError(w io.Writer, err error) {
	apiErr := WrapError(err)
	problemJSON, _ := json.Marshal(apiErr)
	fmt.Fprintf(w, "%s\n", string(problemJSON))
}

func (a *Server) writeOK(w io.Writer, rest string) {
	if rest == "" {
		fmt.Fprintln(w)
	} else {
		fmt.Fprintf(w, "%s\n", rest)
	}
}

// authenticate upgrades the connection when the client opens with the auth
// handshake. Without a configured password the handshake is rejected; with
// RequireAuth set, plaintext connections are rejected instead.
func (a *Server) authenticate(conn net.Conn, r *bufio.Reader, logger *slog.Logger) (net.Conn, *bufio.Reader, error) {
	isAuth, err := auth.IsAuthHandshake(r)
	if err != nil {
		return nil, nil, err
	}
	if !isAuth {
		if a.config.RequireAuth {
			return nil, nil, ErrUnauthorized("authentication required")
		}
		return conn, r, nil
	}
	if len(a.key) == 0 {
		return nil, nil, ErrUnauthorized("no API password configured")
	}

	clientNonce, serverNonce, err := auth.HandleAuthHandshake(r, conn, a.key, false)
	if err != nil {
		return nil, nil, err
	}
	sessionKey := auth.DeriveSessionKey(a.key, serverNonce, clientNonce)
	sc, err := auth.WrapConn(conn, sessionKey)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("api session encrypted")
	return sc, bufio.NewReader(sc), nil
}

func (a *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	connCtx, connCancel := context.WithCancel(context.Background())
	defer connCancel()

	connLogger := a.logger.With("remote", conn.RemoteAddr().String())
	r := bufio.NewReader(conn)

	if a.config.ConnectionTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(a.config.ConnectionTimeout))
	}

	conn, r, err := a.authenticate(conn, r, connLogger)
	if err != nil {
		connLogger.Error("api auth failed", "error", err)
		a.writeError(conn, err)
		return
	}
	w := conn

	// Read until null terminator
	reqData, err := r.ReadString('\x00')
	if err != nil {
		if err == io.EOF {
			connLogger.Error("api incomplete request (no null terminator)")
		} else {
			connLogger.Error("read api data", "error", err)
		}
		return
	}
	reqData = strings.TrimSuffix(reqData, "\x00")

	if reqData == "" {
		connLogger.Error("api empty command")
		a.writeError(w, ErrBadRequest("empty request"))
		return
	}

	// Split on first whitespace character
	wsRegex := regexp.MustCompile(`\s`)
	loc := wsRegex.FindStringIndex(reqData)

	var path, payload string
	if loc != nil {
		path = reqData[:loc[0]]
		payload = reqData[loc[1]:]
	} else {
		path = reqData
	}

	if path == "" {
		connLogger.Error("api empty path")
		a.writeError(w, ErrBadRequest("empty path"))
		return
	}

	path = strings.ToLower(path)
	connLogger.Info("api cmd", "path", path)

	if h, params := a.router.Match(path); h != nil {
		req := &Request{Ctx: connCtx, Params: params, Payload: payload}
		res := &Response{}
		if err := h(req, res, connLogger); err != nil {
			connLogger.Error("api handler error", "path", path, "error", err)
			a.writeError(w, err)
			return
		}
		connLogger.Debug("api handler success", "path", path)
		a.writeOK(w, res.JSON)
		return
	}
	if sh, params := a.router.MatchStream(path); sh != nil {
		// Streams live until the client hangs up.
		_ = conn.SetReadDeadline(time.Time{})
		connLogger.Info("api stream begin", "path", path)
		if err := sh(conn, params, connLogger); err != nil {
			connLogger.Error("api stream handler error", "path", path, "error", err)
		}
		connLogger.Info("api stream end", "path", path)
		return
	}

	connLogger.Error("api unknown path", "path", path)
	a.writeError(w, ErrNotFound(fmt.Sprintf("unknown path: %s", path)))
}
