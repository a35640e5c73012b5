package api

import (
	"context"
	"log/slog"
	"net"
	"strings"
)

// Request contains route parameters and additional args from the command.
type Request struct {
	Ctx     context.Context
	Params  map[string]string
	Payload string
}

// Response holds the JSON string to return to the client.
type Response struct {
	JSON string
}

// HandlerFunc processes a request and populates the response.
// Returns an error on failure. The logger provided is a connection-scoped
// logger enriched with remote address metadata by the API server.
type HandlerFunc func(req *Request, res *Response, logger *slog.Logger) error

// StreamHandlerFunc handles long-lived connections. The handler takes
// ownership of the connection and should close it when done. Returning a
// non-nil error indicates a terminal failure; the server will log it.
type StreamHandlerFunc func(conn net.Conn, params map[string]string, logger *slog.Logger) error

// Router implements simple path pattern matching with placeholders in {name}.
type Router struct {
	routes       []routeEntry
	streamRoutes []streamRouteEntry
}

type routeEntry struct {
	parts         []string
	originalParts []string
	handler       HandlerFunc
}

type streamRouteEntry struct {
	parts         []string
	originalParts []string
	handler       StreamHandlerFunc
}

// NewRouter returns a new Router instance.
func NewRouter() *Router { return &Router{} }

// Register registers a handler for a path pattern like "enable/{state}".
func (r *Router) Register(pattern string, handler HandlerFunc) {
	r.routes = append(r.routes, routeEntry{
		parts:         strings.Split(strings.ToLower(pattern), "/"),
		originalParts: strings.Split(pattern, "/"),
		handler:       handler,
	})
}

// RegisterStream registers a StreamHandler for long-lived connections.
func (r *Router) RegisterStream(pattern string, handler StreamHandlerFunc) {
	r.streamRoutes = append(r.streamRoutes, streamRouteEntry{
		parts:         strings.Split(strings.ToLower(pattern), "/"),
		originalParts: strings.Split(pattern, "/"),
		handler:       handler,
	})
}

// Match returns the HandlerFunc and params if the given path matches any
// registered pattern. Returns nil if none match.
func (r *Router) Match(path string) (HandlerFunc, map[string]string) {
	parts := strings.Split(strings.ToLower(path), "/")
	for _, rt := range r.routes {
		if params, ok := matchParts(rt.parts, rt.originalParts, parts); ok {
			return rt.handler, params
		}
	}
	return nil, nil
}

// MatchStream returns the StreamHandler and params if the given path matches
// any registered stream pattern. Returns nil if none match.
func (r *Router) MatchStream(path string) (StreamHandlerFunc, map[string]string) {
	parts := strings.Split(strings.ToLower(path), "/")
	for _, rt := range r.streamRoutes {
		if params, ok := matchParts(rt.parts, rt.originalParts, parts); ok {
			return rt.handler, params
		}
	}
	return nil, nil
}

func matchParts(pattern, original, parts []string) (map[string]string, bool) {
	if len(pattern) != len(parts) {
		return nil, false
	}
	params := map[string]string{}
	for i := range parts {
		if strings.HasPrefix(pattern[i], "{") && strings.HasSuffix(pattern[i], "}") {
			name := original[i][1 : len(original[i])-1]
			params[name] = parts[i]
			continue
		}
		if pattern[i] != parts[i] {
			return nil, false
		}
	}
	return params, true
}
