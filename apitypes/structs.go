// Package apitypes holds the wire structures of the diagnostics API. It is
// importable by external clients and carries no driver dependencies.
package apitypes

import "fmt"

// ApiError represents an RFC 7807 (problem+json) error response.
type ApiError struct {
	// Status is the HTTP-style status code (e.g., 400, 404, 500)
	Status int `json:"status"`
	// Title is a short, human-readable summary of the problem type
	Title string `json:"title"`
	// Detail is a human-readable explanation specific to this occurrence
	Detail string `json:"detail"`
}

func (e ApiError) Error() string {
	if e.Status == 0 && e.Title == "" {
		return "unknown error"
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Detail)
}

// --

type PingResponse struct {
	Server  string `json:"server"`
	Version string `json:"version"`
}

// StatusResponse is the live driver state.
type StatusResponse struct {
	Enabled        bool   `json:"enabled"`
	Clickpad       bool   `json:"clickpad"`
	MalformedSlots uint64 `json:"malformedSlots"`
	MaxX           uint16 `json:"maxX"`
	MaxY           uint16 `json:"maxY"`
	WidthMM        uint16 `json:"widthMm"`
	HeightMM       uint16 `json:"heightMm"`
}

// CapsResponse summarizes the negotiated sensor capabilities and the packet
// layout derived from them.
type CapsResponse struct {
	Fingers       int    `json:"fingers"`
	PacketSize    int    `json:"packetSize"`
	AttnSize      int    `json:"attnSize"`
	AbsPosOffset  int    `json:"absPosOffset"`
	HasRel        bool   `json:"hasRel"`
	HasGestures   bool   `json:"hasGestures"`
	HasPalmDetect bool   `json:"hasPalmDetect"`
	HasDribble    bool   `json:"hasDribble"`
	HasACM        bool   `json:"hasAcm"`
	ClickpadProps uint8  `json:"clickpadProps"`
	MouseButtons  uint8  `json:"mouseButtons"`
	XElectrodes   uint8  `json:"xElectrodes"`
	YElectrodes   uint8  `json:"yElectrodes"`
}

type EnableResponse struct {
	Enabled bool `json:"enabled"`
}

type ClickResponse struct {
	Pressed bool `json:"pressed"`
}

type TypingResponse struct {
	Acknowledged bool `json:"acknowledged"`
}

// ConfigResponse mirrors the sensor configuration in effect.
type ConfigResponse struct {
	DisableWhileTyping    string `json:"disableWhileTyping"`
	ForceTouchEmulation   bool   `json:"forceTouchEmulation"`
	ForceTouchMinPressure uint8  `json:"forceTouchMinPressure"`
}

// EventSlot is one contact of a streamed frame.
type EventSlot struct {
	ID       int    `json:"id"`
	Finger   string `json:"finger"`
	X        uint16 `json:"x"`
	Y        uint16 `json:"y"`
	Width    uint8  `json:"width"`
	Pressure uint8  `json:"pressure"`
}

// EventFrame is one multitouch frame on the events stream, encoded as a
// single JSON line.
type EventFrame struct {
	TimestampMS int64       `json:"timestampMs"`
	Button      bool        `json:"button"`
	Slots       []EventSlot `json:"slots"`
}
