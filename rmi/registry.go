package rmi

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Function is a live RMI4 function handler bound to one device session.
type Function interface {
	// Number returns the RMI4 function number this handler serves.
	Number() uint8
	// Initialize negotiates capabilities and prepares per-session state.
	// A failure here is fatal: the function must not be used afterwards.
	Initialize() error
	// Attention services one attention event. now is the delivery timestamp
	// shared by everything derived from the packet.
	Attention(now time.Time) error
}

// NewFunctionFunc constructs a function handler for a scanned descriptor.
type NewFunctionFunc func(bus Bus, fd FunctionDescriptor, logger *slog.Logger) Function

var (
	functionRegistry   = make(map[uint8]NewFunctionFunc)
	functionRegistryMu sync.RWMutex
)

// RegisterFunction registers a constructor for an RMI4 function number.
// This should be called from function package init() functions.
func RegisterFunction(number uint8, fn NewFunctionFunc) {
	functionRegistryMu.Lock()
	defer functionRegistryMu.Unlock()
	functionRegistry[number] = fn
}

// NewFunction constructs a handler for fd.Number, or fails if no constructor
// has been registered for it.
func NewFunction(bus Bus, fd FunctionDescriptor, logger *slog.Logger) (Function, error) {
	functionRegistryMu.RLock()
	ctor := functionRegistry[fd.Number]
	functionRegistryMu.RUnlock()
	if ctor == nil {
		return nil, fmt.Errorf("rmi: no handler registered for function 0x%02x", fd.Number)
	}
	return ctor(bus, fd, logger), nil
}

// RegisteredFunctions returns the function numbers with registered handlers.
func RegisteredFunctions() []uint8 {
	functionRegistryMu.RLock()
	defer functionRegistryMu.RUnlock()
	nums := make([]uint8, 0, len(functionRegistry))
	for n := range functionRegistry {
		nums = append(nums, n)
	}
	return nums
}
