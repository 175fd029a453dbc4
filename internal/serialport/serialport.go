// Package serialport abstracts the device byte stream behind one capability
// interface with native serial, TCP bridge and demo generator variants.
package serialport

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Connection is the capability interface every transport variant implements.
// The ingestion pipeline depends only on Read producing zero or more raw
// bytes per call; an empty result is not an error.
type Connection interface {
	// AvailablePorts lists connectable ports. TryConnect addresses ports by
	// index into the most recent result.
	AvailablePorts(ctx context.Context) ([]string, error)

	TryConnect(ctx context.Context, portIndex int, opts Options) error

	IsConnected() bool

	Close(ctx context.Context) error

	// Read returns up to maxBytes of raw device data. It may return an empty
	// slice when no data is pending.
	Read(ctx context.Context, maxBytes int) ([]byte, error)
}

// ErrNotConnected is returned by Read and Close when no device is attached.
var ErrNotConnected = errors.New("serialport: not connected")

// DataBits is the number of data bits per character.
type DataBits int

const (
	DataBits5 DataBits = 5
	DataBits6 DataBits = 6
	DataBits7 DataBits = 7
	DataBits8 DataBits = 8
)

// ParseDataBits converts a config value into DataBits.
func ParseDataBits(n int) (DataBits, error) {
	if n < 5 || n > 8 {
		return DataBits8, fmt.Errorf("invalid data bits %d (want 5-8)", n)
	}
	return DataBits(n), nil
}

// Parity is the parity checking mode.
type Parity string

const (
	ParityNone Parity = "none"
	ParityOdd  Parity = "odd"
	ParityEven Parity = "even"
)

// ParseParity converts a config string into a Parity.
func ParseParity(s string) (Parity, error) {
	switch Parity(s) {
	case ParityNone, ParityOdd, ParityEven:
		return Parity(s), nil
	default:
		return ParityNone, fmt.Errorf("invalid parity %q (want none, odd or even)", s)
	}
}

// StopBits is the number of stop bits per character.
type StopBits int

const (
	StopBits1 StopBits = 1
	StopBits2 StopBits = 2
)

// ParseStopBits converts a config value into StopBits.
func ParseStopBits(n int) (StopBits, error) {
	if n != 1 && n != 2 {
		return StopBits1, fmt.Errorf("invalid stop bits %d (want 1 or 2)", n)
	}
	return StopBits(n), nil
}

// FlowControl is the flow control mode.
type FlowControl string

const (
	FlowControlNone     FlowControl = "none"
	FlowControlSoftware FlowControl = "software"
	FlowControlHardware FlowControl = "hardware"
)

// ParseFlowControl converts a config string into a FlowControl.
func ParseFlowControl(s string) (FlowControl, error) {
	switch FlowControl(s) {
	case FlowControlNone, FlowControlSoftware, FlowControlHardware:
		return FlowControl(s), nil
	default:
		return FlowControlNone, fmt.Errorf("invalid flow control %q (want none, software or hardware)", s)
	}
}

// Options holds the connection parameters passed to TryConnect.
type Options struct {
	Baudrate    int
	Timeout     time.Duration
	DataBits    DataBits
	FlowControl FlowControl
	Parity      Parity
	StopBits    StopBits
}

// DefaultOptions returns the settings most devices speak: 115200 8N1.
func DefaultOptions() Options {
	return Options{
		Baudrate:    115200,
		Timeout:     5 * time.Second,
		DataBits:    DataBits8,
		FlowControl: FlowControlNone,
		Parity:      ParityNone,
		StopBits:    StopBits1,
	}
}
