package serialport

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"go.bug.st/serial"
)

// readPollTimeout bounds how long a native Read blocks waiting for bytes.
// Keeping it short makes Read behave as "return whatever is pending".
const readPollTimeout = 50 * time.Millisecond

// NativePort talks to a real serial device through the OS serial API.
type NativePort struct {
	mu    sync.Mutex
	port  serial.Port
	ports []string // last enumeration result, addressed by TryConnect index
}

// NewNativePort creates a disconnected native serial transport.
func NewNativePort() *NativePort {
	return &NativePort{}
}

func (n *NativePort) AvailablePorts(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	list, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("serialport: listing ports: %w", err)
	}

	n.mu.Lock()
	n.ports = list
	n.mu.Unlock()

	return list, nil
}

func (n *NativePort) TryConnect(ctx context.Context, portIndex int, opts Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if portIndex < 0 || portIndex >= len(n.ports) {
		return fmt.Errorf("serialport: invalid port index %d (have %d ports)", portIndex, len(n.ports))
	}
	if opts.FlowControl != FlowControlNone {
		return fmt.Errorf("serialport: flow control %q is not supported by the native transport", opts.FlowControl)
	}

	if n.port != nil {
		if err := n.port.Close(); err != nil {
			log.Printf("serialport: closing previous port: %v", err)
		}
		n.port = nil
	}

	mode := &serial.Mode{
		BaudRate: opts.Baudrate,
		DataBits: int(opts.DataBits),
		Parity:   nativeParity(opts.Parity),
		StopBits: nativeStopBits(opts.StopBits),
	}

	name := n.ports[portIndex]
	port, err := serial.Open(name, mode)
	if err != nil {
		return fmt.Errorf("serialport: opening %s: %w", name, err)
	}
	if err := port.SetReadTimeout(readPollTimeout); err != nil {
		port.Close()
		return fmt.Errorf("serialport: setting read timeout on %s: %w", name, err)
	}

	n.port = port
	return nil
}

func (n *NativePort) IsConnected() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.port != nil
}

func (n *NativePort) Close(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.port == nil {
		return nil
	}
	err := n.port.Close()
	n.port = nil
	if err != nil {
		return fmt.Errorf("serialport: closing port: %w", err)
	}
	return nil
}

func (n *NativePort) Read(ctx context.Context, maxBytes int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n.mu.Lock()
	port := n.port
	n.mu.Unlock()

	if port == nil {
		return nil, ErrNotConnected
	}

	buf := make([]byte, maxBytes)
	read, err := port.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("serialport: read: %w", err)
	}
	return buf[:read], nil
}

func nativeParity(p Parity) serial.Parity {
	switch p {
	case ParityOdd:
		return serial.OddParity
	case ParityEven:
		return serial.EvenParity
	default:
		return serial.NoParity
	}
}

func nativeStopBits(s StopBits) serial.StopBits {
	if s == StopBits2 {
		return serial.TwoStopBits
	}
	return serial.OneStopBit
}
