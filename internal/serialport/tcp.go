package serialport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"
)

// BridgePort reads the raw device stream from a serial-over-TCP bridge
// (ser2net, esp-link and similar). Connection parameters other than the
// timeout are configured on the bridge itself and ignored here.
type BridgePort struct {
	mu   sync.Mutex
	addr string
	conn net.Conn
}

// NewBridgePort creates a disconnected bridge transport for addr
// (host:port).
func NewBridgePort(addr string) *BridgePort {
	return &BridgePort{addr: addr}
}

func (b *BridgePort) AvailablePorts(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []string{b.addr}, nil
}

func (b *BridgePort) TryConnect(ctx context.Context, portIndex int, opts Options) error {
	if portIndex != 0 {
		return fmt.Errorf("serialport: invalid port index %d for bridge %s", portIndex, b.addr)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn != nil {
		b.conn.Close()
		b.conn = nil
	}

	dialer := net.Dialer{Timeout: opts.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", b.addr)
	if err != nil {
		return fmt.Errorf("serialport: dialing bridge %s: %w", b.addr, err)
	}

	b.conn = conn
	return nil
}

func (b *BridgePort) IsConnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn != nil
}

func (b *BridgePort) Close(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn == nil {
		return nil
	}
	err := b.conn.Close()
	b.conn = nil
	if err != nil {
		return fmt.Errorf("serialport: closing bridge connection: %w", err)
	}
	return nil
}

func (b *BridgePort) Read(ctx context.Context, maxBytes int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()

	if conn == nil {
		return nil, ErrNotConnected
	}

	deadline, ok := ctx.Deadline()
	if !ok || deadline.After(time.Now().Add(readPollTimeout)) {
		deadline = time.Now().Add(readPollTimeout)
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, fmt.Errorf("serialport: setting read deadline: %w", err)
	}

	buf := make([]byte, maxBytes)
	read, err := conn.Read(buf)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			// No pending bytes before the deadline. Not an error.
			return nil, nil
		}
		return nil, fmt.Errorf("serialport: bridge read: %w", err)
	}
	return buf[:read], nil
}
