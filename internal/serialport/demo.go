package serialport

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"
)

// DemoPortName is the single port the demo transport exposes.
const DemoPortName = "demo"

// demoFrequency is how often the demo device emits a line.
const demoFrequency = 60.0

// DemoPort is a deterministic device stand-in. It emits one telemetry frame
// per 1/60 s with a square wave and two sine waves, in the same line format
// a sketch would print.
type DemoPort struct {
	mu        sync.Mutex
	connected bool
	startTime time.Time
	lastRead  time.Time

	// now is swappable for tests.
	now func() time.Time
}

// NewDemoPort creates a disconnected demo transport.
func NewDemoPort() *DemoPort {
	return &DemoPort{now: time.Now}
}

func (d *DemoPort) AvailablePorts(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []string{DemoPortName}, nil
}

func (d *DemoPort) TryConnect(ctx context.Context, portIndex int, _ Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if portIndex != 0 {
		d.connected = false
		return fmt.Errorf("serialport: invalid demo port index %d", portIndex)
	}

	now := d.now()
	d.connected = true
	d.startTime = now
	d.lastRead = now
	return nil
}

func (d *DemoPort) IsConnected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connected
}

func (d *DemoPort) Close(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.connected = false
	return nil
}

func (d *DemoPort) Read(ctx context.Context, _ int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil, ErrNotConnected
	}

	now := d.now()
	if now.Sub(d.lastRead).Seconds() < 1.0/demoFrequency {
		return nil, nil
	}
	d.lastRead = now

	elapsed := now.Sub(d.startTime).Seconds()

	square := -1.0
	if int(math.Round(elapsed))%2 == 0 {
		square = 0.2
	}
	sin1 := math.Sin(elapsed) - 0.5
	sin2 := math.Sin(elapsed*0.5)*0.7 + 0.3

	frame := fmt.Sprintf("time=%.4f, square=%.4f, sin_1=%.4f, sin_2=%.4f \n",
		elapsed, square, sin1, sin2)
	return []byte(frame), nil
}
