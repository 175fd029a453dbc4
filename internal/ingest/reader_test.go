package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tinytelemetry/splot/internal/serialport"
)

// fakeConn scripts a sequence of Read results and records concurrency.
type fakeConn struct {
	mu        sync.Mutex
	reads     [][]byte
	errs      []error
	idx       int
	inFlight  int
	maxFlight int
	connected bool
}

func (f *fakeConn) AvailablePorts(context.Context) ([]string, error) {
	return []string{"fake"}, nil
}

func (f *fakeConn) TryConnect(context.Context, int, serialport.Options) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = true
	return nil
}

func (f *fakeConn) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeConn) Close(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	return nil
}

func (f *fakeConn) Read(ctx context.Context, _ int) ([]byte, error) {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxFlight {
		f.maxFlight = f.inFlight
	}
	i := f.idx
	f.idx++
	f.mu.Unlock()

	// Simulate a little device latency so overlapping reads would be caught.
	time.Sleep(time.Millisecond)

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()

	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.reads) {
		return f.reads[i], nil
	}
	return nil, nil
}

func TestReaderIngestsChunks(t *testing.T) {
	t.Parallel()
	conn := &fakeConn{
		reads: [][]byte{
			[]byte("a=1,"),
			[]byte("b=2\n"),
		},
		connected: true,
	}
	session := newTestSession()
	r := NewReader(conn, session, 32)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	waitFor(t, func() bool { return session.SamplesReceived() == 2 })
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v, want context.Canceled", err)
	}

	snap := session.Snapshot()
	if len(snap.Series) != 2 {
		t.Fatalf("series count = %d, want 2 from the reassembled line", len(snap.Series))
	}
	if conn.maxFlight > 1 {
		t.Errorf("observed %d overlapping reads, want single-flight", conn.maxFlight)
	}
}

func TestReaderRetriesAfterError(t *testing.T) {
	t.Parallel()
	conn := &fakeConn{
		errs:      []error{errors.New("device unplugged")},
		reads:     [][]byte{nil, []byte("a=1\n")},
		connected: true,
	}
	session := newTestSession()
	r := NewReader(conn, session, 32)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	// The failed read is retried, not fatal.
	waitFor(t, func() bool { return session.SamplesReceived() == 1 })
}

func TestReaderPauseStopsReads(t *testing.T) {
	t.Parallel()
	conn := &fakeConn{connected: true}
	session := newTestSession()
	r := NewReader(conn, session, 32)
	r.SetPaused(true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	time.Sleep(50 * time.Millisecond)
	conn.mu.Lock()
	issued := conn.idx
	conn.mu.Unlock()
	if issued != 0 {
		t.Errorf("paused reader issued %d reads, want 0", issued)
	}
	if !r.Paused() {
		t.Error("Paused() = false, want true")
	}
}

func TestReaderSkipsWhenDisconnected(t *testing.T) {
	t.Parallel()
	conn := &fakeConn{}
	session := newTestSession()
	r := NewReader(conn, session, 32)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	time.Sleep(50 * time.Millisecond)
	conn.mu.Lock()
	issued := conn.idx
	conn.mu.Unlock()
	if issued != 0 {
		t.Errorf("disconnected reader issued %d reads, want 0", issued)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}
