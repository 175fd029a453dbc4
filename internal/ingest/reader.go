package ingest

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/tinytelemetry/splot/internal/serialport"
)

const (
	// readTimeout bounds one device read. A timeout is not a device failure,
	// just an empty poll.
	readTimeout = time.Second

	// idleDelay paces the loop when a read returned nothing.
	idleDelay = 2 * time.Millisecond

	// retryDelay paces the loop after a read failure or while paused or
	// disconnected, so a dead device does not spin the CPU.
	retryDelay = 250 * time.Millisecond
)

// Reader is the driving task: it repeatedly acquires the next chunk from the
// device and synchronously runs it through the session. Reads are
// single-flight -- the loop never issues a second read before the first one
// resolved -- so no partial parse state is ever observable.
type Reader struct {
	conn    serialport.Connection
	session *Session
	chunk   int
	paused  atomic.Bool
}

// NewReader creates a reader that feeds session from conn in chunks of
// chunkSize bytes per read.
func NewReader(conn serialport.Connection, session *Session, chunkSize int) *Reader {
	if chunkSize <= 0 {
		chunkSize = 32
	}
	return &Reader{
		conn:    conn,
		session: session,
		chunk:   chunkSize,
	}
}

// SetPaused stops issuing reads without tearing down the connection. A read
// in flight when pausing is abandoned; nothing of it has been merged.
func (r *Reader) SetPaused(paused bool) {
	r.paused.Store(paused)
}

// Paused reports whether ingestion is paused.
func (r *Reader) Paused() bool {
	return r.paused.Load()
}

// Run loops until ctx is cancelled. Device failures are logged and retried;
// they never terminate ingestion.
func (r *Reader) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if r.paused.Load() || !r.conn.IsConnected() {
			if !sleepCtx(ctx, retryDelay) {
				return ctx.Err()
			}
			continue
		}

		readCtx, cancel := context.WithTimeout(ctx, readTimeout)
		data, err := r.conn.Read(readCtx, r.chunk)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("ingest: device read failed: %v", err)
			if !sleepCtx(ctx, retryDelay) {
				return ctx.Err()
			}
			continue
		}

		if len(data) == 0 {
			if !sleepCtx(ctx, idleDelay) {
				return ctx.Err()
			}
			continue
		}

		if err := r.session.IngestBytes(data); err != nil {
			// Parser state is already discarded; resume on the next chunk.
			log.Printf("ingest: %v", err)
		}
	}
}

// sleepCtx waits d or until ctx is done. It reports false on cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
