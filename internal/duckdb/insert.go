package duckdb

import (
	"log"
	"sync"
	"time"
)

const (
	// DefaultBatchSize is how many samples one flush writes at most.
	DefaultBatchSize = 2000
	// DefaultFlushInterval bounds how long a sample sits unflushed.
	DefaultFlushInterval = 500 * time.Millisecond
	// DefaultFlushQueueSize is the number of batches that can be queued for
	// the flush goroutine before Add falls back to an inline flush.
	DefaultFlushQueueSize = 16
)

// InsertBuffer batches samples and flushes them to the store asynchronously
// so ingestion never blocks on database writes.
type InsertBuffer struct {
	writer        SampleWriter
	mu            sync.Mutex
	pending       []SampleRow
	flushChan     chan []SampleRow
	maxBatch      int
	flushInterval time.Duration
	done          chan struct{}
	wg            sync.WaitGroup
}

// InsertBufferConfig holds tunable parameters for the insert buffer.
type InsertBufferConfig struct {
	BatchSize      int
	FlushInterval  time.Duration
	FlushQueueSize int
}

// NewInsertBuffer creates a buffer that flushes to writer in the background.
func NewInsertBuffer(writer SampleWriter, conf ...InsertBufferConfig) *InsertBuffer {
	batchSize := DefaultBatchSize
	flushInterval := DefaultFlushInterval
	queueSize := DefaultFlushQueueSize
	if len(conf) > 0 {
		if conf[0].BatchSize > 0 {
			batchSize = conf[0].BatchSize
		}
		if conf[0].FlushInterval > 0 {
			flushInterval = conf[0].FlushInterval
		}
		if conf[0].FlushQueueSize > 0 {
			queueSize = conf[0].FlushQueueSize
		}
	}

	b := &InsertBuffer{
		writer:        writer,
		pending:       make([]SampleRow, 0, batchSize),
		flushChan:     make(chan []SampleRow, queueSize),
		maxBatch:      batchSize,
		flushInterval: flushInterval,
		done:          make(chan struct{}),
	}

	b.wg.Add(2)
	go b.flushWorker()
	go b.tickLoop()

	return b
}

// Add queues one sample. A full batch is handed to the flush goroutine; if
// the queue is saturated the batch is written inline instead of being
// dropped.
func (b *InsertBuffer) Add(row SampleRow) {
	b.mu.Lock()
	b.pending = append(b.pending, row)
	if len(b.pending) < b.maxBatch {
		b.mu.Unlock()
		return
	}
	batch := b.pending
	b.pending = make([]SampleRow, 0, b.maxBatch)
	b.mu.Unlock()

	select {
	case b.flushChan <- batch:
	default:
		if err := b.writer.InsertSamples(batch); err != nil {
			log.Printf("duckdb: inline flush failed: %v", err)
		}
	}
}

// Flush writes everything pending synchronously.
func (b *InsertBuffer) Flush() {
	b.mu.Lock()
	batch := b.pending
	b.pending = make([]SampleRow, 0, b.maxBatch)
	b.mu.Unlock()

	if len(batch) == 0 {
		return
	}
	if err := b.writer.InsertSamples(batch); err != nil {
		log.Printf("duckdb: flush failed: %v", err)
	}
}

// Close stops the background goroutines and flushes the remainder.
func (b *InsertBuffer) Close() {
	close(b.done)
	b.wg.Wait()
	close(b.flushChan)
	for batch := range b.flushChan {
		if err := b.writer.InsertSamples(batch); err != nil {
			log.Printf("duckdb: final flush failed: %v", err)
		}
	}
	b.Flush()
}

func (b *InsertBuffer) flushWorker() {
	defer b.wg.Done()
	for {
		select {
		case <-b.done:
			return
		case batch := <-b.flushChan:
			if err := b.writer.InsertSamples(batch); err != nil {
				log.Printf("duckdb: async flush failed: %v", err)
			}
		}
	}
}

func (b *InsertBuffer) tickLoop() {
	defer b.wg.Done()
	ticker := time.NewTicker(b.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-b.done:
			return
		case <-ticker.C:
			b.Flush()
		}
	}
}
