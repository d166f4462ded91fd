package telemetry

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
)

const (
	defaultQueueSize     = 1000
	defaultBatchSize     = 100
	defaultFlushInterval = time.Second
	defaultTimeout       = 5 * time.Second
)

// ShipperOption configures a Shipper.
type ShipperOption func(*Shipper)

// WithClient overrides the HTTP client, primarily for tests.
func WithClient(c *http.Client) ShipperOption {
	return func(s *Shipper) { s.client = c }
}

// WithFlushInterval sets the maximum time between batch sends. Default: 1s.
func WithFlushInterval(d time.Duration) ShipperOption {
	return func(s *Shipper) { s.flushInterval = d }
}

// WithBatchSize sets the record count that triggers an immediate send.
// Default: 100.
func WithBatchSize(n int) ShipperOption {
	return func(s *Shipper) { s.batchSize = n }
}

// WithQueueSize sets the in-memory queue capacity. Records beyond it are
// dropped. Default: 1000.
func WithQueueSize(n int) ShipperOption {
	return func(s *Shipper) { s.queueSize = n }
}

// Shipper queues encoded log records and POSTs them to the ingestion endpoint
// as gzip-compressed JSON arrays. It satisfies zap's WriteSyncer surface:
// Write enqueues without blocking (records drop when the queue is full) and
// Sync forces a flush. Send failures are reported to stderr once and
// otherwise swallowed; shipping logs must never crash the application.
type Shipper struct {
	target     Target
	client     *http.Client
	instanceID string

	queueSize     int
	batchSize     int
	flushInterval time.Duration

	queue chan []byte
	flush chan chan struct{}
	done  chan struct{}
	wg    sync.WaitGroup

	closeOnce  sync.Once
	reportOnce sync.Once
}

// NewShipper starts a shipper delivering to the given target. A target with
// no ingestion endpoint silently discards batches.
func NewShipper(target Target, opts ...ShipperOption) *Shipper {
	s := &Shipper{
		target:        target,
		client:        &http.Client{Timeout: defaultTimeout},
		instanceID:    uuid.NewString(),
		queueSize:     defaultQueueSize,
		batchSize:     defaultBatchSize,
		flushInterval: defaultFlushInterval,
		flush:         make(chan chan struct{}),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.queue = make(chan []byte, s.queueSize)
	s.wg.Add(1)
	go s.run()
	return s
}

// Write enqueues one encoded record. The slice is copied because the encoder
// reuses its buffer. Write never returns an error.
func (s *Shipper) Write(p []byte) (int, error) {
	record := make([]byte, len(p))
	copy(record, p)

	select {
	case s.queue <- record:
	default:
		s.reportOnce.Do(func() {
			fmt.Fprintln(os.Stderr, "telemetry: queue full, dropping log records")
		})
	}
	return len(p), nil
}

// Sync drains the queue and waits for the resulting batch to be sent.
func (s *Shipper) Sync() error {
	ack := make(chan struct{})
	select {
	case s.flush <- ack:
		<-ack
	case <-s.done:
	}
	return nil
}

// Close stops the run loop after a final flush.
func (s *Shipper) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	s.wg.Wait()
	return nil
}

func (s *Shipper) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	var batch [][]byte
	for {
		select {
		case record := <-s.queue:
			batch = append(batch, record)
			if len(batch) >= s.batchSize {
				s.send(batch)
				batch = nil
			}
		case <-ticker.C:
			s.send(batch)
			batch = nil
		case ack := <-s.flush:
			s.send(append(batch, s.drain()...))
			batch = nil
			close(ack)
		case <-s.done:
			s.send(append(batch, s.drain()...))
			return
		}
	}
}

func (s *Shipper) drain() [][]byte {
	var out [][]byte
	for {
		select {
		case record := <-s.queue:
			out = append(out, record)
		default:
			return out
		}
	}
}

// send posts one batch as a gzip JSON array. Failures are swallowed after a
// single stderr notice.
func (s *Shipper) send(batch [][]byte) {
	if len(batch) == 0 {
		return
	}
	url := s.target.IngestURL()
	if url == "" {
		return
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, _ = zw.Write([]byte{'['})
	for i, record := range batch {
		if i > 0 {
			_, _ = zw.Write([]byte{','})
		}
		_, _ = zw.Write(bytes.TrimRight(record, "\n"))
	}
	_, _ = zw.Write([]byte{']'})
	if err := zw.Close(); err != nil {
		s.reportFailure(err)
		return
	}

	req, err := http.NewRequest(http.MethodPost, url, &buf)
	if err != nil {
		s.reportFailure(err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")
	req.Header.Set("X-Instrumentation-Key", s.target.InstrumentationKey)
	req.Header.Set("X-Instance-ID", s.instanceID)

	resp, err := s.client.Do(req)
	if err != nil {
		s.reportFailure(err)
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.reportFailure(fmt.Errorf("HTTP %d", resp.StatusCode))
	}
}

func (s *Shipper) reportFailure(err error) {
	s.reportOnce.Do(func() {
		fmt.Fprintf(os.Stderr, "telemetry: send failed (further failures suppressed): %v\n", err)
	})
}
