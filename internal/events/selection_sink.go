package events

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SAP-F-2025/assessment-engine/internal/models"
	"github.com/SAP-F-2025/assessment-engine/internal/repositories"
)

const (
	DefaultSinkBuffer        = 256
	DefaultSinkBatchSize     = 50
	DefaultSinkFlushInterval = 2 * time.Second
)

// AsyncSelectionSink buffers selection logs and drains them in the
// background. Record never blocks; entries are dropped when the buffer is
// full or the sink is closed.
type AsyncSelectionSink struct {
	entries   chan models.SelectionLog
	repo      repositories.SelectionLogRepository
	publisher EventPublisher
	logger    *slog.Logger

	batchSize     int
	flushInterval time.Duration

	mu        sync.RWMutex
	closed    bool
	dropped   atomic.Int64
	started   atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
}

type SinkOption func(*AsyncSelectionSink)

func WithBatchSize(n int) SinkOption {
	return func(s *AsyncSelectionSink) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

func WithFlushInterval(d time.Duration) SinkOption {
	return func(s *AsyncSelectionSink) {
		if d > 0 {
			s.flushInterval = d
		}
	}
}

// NewAsyncSelectionSink creates a sink. Either repo or publisher may be nil.
// Call Start to begin draining.
func NewAsyncSelectionSink(
	buffer int,
	repo repositories.SelectionLogRepository,
	publisher EventPublisher,
	logger *slog.Logger,
	opts ...SinkOption,
) *AsyncSelectionSink {
	if buffer <= 0 {
		buffer = DefaultSinkBuffer
	}
	s := &AsyncSelectionSink{
		entries:       make(chan models.SelectionLog, buffer),
		repo:          repo,
		publisher:     publisher,
		logger:        logger,
		batchSize:     DefaultSinkBatchSize,
		flushInterval: DefaultSinkFlushInterval,
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record enqueues an entry without blocking.
func (s *AsyncSelectionSink) Record(entry models.SelectionLog) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.dropped.Add(1)
		return
	}
	select {
	case s.entries <- entry:
	default:
		s.dropped.Add(1)
	}
}

// Dropped returns how many entries were discarded.
func (s *AsyncSelectionSink) Dropped() int64 {
	return s.dropped.Load()
}

// Start drains the buffer until Close is called. The context is used for
// storage and publishing calls.
func (s *AsyncSelectionSink) Start(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go s.run(ctx)
}

func (s *AsyncSelectionSink) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	batch := make([]models.SelectionLog, 0, s.batchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		s.flush(ctx, batch)
		batch = make([]models.SelectionLog, 0, s.batchSize)
	}

	for {
		select {
		case entry, ok := <-s.entries:
			if !ok {
				flush()
				return
			}
			batch = append(batch, entry)
			if len(batch) >= s.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func (s *AsyncSelectionSink) flush(ctx context.Context, batch []models.SelectionLog) {
	if s.repo != nil {
		if err := s.repo.CreateBatch(ctx, nil, batch); err != nil {
			s.logger.Warn("Failed to store selection logs", "count", len(batch), "error", err)
		}
	}
	if s.publisher != nil {
		event := NewEvent(EventSelectionLogged, SelectionLoggedEvent{Logs: batch})
		if err := s.publisher.PublishEvent(ctx, event); err != nil {
			s.logger.Warn("Failed to publish selection logs", "count", len(batch), "error", err)
		}
	}
}

// Close stops accepting entries and waits for the buffer to drain.
func (s *AsyncSelectionSink) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.entries)
		s.mu.Unlock()
	})
	if s.started.Load() {
		<-s.done
	}
}
