package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Sink persists batches of events.
type Sink interface {
	InsertBatch(ctx context.Context, events []Event) error
}

// LoggerConfig configures the async audit logger.
type LoggerConfig struct {
	BufferSize    int
	BatchSize     int
	FlushInterval time.Duration
	Logger        *slog.Logger
}

// AsyncLogger implements Logger with a buffered channel and background worker.
type AsyncLogger struct {
	ch     chan Event
	sink   Sink
	cfg    LoggerConfig
	log    *slog.Logger
	now    func() time.Time
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewAsyncLogger creates and starts an async audit logger.
func NewAsyncLogger(sink Sink, cfg LoggerConfig) *AsyncLogger {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 4096
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 500 * time.Millisecond
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	l := &AsyncLogger{
		ch:     make(chan Event, cfg.BufferSize),
		sink:   sink,
		cfg:    cfg,
		log:    log,
		now:    time.Now,
		cancel: cancel,
	}

	l.wg.Add(1)
	go l.worker(ctx)

	return l
}

// Log enqueues an audit event. It never blocks; the event is dropped when
// the buffer is full.
func (l *AsyncLogger) Log(_ context.Context, event Event) {
	if event.At.IsZero() {
		event.At = l.now().UTC()
	}
	select {
	case l.ch <- event:
	default:
		l.log.Warn("audit buffer full, dropping event", "action", event.Action)
	}
}

// Close flushes remaining events and stops the worker.
func (l *AsyncLogger) Close() error {
	l.cancel()
	l.wg.Wait()
	l.flush(l.drainAll())
	return nil
}

func (l *AsyncLogger) worker(ctx context.Context) {
	defer l.wg.Done()

	ticker := time.NewTicker(l.cfg.FlushInterval)
	defer ticker.Stop()

	var batch []Event

	for {
		select {
		case <-ctx.Done():
			batch = append(batch, l.drainAll()...)
			l.flush(batch)
			return

		case e := <-l.ch:
			batch = append(batch, e)
			if len(batch) >= l.cfg.BatchSize {
				l.flush(batch)
				batch = nil
			}

		case <-ticker.C:
			if len(batch) > 0 {
				l.flush(batch)
				batch = nil
			}
		}
	}
}

func (l *AsyncLogger) flush(events []Event) {
	if len(events) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := l.sink.InsertBatch(ctx, events); err != nil {
		l.log.Error("audit flush failed", "error", err, "count", len(events))
	}
}

func (l *AsyncLogger) drainAll() []Event {
	var events []Event
	for {
		select {
		case e := <-l.ch:
			events = append(events, e)
		default:
			return events
		}
	}
}

// SlogSink writes events to a structured logger. It is used when no
// database is configured.
type SlogSink struct {
	Logger *slog.Logger
}

func (s SlogSink) InsertBatch(ctx context.Context, events []Event) error {
	for _, e := range events {
		s.Logger.LogAttrs(ctx, slog.LevelInfo, "audit event",
			slog.String("action", e.Action),
			slog.String("actor_id", e.ActorID),
			slog.String("module", e.Module),
			slog.String("record_id", e.RecordID),
			slog.Any("metadata", e.Metadata),
			slog.String("source", e.Source),
			slog.Time("at", e.At),
		)
	}
	return nil
}
