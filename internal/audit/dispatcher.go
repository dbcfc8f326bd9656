package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Origin identifies the client a request came from.
type Origin struct {
	IPAddress string
	UserAgent string
}

type Event struct {
	ActorID    *uuid.UUID
	Action     string
	EntityType string
	EntityID   string
	Metadata   map[string]any
	// Duration of the operation that produced the event.
	Duration time.Duration

	IPAddress string
	UserAgent string
}

type ErrorEvent struct {
	ActorID     *uuid.UUID
	Function    string
	Err         error
	Stack       string
	RequestData map[string]any
}

// Recorder is fire-and-forget: implementations never report failures back.
type Recorder interface {
	Record(ev Event)
	RecordError(ev ErrorEvent)
}

type sink interface {
	Log(ctx context.Context, ev Event) error
	LogError(ctx context.Context, ev ErrorEvent) error
}

type item struct {
	event *Event
	err   *ErrorEvent
}

type Dispatcher struct {
	sink    sink
	log     *slog.Logger
	timeout time.Duration

	queue chan item
	mu    sync.RWMutex
	done  chan struct{}
	once  sync.Once
	shut  bool
}

func NewDispatcher(logger *Logger, log *slog.Logger, size int) *Dispatcher {
	return newDispatcher(logger, log, size)
}

func newDispatcher(s sink, log *slog.Logger, size int) *Dispatcher {
	if size <= 0 {
		size = 100
	}
	if log == nil {
		log = slog.Default()
	}
	d := &Dispatcher{
		sink:    s,
		log:     log,
		timeout: 5 * time.Second,
		queue:   make(chan item, size),
		done:    make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for it := range d.queue {
		d.write(it)
	}
}

func (d *Dispatcher) write(it item) {
	// a panicking sink must not take the worker down
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("audit sink panicked", "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	switch {
	case it.event != nil:
		if err := d.sink.Log(ctx, *it.event); err != nil {
			d.log.Warn("failed to log activity", "action", it.event.Action, "error", err)
		}
	case it.err != nil:
		if err := d.sink.LogError(ctx, *it.err); err != nil {
			d.log.Error("failed to log error to database", "function", it.err.Function, "error", err)
		}
	}
}

func (d *Dispatcher) Record(ev Event) {
	d.enqueue(item{event: &ev})
}

func (d *Dispatcher) RecordError(ev ErrorEvent) {
	d.enqueue(item{err: &ev})
}

func (d *Dispatcher) enqueue(it item) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.shut {
		d.log.Warn("audit dispatcher closed, dropping event")
		return
	}

	select {
	case d.queue <- it:
	default:
		// queue full, never block the request path
		d.log.Warn("audit queue full, dropping event")
	}
}

// Close stops intake and waits for queued events to be written.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		d.mu.Lock()
		d.shut = true
		close(d.queue)
		d.mu.Unlock()
	})
	<-d.done
}

// WithOrigin stamps the client fields on ev.
func (ev Event) WithOrigin(o Origin) Event {
	ev.IPAddress = o.IPAddress
	ev.UserAgent = o.UserAgent
	return ev
}

var _ Recorder = (*Dispatcher)(nil)
