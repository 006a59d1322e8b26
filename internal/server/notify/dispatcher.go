package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
)

// DispatcherConfig controls buffering of asynchronous notifications.
type DispatcherConfig struct {
	BufferSize int
	DropIfFull bool
	// SendTimeout bounds each delivery. Zero means no bound.
	SendTimeout time.Duration
}

type job struct {
	kind string
	to   string
	run  func(ctx context.Context) error
}

// Dispatcher runs notifications on a background worker so callers never
// wait on delivery. Failures are logged and dropped.
type Dispatcher struct {
	cfg       DispatcherConfig
	notifier  Notifier
	logger    logging.Logger
	ch        chan job
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closeOnce sync.Once

	// mu orders enqueues before Close: a job accepted under the read lock
	// is in ch before done closes, so the drain sees it.
	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(cfg DispatcherConfig, notifier Notifier, logger logging.Logger) *Dispatcher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}

	d := &Dispatcher{
		cfg:      cfg,
		notifier: notifier,
		logger:   logger,
		ch:       make(chan job, cfg.BufferSize),
		done:     make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

// Welcome queues a welcome email. It reports false if the job was dropped.
func (d *Dispatcher) Welcome(ctx context.Context, email, name string) bool {
	return d.enqueue(ctx, job{
		kind: "welcome",
		to:   email,
		run: func(ctx context.Context) error {
			return d.notifier.SendWelcome(ctx, email, name)
		},
	})
}

func (d *Dispatcher) enqueue(ctx context.Context, j job) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.dropped.Add(1)
		return false
	}

	if d.cfg.DropIfFull {
		select {
		case d.ch <- j:
			return true
		default:
		}
		d.dropped.Add(1)
		return false
	}

	select {
	case d.ch <- j:
		return true
	case <-ctx.Done():
	}
	d.dropped.Add(1)
	return false
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case j := <-d.ch:
			d.deliver(j)
		case <-d.done:
			for {
				select {
				case j := <-d.ch:
					d.deliver(j)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(j job) {
	ctx := context.Background()
	var cancel context.CancelFunc = func() {}
	if d.cfg.SendTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, d.cfg.SendTimeout)
	}
	defer cancel()

	if err := j.run(ctx); err != nil {
		d.logger.Warn(ctx, "notification failed", "kind", j.kind, "to", j.to, "error", err)
	}
}

// Close stops accepting jobs, delivers what is already queued, and waits
// for the worker to exit.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.done)
		d.mu.Unlock()
		d.wg.Wait()
	})
}

// Dropped returns how many jobs were discarded.
func (d *Dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}
