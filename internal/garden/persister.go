package garden

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"grimpo/internal/storage"
)

// ErrPersisterClosed is recorded when a write is enqueued after Close.
var ErrPersisterClosed = errors.New("persister closed")

const (
	DefaultPersistMaxTries   = 5
	DefaultPersistMaxElapsed = 5 * time.Second
	defaultRetryInterval     = 100 * time.Millisecond
)

// Persister writes garden fields in the background. Pending writes are coalesced
// per field, so the queue never holds more than one value per field.
type Persister struct {
	repo  Repository
	key   string
	log   *zap.Logger
	tries uint
	// maxElapsed bounds the retries of a single write.
	maxElapsed time.Duration
	interval   time.Duration
	onError    func(storage.Field, error)

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	pending map[storage.Field]any
	order   []storage.Field
	busy    bool
	closed  bool
	errs    []error
	waiters []chan struct{}

	wake      chan struct{}
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

type PersisterOption func(*Persister)

func WithPersistLogger(l *zap.Logger) PersisterOption {
	return func(p *Persister) {
		if l != nil {
			p.log = l
		}
	}
}

// WithRetry sets the retry budget for a single field write.
func WithRetry(maxTries uint, maxElapsed time.Duration) PersisterOption {
	return func(p *Persister) {
		if maxTries > 0 {
			p.tries = maxTries
		}
		if maxElapsed > 0 {
			p.maxElapsed = maxElapsed
		}
	}
}

// WithRetryInterval sets the first backoff interval.
func WithRetryInterval(d time.Duration) PersisterOption {
	return func(p *Persister) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithErrorHandler registers fn to be called for every write that exhausted its retries.
func WithErrorHandler(fn func(storage.Field, error)) PersisterOption {
	return func(p *Persister) { p.onError = fn }
}

func NewPersister(repo Repository, key string, opts ...PersisterOption) *Persister {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Persister{
		repo:       repo,
		key:        key,
		log:        zap.NewNop(),
		tries:      DefaultPersistMaxTries,
		maxElapsed: DefaultPersistMaxElapsed,
		interval:   defaultRetryInterval,
		ctx:        ctx,
		cancel:     cancel,
		pending:    make(map[storage.Field]any),
		wake:       make(chan struct{}, 1),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	go p.run()
	return p
}

// Enqueue schedules value to be written for field. It never blocks on storage.
func (p *Persister) Enqueue(field storage.Field, value any) {
	p.mu.Lock()
	if p.closed {
		p.errs = append(p.errs, fmt.Errorf("persist %s: %w", field, ErrPersisterClosed))
		p.mu.Unlock()
		p.log.Warn("persist after close dropped", zap.String("key", p.key), zap.String("field", string(field)))
		return
	}
	if _, queued := p.pending[field]; !queued {
		p.order = append(p.order, field)
	}
	p.pending[field] = value
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Flush waits until every enqueued write has been attempted, then returns
// (and forgets) the errors of writes that failed since the previous Flush.
func (p *Persister) Flush(ctx context.Context) error {
	p.mu.Lock()
	if p.idleLocked() {
		err := p.takeErrsLocked()
		p.mu.Unlock()
		return err
	}
	ch := make(chan struct{})
	p.waiters = append(p.waiters, ch)
	p.mu.Unlock()

	select {
	case <-ch:
	case <-ctx.Done():
		return ctx.Err()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.takeErrsLocked()
}

// Close flushes, then stops the background writer. Writes still in flight when
// ctx expires are cancelled.
func (p *Persister) Close(ctx context.Context) error {
	err := p.Flush(ctx)
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		p.cancel()
		close(p.stop)
	})
	<-p.done
	return err
}

func (p *Persister) run() {
	defer close(p.done)
	for {
		select {
		case <-p.stop:
			return
		case <-p.wake:
			p.drain()
		}
	}
}

func (p *Persister) drain() {
	for {
		p.mu.Lock()
		if len(p.order) == 0 {
			p.busy = false
			for _, ch := range p.waiters {
				close(ch)
			}
			p.waiters = nil
			p.mu.Unlock()
			return
		}
		field := p.order[0]
		p.order = p.order[1:]
		value := p.pending[field]
		delete(p.pending, field)
		p.busy = true
		p.mu.Unlock()

		if err := p.write(field, value); err != nil {
			p.log.Warn("persist failed", zap.String("key", p.key), zap.String("field", string(field)), zap.Error(err))
			p.mu.Lock()
			p.errs = append(p.errs, err)
			p.mu.Unlock()
			if p.onError != nil {
				p.onError(field, err)
			}
		}
	}
}

func (p *Persister) write(field storage.Field, value any) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.interval
	b.MaxInterval = p.maxElapsed

	_, err := backoff.Retry(p.ctx, func() (struct{}, error) {
		return struct{}{}, p.repo.SaveField(p.ctx, p.key, field, value)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(p.tries),
		backoff.WithMaxElapsedTime(p.maxElapsed),
		backoff.WithNotify(func(err error, next time.Duration) {
			p.log.Debug("persist retry", zap.String("field", string(field)), zap.Duration("next", next), zap.Error(err))
		}),
	)
	if err != nil {
		return fmt.Errorf("persist %s: %w", field, err)
	}
	return nil
}

func (p *Persister) idleLocked() bool {
	return len(p.order) == 0 && !p.busy
}

func (p *Persister) takeErrsLocked() error {
	err := errors.Join(p.errs...)
	p.errs = nil
	return err
}
