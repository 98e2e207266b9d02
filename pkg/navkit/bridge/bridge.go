// Package bridge runs blocking work off the UI goroutine and delivers the
// results back onto it.
//
// Tasks run on a bounded pool of goroutines. When a task finishes, its
// OnResult or OnError callback is handed to the host's Scheduler, which
// runs it on the UI loop in the order completions were observed. Callbacks
// never run on a worker goroutine.
//
// RunAsyncCached adds a small time-to-live cache keyed by an application
// chosen string, so repeated requests for the same resource can be served
// without running the task again.
//
//	b, _ := bridge.New(uiLoop, bridge.WithMaxWorkers(4))
//	b.RunAsyncCached("users", fetchUsers,
//	    bridge.OnResult(view.OnDataReceived),
//	    bridge.OnError(view.ShowError),
//	    bridge.WithTTL(time.Minute),
//	)
package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/BrandonKowalski/navkit/pkg/navkit/internal"
	"github.com/hashicorp/go-metrics"
	"go.uber.org/atomic"
	"golang.org/x/sync/semaphore"
)

// Task is the blocking work submitted to the bridge. Arguments are captured
// by the closure.
type Task func() (any, error)

// Scheduler runs functions on the UI loop. Schedule must not block and must
// be safe to call from any goroutine; it returns false if the function was
// rejected. *loop.Loop satisfies it.
type Scheduler interface {
	Schedule(fn func()) bool
}

// SchedulerFunc adapts a plain function to Scheduler.
type SchedulerFunc func(fn func()) bool

func (f SchedulerFunc) Schedule(fn func()) bool {
	return f(fn)
}

// Bridge runs tasks in the background and delivers results on the UI loop.
type Bridge struct {
	sched  Scheduler
	cfg    config
	logger *slog.Logger
	sem    *semaphore.Weighted

	// mu guards cache and pending. It is held across the cache check and the
	// submission in RunAsyncCached so both are decided together.
	mu      sync.Mutex
	cache   *resultCache
	pending map[string]*Future

	// stateMu orders submissions against Shutdown. Lock order: mu, stateMu.
	stateMu     sync.Mutex
	wg          sync.WaitGroup
	closed      atomic.Bool
	stopped     atomic.Bool
	inflight    atomic.Int64
	queueCtx    context.Context
	cancelQueue context.CancelFunc
}

type job struct {
	future   *Future
	task     Task
	opts     callOptions
	cacheKey string
	cached   bool
}

// New creates a bridge that delivers callbacks through sched.
func New(sched Scheduler, opts ...Option) (*Bridge, error) {
	if sched == nil {
		return nil, fmt.Errorf("%w: nil scheduler", ErrInvalidConfig)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = internal.GetInternalLogger()
	}

	queueCtx, cancel := context.WithCancel(context.Background())

	return &Bridge{
		sched:       sched,
		cfg:         cfg,
		logger:      logger.With("subsystem", "bridge"),
		sem:         semaphore.NewWeighted(int64(cfg.maxWorkers)),
		cache:       newResultCache(cfg.maxCacheEntries),
		pending:     make(map[string]*Future),
		queueCtx:    queueCtx,
		cancelQueue: cancel,
	}, nil
}

// RunAsync runs task in the background. When it finishes, exactly one
// delivery is scheduled on the UI loop: OnResult with the value, or OnError
// with the failure. A failure without OnError is logged instead.
//
// The returned Future is already failed with ErrClosed if the bridge is
// shutting down; no callback fires in that case.
func (b *Bridge) RunAsync(task Task, opts ...CallOption) *Future {
	return b.submit(job{task: task, opts: b.callOptions(opts)})
}

// RunAsyncCached is RunAsync backed by the result cache.
//
// On a valid cache hit the cached value is delivered to OnResult through the
// scheduler, never synchronously. Without Revalidate(true) nothing else
// happens and nil is returned. With it, the task also runs and its result
// is delivered as well.
//
// On a miss the task runs; a successful result is stored under key before
// OnResult is scheduled. A failure leaves any existing entry untouched.
//
// After shutdown the cache is not consulted and the returned Future is
// already failed with ErrClosed.
func (b *Bridge) RunAsyncCached(key string, task Task, opts ...CallOption) *Future {
	if b.closed.Load() {
		return failedFuture(ErrClosed)
	}
	o := b.callOptions(opts)

	b.mu.Lock()
	defer b.mu.Unlock()

	if data, ok := b.cache.get(key, b.cfg.now()); ok {
		b.count(internal.MetricBridgeCacheHit, internal.LabelCacheKey.M(key))
		if o.onResult != nil {
			onResult := o.onResult
			b.schedule(func() { onResult(data) })
		}
		if !o.revalidate {
			return nil
		}
	} else {
		b.count(internal.MetricBridgeCacheMiss, internal.LabelCacheKey.M(key))
	}

	f := b.submit(job{task: task, opts: o, cacheKey: key, cached: true})
	if _, err := f.Result(); !IsClosed(err) {
		b.pending[key] = f
	}
	return f
}

// Pending returns the in-flight future started by RunAsyncCached for key,
// or nil if none is running.
func (b *Bridge) Pending(key string) *Future {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending[key]
}

// GetCached returns the cached value for key if present and unexpired. It
// never starts a task.
func (b *Bridge) GetCached(key string) (any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cache.get(key, b.cfg.now())
}

// InvalidateCache removes the given keys from the cache, or every entry when
// called without keys. Tasks already running are unaffected and will still
// store their result.
func (b *Bridge) InvalidateCache(keys ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(keys) == 0 {
		b.cache.reset()
		return
	}
	for _, key := range keys {
		b.cache.remove(key)
	}
}

// CacheLen returns the number of cached entries, expired ones included.
func (b *Bridge) CacheLen() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cache.len()
}

// Inflight returns the number of submitted tasks that have not finished.
func (b *Bridge) Inflight() int64 {
	return b.inflight.Load()
}

// Shutdown stops accepting work and waits for submitted tasks to finish.
// If ctx ends first, tasks still waiting for a worker are abandoned and
// ctx.Err() is returned. Once Shutdown returns no further callbacks fire,
// including ones already queued on the UI loop.
func (b *Bridge) Shutdown(ctx context.Context) error {
	b.stateMu.Lock()
	if b.closed.Load() {
		b.stateMu.Unlock()
		return nil
	}
	b.closed.Store(true)
	b.stateMu.Unlock()

	b.logger.Debug("Shutting down bridge", "inflight", b.inflight.Load())

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
		b.logger.Warn("Abandoning background tasks", "inflight", b.inflight.Load(), "error", err)
	}

	b.cancelQueue()
	b.stopped.Store(true)

	b.mu.Lock()
	clear(b.pending)
	b.mu.Unlock()

	return err
}

func (b *Bridge) callOptions(opts []CallOption) callOptions {
	o := callOptions{ttl: b.cfg.defaultTTL}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (b *Bridge) submit(j job) *Future {
	b.stateMu.Lock()
	if b.closed.Load() {
		b.stateMu.Unlock()
		b.count(internal.MetricBridgeTaskRejected)
		return failedFuture(ErrClosed)
	}
	b.wg.Add(1)
	b.stateMu.Unlock()

	j.future = newFuture()
	b.count(internal.MetricBridgeTaskSubmitted)
	b.gauge(b.inflight.Inc())

	go b.execute(j)
	return j.future
}

func (b *Bridge) execute(j job) {
	defer b.wg.Done()
	defer func() { b.gauge(b.inflight.Dec()) }()

	if err := b.sem.Acquire(b.queueCtx, 1); err != nil {
		b.finish(j, nil, ErrClosed)
		return
	}
	value, err := b.call(j.task)
	b.sem.Release(1)

	if err != nil {
		b.count(internal.MetricBridgeTaskFailed)
	} else {
		b.count(internal.MetricBridgeTaskSucceeded)
		if j.cached {
			b.store(j.cacheKey, value, j.opts.ttl)
		}
	}

	b.deliver(j, value, err)
	b.finish(j, value, err)
}

func (b *Bridge) call(task Task) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()
	return task()
}

func (b *Bridge) store(key string, value any, ttl time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	evicted := b.cache.set(key, cacheEntry{
		data:      value,
		createdAt: b.cfg.now(),
		ttl:       ttl,
	})
	for i := 0; i < evicted; i++ {
		b.count(internal.MetricBridgeCacheEvict)
	}
}

func (b *Bridge) deliver(j job, value any, err error) {
	if err != nil {
		if j.opts.onError == nil {
			b.count(internal.MetricBridgeTaskUnhandled)
			b.logger.Error("Unhandled background task error",
				internal.LabelError.L(err), internal.LabelCacheKey.L(j.cacheKey))
			return
		}
		onError := j.opts.onError
		b.schedule(func() { onError(err) })
		return
	}

	if j.opts.onResult != nil {
		onResult := j.opts.onResult
		b.schedule(func() { onResult(value) })
	}
}

func (b *Bridge) finish(j job, value any, err error) {
	j.future.complete(value, err)

	if !j.cached {
		return
	}
	b.mu.Lock()
	if b.pending[j.cacheKey] == j.future {
		delete(b.pending, j.cacheKey)
	}
	b.mu.Unlock()
}

func (b *Bridge) schedule(fn func()) {
	accepted := b.sched.Schedule(func() {
		if b.stopped.Load() {
			b.count(internal.MetricBridgeDeliveryDropped)
			b.logger.Debug("Dropping delivery after shutdown")
			return
		}
		fn()
	})
	if !accepted {
		b.count(internal.MetricBridgeDeliveryDropped)
		b.logger.Warn("Scheduler rejected delivery")
	}
}

func (b *Bridge) count(key []string, labels ...metrics.Label) {
	metrics.IncrCounterWithLabels(key, 1, append(labels, b.cfg.metricLabels...))
}

func (b *Bridge) gauge(n int64) {
	metrics.SetGaugeWithLabels(internal.MetricBridgeInflight, float32(n), b.cfg.metricLabels)
}
