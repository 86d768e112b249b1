package dispatch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/kochabx/webpush/core/push"
	"github.com/kochabx/webpush/core/util/desensitize"
	"github.com/kochabx/webpush/core/util/id"
	"github.com/kochabx/webpush/errors"
	"github.com/kochabx/webpush/log"
)

// Dispatcher queues notifications and delivers them in batches on a goroutine
// pool, retrying transient failures. Reports go to the configured sinks.
type Dispatcher struct {
	sender   push.Sender
	opts     *Options
	logger   *log.Logger
	pool     *ants.Pool
	cron     *cron.Cron
	breakers *breakers

	mu    sync.Mutex
	queue []*push.Notification

	flushMu sync.Mutex
	closed  atomic.Bool
	sleep   func(ctx context.Context, d time.Duration) error
}

// New creates a Dispatcher around sender.
func New(sender push.Sender, opts ...Option) (*Dispatcher, error) {
	if sender == nil {
		return nil, ErrNilSender
	}

	options := DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	if options.Concurrency <= 0 {
		options.Concurrency = defaultConcurrency
	}
	if options.BatchSize <= 0 {
		options.BatchSize = defaultBatchSize
	}
	if options.Retry == nil {
		options.Retry = NoRetry{}
	}
	if options.Logger == nil {
		options.Logger = log.G
	}

	pool, err := ants.NewPool(options.Concurrency, ants.WithPreAlloc(true))
	if err != nil {
		return nil, fmt.Errorf("dispatch: create pool: %w", err)
	}

	logger := &log.Logger{Logger: options.Logger.With().Str("component", "dispatch").Logger()}
	d := &Dispatcher{
		sender:   sender,
		opts:     options,
		logger:   logger,
		pool:     pool,
		breakers: newBreakers(options.BreakerThreshold, options.BreakerCooldown),
		sleep:    sleep,
	}
	d.cron = cron.New(
		cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor)),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger})),
		cron.WithLogger(cronLogger{logger}),
	)
	return d, nil
}

// Queue appends notifications for the next flush. Nil entries are ignored.
func (d *Dispatcher) Queue(ns ...*push.Notification) error {
	if d.closed.Load() {
		return ErrClosed
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, n := range ns {
		if n != nil {
			d.queue = append(d.queue, n)
		}
	}
	d.opts.Metrics.setQueueLength(len(d.queue))
	return nil
}

// Len returns the number of queued notifications.
func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

// Flush delivers everything queued so far and returns the reports in queue
// order. Notifications that could not be built yield no report; their errors
// are joined into the returned error together with sink failures.
func (d *Dispatcher) Flush(ctx context.Context) ([]*push.Report, error) {
	if d.closed.Load() {
		return nil, ErrClosed
	}

	d.flushMu.Lock()
	defer d.flushMu.Unlock()
	if d.closed.Load() {
		return nil, ErrClosed
	}

	d.mu.Lock()
	queued := d.queue
	d.queue = nil
	d.opts.Metrics.setQueueLength(0)
	d.mu.Unlock()

	if len(queued) == 0 {
		return nil, nil
	}

	batchID := id.Short()
	logger := d.logger.With().Str("batch_id", batchID).Int("notifications", len(queued)).Logger()
	logger.Debug().Msg("flush started")

	var (
		reports = make([]*push.Report, 0, len(queued))
		errs    []error
	)
	for start := 0; start < len(queued); start += d.opts.BatchSize {
		batch := queued[start:min(start+d.opts.BatchSize, len(queued))]
		batchReports, err := d.deliverBatch(ctx, batch)
		if err != nil {
			errs = append(errs, err)
		}
		if err := d.consume(ctx, batchReports); err != nil {
			errs = append(errs, err)
		}
		reports = append(reports, batchReports...)
	}

	logger.Debug().Int("reports", len(reports)).Msg("flush finished")
	return reports, errors.Join(errs...)
}

func (d *Dispatcher) deliverBatch(ctx context.Context, batch []*push.Notification) ([]*push.Report, error) {
	var (
		wg      sync.WaitGroup
		reports = make([]*push.Report, len(batch))
		errs    = make([]error, len(batch))
	)
	for i, n := range batch {
		wg.Add(1)
		if err := d.pool.Submit(func() {
			defer wg.Done()
			reports[i], errs[i] = d.deliver(ctx, n)
		}); err != nil {
			wg.Done()
			errs[i] = err
		}
	}
	wg.Wait()

	out := make([]*push.Report, 0, len(batch))
	for _, r := range reports {
		if r != nil {
			out = append(out, r)
		}
	}
	return out, errors.Join(errs...)
}

// deliver sends n until it succeeds, fails for good or runs out of retries.
// Every attempt goes through the sender again, so each one carries a fresh
// salt and ephemeral key.
func (d *Dispatcher) deliver(ctx context.Context, n *push.Notification) (*push.Report, error) {
	endpoint := n.Subscription().Endpoint()
	o := origin(endpoint)
	cb := d.breakers.get(o)

	var (
		report   *push.Report
		attempts int
	)
	for {
		if !cb.Allow() {
			if report == nil {
				report = push.NewFailureReport(endpoint, ErrCircuitOpen)
			}
			break
		}

		start := time.Now()
		r, err := d.sender.Send(ctx, n)
		d.opts.Metrics.observeSend(time.Since(start))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", desensitize.Endpoint(endpoint, 6), err)
		}
		attempts++
		report = r

		if retryable(r) {
			cb.RecordFailure()
		} else {
			cb.RecordSuccess()
		}
		d.opts.Metrics.setCircuitState(o, cb.State())

		if !retryable(r) {
			break
		}
		delay, ok := d.opts.Retry.NextRetry(attempts - 1)
		if !ok {
			break
		}
		if r.RetryAfter > delay {
			delay = r.RetryAfter
		}
		if d.opts.MaxRetryAfter > 0 && delay > d.opts.MaxRetryAfter {
			break
		}
		if err := d.sleep(ctx, delay); err != nil {
			break
		}
		d.opts.Metrics.observeRetry()
	}

	d.opts.Metrics.observeReport(report, attempts)
	return report, nil
}

// consume hands reports to every sink concurrently.
func (d *Dispatcher) consume(ctx context.Context, reports []*push.Report) error {
	if len(reports) == 0 || len(d.opts.Sinks) == 0 {
		return nil
	}

	var eg errgroup.Group
	for _, sink := range d.opts.Sinks {
		eg.Go(func() error {
			if err := sink.Consume(ctx, reports); err != nil {
				d.logger.Error().Err(err).Msg("report sink failed")
				return err
			}
			return nil
		})
	}
	return eg.Wait()
}

// Schedule flushes periodically on a cron spec such as "@every 30s" or
// "*/5 * * * *". A flush still running when the next one is due is skipped.
func (d *Dispatcher) Schedule(spec string) error {
	if d.closed.Load() {
		return ErrClosed
	}
	_, err := d.cron.AddFunc(spec, func() {
		if _, err := d.Flush(context.Background()); err != nil && !errors.Is(err, ErrClosed) {
			d.logger.Warn().Err(err).Msg("scheduled flush finished with errors")
		}
	})
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidSchedule, spec, err)
	}
	return nil
}

// Start runs the scheduled flushes in the background.
func (d *Dispatcher) Start() {
	d.cron.Start()
}

// Stop halts the schedule and waits for a running flush, or for ctx.
func (d *Dispatcher) Stop(ctx context.Context) error {
	select {
	case <-d.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the schedule and releases the pool. Notifications still queued
// are dropped; call Flush first to deliver them.
func (d *Dispatcher) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}
	<-d.cron.Stop().Done()

	d.flushMu.Lock()
	defer d.flushMu.Unlock()

	if n := d.Len(); n > 0 {
		d.logger.Warn().Int("notifications", n).Msg("dispatcher closed with queued notifications")
	}
	d.pool.Release()
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts log.Logger to cron.Logger.
type cronLogger struct {
	logger *log.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
