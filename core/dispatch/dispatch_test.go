package dispatch

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/webpush/core/push"
	"github.com/kochabx/webpush/core/push/pushtest"
)

// scriptedSender answers each endpoint with a scripted sequence of reports.
type scriptedSender struct {
	mu       sync.Mutex
	script   map[string][]func(endpoint string) (*push.Report, error)
	calls    map[string]int
	fallback int
}

func newScriptedSender(status int) *scriptedSender {
	return &scriptedSender{
		script:   make(map[string][]func(string) (*push.Report, error)),
		calls:    make(map[string]int),
		fallback: status,
	}
}

func (s *scriptedSender) on(endpoint string, steps ...func(string) (*push.Report, error)) {
	s.script[endpoint] = steps
}

func (s *scriptedSender) Send(_ context.Context, n *push.Notification) (*push.Report, error) {
	endpoint := n.Subscription().Endpoint()

	s.mu.Lock()
	i := s.calls[endpoint]
	s.calls[endpoint]++
	steps := s.script[endpoint]
	s.mu.Unlock()

	if i < len(steps) {
		return steps[i](endpoint)
	}
	return push.NewReport(endpoint, s.fallback, ""), nil
}

func (s *scriptedSender) count(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[endpoint]
}

func status(code int, retryAfter time.Duration) func(string) (*push.Report, error) {
	return func(endpoint string) (*push.Report, error) {
		r := push.NewReport(endpoint, code, "")
		r.RetryAfter = retryAfter
		return r, nil
	}
}

// recordSink keeps every report it is handed.
type recordSink struct {
	mu      sync.Mutex
	reports []*push.Report
}

func (s *recordSink) Consume(_ context.Context, reports []*push.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, reports...)
	return nil
}

func newNotification(t *testing.T, endpoint string) *push.Notification {
	t.Helper()
	sub, err := push.NewSubscription(endpoint)
	require.NoError(t, err)
	n, err := push.NewNotification(sub, nil)
	require.NoError(t, err)
	return n
}

func newTestDispatcher(t *testing.T, sender push.Sender, opts ...Option) (*Dispatcher, *[]time.Duration) {
	t.Helper()
	d, err := New(sender, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	var (
		mu     sync.Mutex
		delays []time.Duration
	)
	d.sleep = func(ctx context.Context, delay time.Duration) error {
		mu.Lock()
		delays = append(delays, delay)
		mu.Unlock()
		return ctx.Err()
	}
	return d, &delays
}

func TestFlushDeliversThroughPushService(t *testing.T) {
	service := pushtest.NewService(t, nil)
	pusher, err := push.New(push.WithDefaultAuth(pushtest.NewAuth(t)))
	require.NoError(t, err)

	sink := &recordSink{}
	d, _ := newTestDispatcher(t, pusher, WithSinks(sink), WithBatchSize(2), WithConcurrency(4))

	subscribers := make([]*pushtest.Subscriber, 5)
	for i := range subscribers {
		subscribers[i] = pushtest.NewSubscriber(t)
		sub := subscribers[i].Subscription(t, service.Endpoint(fmt.Sprint(i)))
		n, err := push.NewNotification(sub, []byte(fmt.Sprintf("message %d", i)))
		require.NoError(t, err)
		require.NoError(t, d.Queue(n))
	}
	require.NoError(t, d.Queue(nil))
	assert.Equal(t, 5, d.Len())

	reports, err := d.Flush(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 5)
	assert.Zero(t, d.Len())

	for i, r := range reports {
		assert.True(t, r.Success)
		assert.Equal(t, service.Endpoint(fmt.Sprint(i)), r.Endpoint)
	}
	assert.Len(t, sink.reports, 5)

	for _, req := range service.Requests() {
		id := strings.TrimPrefix(req.Path, "/push/")
		var i int
		_, err := fmt.Sscan(id, &i)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("message %d", i), string(subscribers[i].Decrypt(t, req.Body)))
		assert.True(t, strings.HasPrefix(req.Header.Get("Authorization"), "vapid t="))
	}

	// an empty queue flushes to nothing
	reports, err = d.Flush(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, reports)
}

func TestRetryReencrypts(t *testing.T) {
	service := pushtest.NewService(t, func(path string, attempt int) int {
		if attempt == 1 {
			return http.StatusServiceUnavailable
		}
		return http.StatusCreated
	})
	pusher, err := push.New(push.WithDefaultAuth(pushtest.NewAuth(t)))
	require.NoError(t, err)

	d, delays := newTestDispatcher(t, pusher, WithRetry(NewFixedDelay(time.Second, 3)))
	subscriber := pushtest.NewSubscriber(t)
	n, err := push.NewNotification(subscriber.Subscription(t, service.Endpoint("a")), []byte("hello"))
	require.NoError(t, err)
	require.NoError(t, d.Queue(n))

	reports, err := d.Flush(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.True(t, reports[0].Success)
	assert.Equal(t, []time.Duration{time.Second}, *delays)

	requests := service.Requests()
	require.Len(t, requests, 2)
	assert.NotEqual(t, requests[0].Body[:16], requests[1].Body[:16], "each attempt draws a new salt")
	assert.Equal(t, "hello", string(subscriber.Decrypt(t, requests[1].Body)))
}

func TestRetryPolicy(t *testing.T) {
	const (
		limited = "https://push.example.com/limited"
		broken  = "https://push.example.com/broken"
		gone    = "https://push.example.com/gone"
		bad     = "https://push.example.com/bad"
		huge    = "https://other.example.com/huge"
	)
	sender := newScriptedSender(http.StatusCreated)
	sender.on(limited, status(http.StatusTooManyRequests, 5*time.Second))
	sender.on(broken,
		status(http.StatusInternalServerError, 0),
		status(http.StatusBadGateway, 0),
		status(http.StatusServiceUnavailable, 0),
	)
	sender.on(gone, status(http.StatusGone, 0))
	sender.on(bad, status(http.StatusBadRequest, 0))
	sender.on(huge, status(http.StatusTooManyRequests, time.Hour))

	d, delays := newTestDispatcher(t, sender,
		WithRetry(NewFixedDelay(time.Second, 2)),
		WithCircuitBreaker(0, 0),
		WithConcurrency(1),
		WithBatchSize(1),
	)
	for _, endpoint := range []string{limited, broken, gone, bad, huge} {
		require.NoError(t, d.Queue(newNotification(t, endpoint)))
	}

	reports, err := d.Flush(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 5)

	// Retry-After wins over a shorter backoff
	assert.True(t, reports[0].Success)
	assert.Equal(t, 2, sender.count(limited))
	// retries stop after MaxRetries
	assert.Equal(t, http.StatusServiceUnavailable, reports[1].StatusCode)
	assert.Equal(t, 3, sender.count(broken))
	// expired and client errors are final
	assert.True(t, reports[2].Expired)
	assert.Equal(t, 1, sender.count(gone))
	assert.Equal(t, 1, sender.count(bad))
	// a Retry-After beyond the bound is not waited for
	assert.Equal(t, http.StatusTooManyRequests, reports[4].StatusCode)
	assert.Equal(t, 1, sender.count(huge))

	assert.Equal(t, []time.Duration{5 * time.Second, time.Second, time.Second}, *delays)
}

func TestTransportFailureRetried(t *testing.T) {
	endpoint := "https://push.example.com/a"
	sender := newScriptedSender(http.StatusCreated)
	sender.on(endpoint, func(endpoint string) (*push.Report, error) {
		return push.NewFailureReport(endpoint, fmt.Errorf("connection refused")), nil
	})

	d, _ := newTestDispatcher(t, sender, WithRetry(NewFixedDelay(0, 1)))
	require.NoError(t, d.Queue(newNotification(t, endpoint)))

	reports, err := d.Flush(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.True(t, reports[0].Success)
	assert.Equal(t, 2, sender.count(endpoint))
}

func TestCircuitBreakerOpens(t *testing.T) {
	sender := newScriptedSender(http.StatusServiceUnavailable)
	reg := prometheus.NewRegistry()
	metrics := NewMetrics("webpush", reg)

	d, _ := newTestDispatcher(t, sender,
		WithRetry(NoRetry{}),
		WithCircuitBreaker(2, time.Hour),
		WithConcurrency(1),
		WithBatchSize(1),
		WithMetrics(metrics),
	)
	for i := range 3 {
		require.NoError(t, d.Queue(newNotification(t, fmt.Sprintf("https://push.example.com/%d", i))))
	}
	other := "https://other.example.com/x"
	require.NoError(t, d.Queue(newNotification(t, other)))

	reports, err := d.Flush(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 4)

	assert.Equal(t, http.StatusServiceUnavailable, reports[0].StatusCode)
	assert.Equal(t, http.StatusServiceUnavailable, reports[1].StatusCode)
	assert.Equal(t, "circuit open", reports[2].Reason)
	assert.ErrorIs(t, reports[2].Cause, ErrCircuitOpen)
	assert.Zero(t, sender.count("https://push.example.com/2"))
	// breakers are per push service
	assert.Equal(t, 1, sender.count(other))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Reports.WithLabelValues("circuit_open")))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.Reports.WithLabelValues("rejected")))
	assert.Equal(t, float64(StateOpen), testutil.ToFloat64(metrics.CircuitState.WithLabelValues("https://push.example.com")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.QueueLength))
}

func TestCoreFailureYieldsNoReport(t *testing.T) {
	service := pushtest.NewService(t, nil)
	// no VAPID auth configured: every send fails before reaching the wire
	pusher, err := push.New()
	require.NoError(t, err)

	d, _ := newTestDispatcher(t, pusher)
	require.NoError(t, d.Queue(newNotification(t, service.Endpoint("a"))))

	reports, err := d.Flush(context.Background())
	assert.Empty(t, reports)
	assert.ErrorIs(t, err, push.ErrMissingCredential)
	assert.Empty(t, service.Requests())
}

func TestPruner(t *testing.T) {
	ctx := context.Background()
	service := pushtest.NewService(t, func(path string, _ int) int {
		if path == "/push/gone" {
			return http.StatusGone
		}
		return http.StatusCreated
	})
	pusher, err := push.New(push.WithDefaultAuth(pushtest.NewAuth(t)))
	require.NoError(t, err)

	store := push.NewMemoryStore()
	for _, id := range []string{"gone", "alive"} {
		sub, err := push.NewSubscription(service.Endpoint(id))
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, "user-1", sub))
	}

	d, _ := newTestDispatcher(t, pusher, WithSinks(NewPruner(store, nil)))
	subs, err := store.List(ctx, "user-1")
	require.NoError(t, err)
	for _, sub := range subs {
		n, err := push.NewNotification(sub, nil)
		require.NoError(t, err)
		require.NoError(t, d.Queue(n))
	}

	_, err = d.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, service.Attempts("/push/gone"))

	subs, err = store.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, service.Endpoint("alive"), subs[0].Endpoint())
}

func TestSchedule(t *testing.T) {
	sender := newScriptedSender(http.StatusCreated)
	sink := &recordSink{}
	d, err := New(sender, WithSinks(sink))
	require.NoError(t, err)
	defer d.Close()

	assert.ErrorIs(t, d.Schedule("not a spec"), ErrInvalidSchedule)
	require.NoError(t, d.Schedule("@every 1s"))
	d.Start()

	require.NoError(t, d.Queue(newNotification(t, "https://push.example.com/a")))
	assert.Eventually(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return len(sink.reports) == 1
	}, 5*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, d.Stop(ctx))
}

func TestClose(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNilSender)

	d, err := New(newScriptedSender(http.StatusCreated))
	require.NoError(t, err)
	require.NoError(t, d.Queue(newNotification(t, "https://push.example.com/a")))
	require.NoError(t, d.Close())
	require.NoError(t, d.Close())

	assert.ErrorIs(t, d.Queue(newNotification(t, "https://push.example.com/b")), ErrClosed)
	_, err = d.Flush(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, d.Schedule("@every 1s"), ErrClosed)
}

func TestRetryStrategies(t *testing.T) {
	e := &ExponentialBackoff{BaseDelay: time.Second, MaxDelay: 5 * time.Second, Multiplier: 2, MaxRetries: 4}
	for i, want := range []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second} {
		got, ok := e.NextRetry(i)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := e.NextRetry(4)
	assert.False(t, ok)

	jittered := NewExponentialBackoff(time.Second, time.Minute, 1)
	got, ok := jittered.NextRetry(0)
	assert.True(t, ok)
	assert.InDelta(t, float64(time.Second), float64(got), float64(250*time.Millisecond))

	_, ok = NoRetry{}.NextRetry(0)
	assert.False(t, ok)
}

func TestCircuitBreakerStates(t *testing.T) {
	now := time.Now()
	cb := NewCircuitBreaker(2, time.Minute)
	cb.now = func() time.Time { return now }

	assert.True(t, cb.Allow())
	cb.RecordFailure()
	assert.Equal(t, StateClosed, cb.State())
	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())
	assert.False(t, cb.Allow())

	now = now.Add(time.Minute)
	assert.True(t, cb.Allow())
	assert.Equal(t, StateHalfOpen, cb.State())
	// only one probe while half open
	assert.False(t, cb.Allow())
	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())

	now = now.Add(time.Minute)
	assert.True(t, cb.Allow())
	cb.RecordSuccess()
	assert.Equal(t, StateClosed, cb.State())
	assert.True(t, cb.Allow())

	disabled := NewCircuitBreaker(0, time.Minute)
	for range 10 {
		disabled.RecordFailure()
	}
	assert.True(t, disabled.Allow())

	assert.Equal(t, "https://push.example.com", origin("https://push.example.com/a/b?c"))
	assert.Equal(t, "opaque", origin("opaque"))
}
