package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer blocks in Run until Shutdown.
type fakeServer struct {
	stop     chan struct{}
	once     sync.Once
	runErr   error
	shutdown bool
}

func newFakeServer() *fakeServer {
	return &fakeServer{stop: make(chan struct{})}
}

func (s *fakeServer) Run() error {
	if s.runErr != nil {
		return s.runErr
	}
	<-s.stop
	return nil
}

func (s *fakeServer) Shutdown(context.Context) error {
	s.once.Do(func() {
		s.shutdown = true
		close(s.stop)
	})
	return nil
}

func TestNew(t *testing.T) {
	app := New(
		WithServers(newFakeServer(), nil, newFakeServer()),
		WithRunner("noop", func(ctx context.Context) error { return nil }),
		WithClose("c", func(context.Context) error { return nil }, 0),
		WithClose("nil", nil, 0),
		nil,
	)

	info := app.Info()
	assert.False(t, info.Started)
	assert.Equal(t, 2, info.ServerCount)
	assert.Equal(t, 1, info.RunnerCount)
	assert.Equal(t, 1, info.CloseCount)
}

func TestStartStop(t *testing.T) {
	server := newFakeServer()
	ctx, cancel := context.WithCancel(context.Background())

	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string) func(context.Context) error {
		return func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		}
	}

	runnerDone := make(chan struct{})
	app := New(
		WithContext(ctx),
		WithServers(server),
		WithRunner("wait", func(ctx context.Context) error {
			<-ctx.Done()
			close(runnerDone)
			return ctx.Err()
		}),
		WithClose("store", record("store"), time.Second),
		WithClose("dispatcher", record("dispatcher"), time.Second),
	)
	require.NoError(t, app.RegisterClose("publisher", record("publisher"), time.Second))

	done := make(chan error, 1)
	go func() { done <- app.Start() }()

	require.Eventually(t, func() bool { return app.Info().Started }, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, app.Start(), ErrAlreadyStarted)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("application did not stop")
	}

	<-runnerDone
	assert.True(t, server.shutdown)
	assert.Equal(t, []string{"publisher", "dispatcher", "store"}, order)
}

func TestStartServerError(t *testing.T) {
	failing := newFakeServer()
	failing.runErr = errors.New("listen: address in use")
	other := newFakeServer()

	closed := false
	app := New(
		WithServers(failing, other),
		WithClose("c", func(context.Context) error { closed = true; return nil }, time.Second),
	)

	err := app.Start()
	assert.EqualError(t, err, "listen: address in use")
	assert.True(t, other.shutdown)
	assert.True(t, closed)
}

func TestStartRunnerError(t *testing.T) {
	app := New(WithRunner("subscriber", func(context.Context) error {
		return errors.New("broker down")
	}))

	err := app.Start()
	assert.EqualError(t, err, "runner subscriber: broker down")
}

func TestCloseFuncPanic(t *testing.T) {
	app := New()
	err := app.runCloseTask(CloseFunc{
		Name:    "panic",
		Fn:      func(context.Context) error { panic("boom") },
		Timeout: time.Second,
	})
	assert.ErrorIs(t, err, ErrClosePanic)
}

func TestCloseFuncTimeout(t *testing.T) {
	app := New()
	err := app.runCloseTask(CloseFunc{
		Name: "slow",
		Fn: func(ctx context.Context) error {
			time.Sleep(time.Second)
			return nil
		},
		Timeout: 10 * time.Millisecond,
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
