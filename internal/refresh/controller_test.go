package refresh

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"stocktracker/internal/watchlist"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingRefresher struct {
	calls atomic.Int32
	block chan struct{} // when non-nil each call waits for a receive
	began chan struct{}
}

func (r *countingRefresher) RefreshAll(context.Context) watchlist.RefreshReport {
	if r.began != nil {
		r.began <- struct{}{}
	}
	if r.block != nil {
		<-r.block
	}
	r.calls.Add(1)
	return watchlist.RefreshReport{At: time.Now()}
}

// go test -v --run TestControllerTicks
func TestControllerTicks(t *testing.T) {
	r := &countingRefresher{}
	var renders atomic.Int32
	c := NewController(r, 5*time.Millisecond, zap.NewNop(), func(watchlist.RefreshReport) {
		renders.Add(1)
	})

	require.False(t, c.Active())
	require.True(t, c.Start(context.Background()))
	require.True(t, c.Active())
	require.False(t, c.Start(context.Background()), "second start is a no-op")

	require.Eventually(t, func() bool { return r.calls.Load() >= 3 }, time.Second, time.Millisecond)

	require.True(t, c.Stop())
	require.False(t, c.Active())
	require.False(t, c.Stop(), "stopping an idle controller is a no-op")

	after := r.calls.Load()
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, after, r.calls.Load(), "no tick may fire after Stop")
	require.Equal(t, after, renders.Load())
}

func TestControllerStopLetsInFlightRefreshFinish(t *testing.T) {
	r := &countingRefresher{block: make(chan struct{}), began: make(chan struct{})}
	var renders atomic.Int32
	c := NewController(r, time.Millisecond, zap.NewNop(), func(watchlist.RefreshReport) {
		renders.Add(1)
	})
	c.Start(context.Background())

	<-r.began

	var wg sync.WaitGroup
	stopped := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a refresh was still running")
	case <-time.After(20 * time.Millisecond):
	}

	r.block <- struct{}{}
	wg.Wait()

	require.Equal(t, int32(1), r.calls.Load())
	require.Equal(t, int32(1), renders.Load())
}

func TestControllerToggle(t *testing.T) {
	c := NewController(&countingRefresher{}, time.Hour, zap.NewNop(), nil)

	require.True(t, c.Toggle(context.Background()))
	require.True(t, c.Active())
	require.False(t, c.Toggle(context.Background()))
	require.False(t, c.Active())
}

func TestControllerStopsWithContext(t *testing.T) {
	r := &countingRefresher{}
	c := NewController(r, time.Millisecond, zap.NewNop(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)
	require.Eventually(t, func() bool { return r.calls.Load() >= 1 }, time.Second, time.Millisecond)
	cancel()

	// The loop ending on its own leaves the controller idle and restartable.
	require.Eventually(t, func() bool { return !c.Active() }, time.Second, time.Millisecond)
	require.False(t, c.Stop())

	require.True(t, c.Start(context.Background()))
	require.True(t, c.Active())
	require.True(t, c.Stop())
}

func TestNewControllerDefaultsInterval(t *testing.T) {
	c := NewController(&countingRefresher{}, 0, zap.NewNop(), nil)
	require.Equal(t, DefaultInterval, c.Interval())
}
