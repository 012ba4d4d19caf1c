package refresh

import (
	"context"
	"sync"
	"time"

	"stocktracker/internal/watchlist"

	"go.uber.org/zap"
)

// DefaultInterval matches the auto-refresh period users expect from the menu.
const DefaultInterval = 30 * time.Second

// Refresher is the bulk refresh the controller fires on each tick.
type Refresher interface {
	RefreshAll(ctx context.Context) watchlist.RefreshReport
}

// Controller is idle until Start and active until Stop.
// Each tick runs one RefreshAll followed by the OnRefresh callback.
type Controller struct {
	refresher Refresher
	interval  time.Duration
	onRefresh func(watchlist.RefreshReport)
	logger    *zap.Logger

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func NewController(refresher Refresher, interval time.Duration, logger *zap.Logger, onRefresh func(watchlist.RefreshReport)) *Controller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Controller{
		refresher: refresher,
		interval:  interval,
		onRefresh: onRefresh,
		logger:    logger,
	}
}

func (c *Controller) Interval() time.Duration { return c.interval }

func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stop != nil
}

// Start schedules ticks until Stop or until ctx is done, after which the controller is idle again.
// It returns false when the controller was already active.
func (c *Controller) Start(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stop != nil {
		return false
	}
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go c.run(ctx, c.stop, c.done)

	c.logger.Info("auto-refresh enabled", zap.Duration("interval", c.interval))
	return true
}

// Stop prevents any further tick. A refresh already running is allowed to finish;
// Stop returns once it has. It returns false when the controller was idle.
func (c *Controller) Stop() bool {
	c.mu.Lock()
	stop, done := c.stop, c.done
	c.stop, c.done = nil, nil
	c.mu.Unlock()

	if stop == nil {
		return false
	}
	close(stop)
	<-done

	c.logger.Info("auto-refresh disabled")
	return true
}

// Toggle flips the state and reports whether the controller is now active.
func (c *Controller) Toggle(ctx context.Context) bool {
	if c.Stop() {
		return false
	}
	c.Start(ctx)
	return true
}

func (c *Controller) run(ctx context.Context, stop, done chan struct{}) {
	defer close(done)
	defer func() {
		// Stop already cleared the state when it was the one ending the loop.
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.stop == stop {
			c.stop, c.done = nil, nil
			c.logger.Info("auto-refresh ended", zap.Error(ctx.Err()))
		}
	}()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		// Stop wins over a tick that became ready at the same time.
		select {
		case <-stop:
			return
		default:
		}

		report := c.refresher.RefreshAll(ctx)
		if c.onRefresh != nil {
			c.onRefresh(report)
		}
	}
}
