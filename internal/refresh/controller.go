// Package refresh runs the per-session auto-refresh loop that feeds the
// real-time activity chart.
package refresh

import (
	"context"
	"errors"
	"sync"
	"time"

	redisInternal "viksitkanpur/internal/repositories/redis"
	"viksitkanpur/internal/session"
	"viksitkanpur/pkg/logger"
)

const (
	// DefaultInterval between two ticks.
	DefaultInterval = 60 * time.Second
	// Capacity of the sample buffer.
	Capacity = 10
)

// Locker guards a tick across replicas. TryLock returns
// redisInternal.ErrLocked when another replica holds the key.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error)
}

// SessionSource looks a session up by id. It returns session.ErrNotFound once
// the session expired or logged out.
type SessionSource interface {
	Load(ctx context.Context, id string) (session.Session, error)
}

// Status is a point-in-time view of a controller.
type Status struct {
	Running   bool      `json:"running"`
	Interval  string    `json:"interval"`
	LastTick  time.Time `json:"lastTick"`
	LastError string    `json:"lastError,omitempty"`
	Samples   int       `json:"samples"`
}

// Controller owns one ticker and one sample buffer.
type Controller struct {
	sampler  Sampler
	interval time.Duration
	locker   Locker
	sessions SessionSource
	log      logger.Logger
	clock    func() time.Time
	samples  *Ring[Sample]
	onExpire func(*Controller)

	mu       sync.Mutex
	sess     session.Session
	cancel   context.CancelFunc
	done     chan struct{}
	lastTick time.Time
	lastErr  string
}

// Options of a Controller. Locker, Sessions and Logger are optional. With
// Sessions set, the loop stops itself once the session is gone.
type Options struct {
	Sampler  Sampler
	Interval time.Duration
	Locker   Locker
	Sessions SessionSource
	Logger   logger.Logger
}

// NewController returns a stopped controller for sess.
func NewController(sess session.Session, opts Options) *Controller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard{}
	}
	return &Controller{
		sampler:  opts.Sampler,
		interval: opts.Interval,
		locker:   opts.Locker,
		sessions: opts.Sessions,
		log:      opts.Logger,
		clock:    time.Now,
		samples:  NewRing[Sample](Capacity),
		sess:     sess,
	}
}

// SetSession replaces the session used by later ticks.
func (c *Controller) SetSession(sess session.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sess = sess
}

func (c *Controller) session() session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess
}

// Start launches the ticker. Starting a running controller is a no-op.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.loop(ctx, c.done)
}

// Stop halts the ticker and waits for an in-flight tick to finish.
func (c *Controller) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Toggle starts or stops the controller and reports the resulting state.
func (c *Controller) Toggle(enabled bool) bool {
	if enabled {
		c.Start()
	} else {
		c.Stop()
	}
	return c.Running()
}

// Running reports whether the ticker is active.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}

// Samples returns the buffered samples, oldest first.
func (c *Controller) Samples() []Sample {
	return c.samples.Values()
}

// Status describes the controller.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		Running:   c.cancel != nil,
		Interval:  c.interval.String(),
		LastTick:  c.lastTick,
		LastError: c.lastErr,
		Samples:   c.samples.Len(),
	}
}

func (c *Controller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !c.alive(ctx) {
				c.expire()
				return
			}
			c.Tick(ctx)
		}
	}
}

// alive refreshes the session from the source. Lookup errors other than
// session.ErrNotFound keep the loop going.
func (c *Controller) alive(ctx context.Context) bool {
	if c.sessions == nil {
		return true
	}
	id := c.session().ID
	sess, err := c.sessions.Load(ctx, id)
	switch {
	case errors.Is(err, session.ErrNotFound):
		c.log.Info("Session ended, stopping auto-refresh", map[string]interface{}{"session_id": id})
		return false
	case err != nil:
		c.log.Warn("Session lookup failed before refresh tick", map[string]interface{}{"session_id": id, "error": err.Error()})
		return true
	}
	c.SetSession(sess)
	return true
}

// expire is Stop from inside the loop: it must not wait for done.
func (c *Controller) expire() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if c.onExpire != nil {
		c.onExpire(c)
	}
}

// Tick takes one sample now. It returns false when the tick was skipped or
// the sampler failed.
func (c *Controller) Tick(ctx context.Context) bool {
	sess := c.session()

	if c.locker != nil {
		release, err := c.locker.TryLock(ctx, "refresh:lock:"+sess.ID, c.interval)
		switch {
		case errors.Is(err, redisInternal.ErrLocked):
			c.log.Debug("Refresh tick skipped, lock held elsewhere", map[string]interface{}{"session_id": sess.ID})
			return false
		case err != nil:
			c.log.Warn("Refresh lock unavailable, ticking unguarded", map[string]interface{}{
				"session_id": sess.ID,
				"error":      err.Error(),
			})
		default:
			defer func() {
				if err := release(context.Background()); err != nil {
					c.log.Warn("Releasing refresh lock failed", map[string]interface{}{"session_id": sess.ID, "error": err.Error()})
				}
			}()
		}
	}

	at := c.clock()
	sample, err := c.sampler.Sample(ctx, sess, at)

	c.mu.Lock()
	c.lastTick = at
	if err != nil {
		c.lastErr = err.Error()
	} else {
		c.lastErr = ""
	}
	c.mu.Unlock()

	if err != nil {
		if ctx.Err() == nil {
			c.log.Error("Refresh tick failed", err, map[string]interface{}{"session_id": sess.ID})
		}
		return false
	}

	c.samples.Push(sample)
	return true
}
