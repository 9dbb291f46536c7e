package refresh

import (
	"context"
	"sync"

	"viksitkanpur/internal/session"
)

// Registry keeps one controller per session.
type Registry struct {
	opts Options

	mu          sync.Mutex
	controllers map[string]*Controller
}

// NewRegistry returns an empty registry creating controllers with opts.
func NewRegistry(opts Options) *Registry {
	return &Registry{opts: opts, controllers: map[string]*Controller{}}
}

// Ensure returns the controller of sess, creating a stopped one if needed.
// An existing controller picks up the latest session state.
func (r *Registry) Ensure(sess session.Session) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.controllers[sess.ID]; ok {
		c.SetSession(sess)
		return c
	}
	c := NewController(sess, r.opts)
	c.onExpire = r.forget
	r.controllers[sess.ID] = c
	return c
}

// forget drops c if it is still the controller registered for its session.
func (r *Registry) forget(c *Controller) {
	id := c.session().ID
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.controllers[id] == c {
		delete(r.controllers, id)
	}
}

// Get returns the controller of a session id.
func (r *Registry) Get(sessionID string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.controllers[sessionID]
	return c, ok
}

// Toggle switches auto-refresh of sess and returns the new status.
func (r *Registry) Toggle(sess session.Session, enabled bool) Status {
	c := r.Ensure(sess)
	c.Toggle(enabled)
	return c.Status()
}

// Stop stops and forgets the controller of a session id.
func (r *Registry) Stop(sessionID string) {
	r.mu.Lock()
	c, ok := r.controllers[sessionID]
	delete(r.controllers, sessionID)
	r.mu.Unlock()

	if ok {
		c.Stop()
	}
}

// OnLogout is a session.Manager logout hook.
func (r *Registry) OnLogout(_ context.Context, sess session.Session) {
	r.Stop(sess.ID)
}

// StopAll stops every controller.
func (r *Registry) StopAll() {
	r.mu.Lock()
	all := r.controllers
	r.controllers = map[string]*Controller{}
	r.mu.Unlock()

	var wg sync.WaitGroup
	for _, c := range all {
		wg.Add(1)
		go func(c *Controller) {
			defer wg.Done()
			c.Stop()
		}(c)
	}
	wg.Wait()
}

// Running is the number of active controllers.
func (r *Registry) Running() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.controllers {
		if c.Running() {
			n++
		}
	}
	return n
}
