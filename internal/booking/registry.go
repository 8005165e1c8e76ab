package booking

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrFlowNotFound is returned for unknown or expired flow ids.
	ErrFlowNotFound = errors.New("booking flow not found")
	// ErrFlowForbidden is returned when a flow owned by one user is accessed
	// by another.
	ErrFlowForbidden = errors.New("booking flow belongs to another user")
)

type flowEntry struct {
	ctrl    *Controller
	owner   uint64
	touched time.Time
}

// Registry keeps live flows by id.  Flows idle for longer than the TTL are
// abandoned and dropped by Sweep.
type Registry struct {
	mu    sync.Mutex
	flows map[string]*flowEntry
	ttl   time.Duration
	now   func() time.Time
	log   *zap.Logger
}

// NewRegistry returns an empty registry.  A nil logger is replaced by a no-op.
func NewRegistry(ttl time.Duration, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{flows: make(map[string]*flowEntry), ttl: ttl, now: time.Now, log: log}
}

// Add registers ctrl and returns its id.  owner 0 means anonymous; an
// anonymous flow is bound to the first signed-in user that touches it.
func (r *Registry) Add(ctrl *Controller, owner uint64) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.flows[id] = &flowEntry{ctrl: ctrl, owner: owner, touched: r.now()}
	r.mu.Unlock()
	return id
}

// Get returns the flow for userID and refreshes its idle timer.
func (r *Registry) Get(id string, userID uint64) (*Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.flows[id]
	if !ok {
		return nil, ErrFlowNotFound
	}
	if e.owner != 0 && e.owner != userID {
		return nil, ErrFlowForbidden
	}
	if e.owner == 0 && userID != 0 {
		e.owner = userID
	}
	e.touched = r.now()
	return e.ctrl, nil
}

// Remove abandons and drops the flow.
func (r *Registry) Remove(id string, userID uint64) error {
	ctrl, err := r.Get(id, userID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	delete(r.flows, id)
	r.mu.Unlock()
	ctrl.Abandon()
	return nil
}

// Len reports the number of live flows.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.flows)
}

// Sweep drops idle flows and returns how many were removed.  Flows still
// submitting are kept until their store call returns.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)
	var stale []*Controller
	r.mu.Lock()
	for id, e := range r.flows {
		if e.touched.After(cutoff) || e.ctrl.State().Submitting {
			continue
		}
		stale = append(stale, e.ctrl)
		delete(r.flows, id)
	}
	r.mu.Unlock()
	for _, c := range stale {
		c.Abandon()
	}
	return len(stale)
}

// Run sweeps every interval until ctx is cancelled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := r.Sweep(); n > 0 {
				r.log.Debug("swept idle booking flows", zap.Int("count", n))
			}
		}
	}
}
