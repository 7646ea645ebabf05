// Package engine is the single entry point for feedback operations. It
// checks the caller's identity and capability before reaching the store,
// stamps mutations with its clock and dispatches change notifications.
package engine

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/mohdshuhaib/community-voice-53/internal/apperr"
	"github.com/mohdshuhaib/community-voice-53/internal/clock"
	"github.com/mohdshuhaib/community-voice-53/internal/model"
	"github.com/mohdshuhaib/community-voice-53/internal/notify"
)

// DefaultAnalyticsDays is the span of the analytics range when none is given.
const DefaultAnalyticsDays = 30

// Options configures an Engine. Zero fields take defaults.
type Options struct {
	Clock    clock.Clock
	Notifier notify.Notifier
	Logger   *slog.Logger
	// Location is the reference time zone for default date ranges.
	Location *time.Location
	// NotifyTimeout bounds each notification delivery.
	NotifyTimeout time.Duration
}

// Engine serves feedback operations over one database.
type Engine struct {
	db            *sql.DB
	clock         clock.Clock
	notifier      notify.Notifier
	logger        *slog.Logger
	location      *time.Location
	notifyTimeout time.Duration

	// Changes are delivered one at a time in dispatch order.
	mu       sync.Mutex
	pending  []pendingChange
	draining bool
	inflight sync.WaitGroup
}

type pendingChange struct {
	ctx    context.Context
	change notify.Change
}

// New returns an Engine backed by db.
func New(db *sql.DB, opts Options) *Engine {
	e := &Engine{
		db:            db,
		clock:         opts.Clock,
		notifier:      opts.Notifier,
		logger:        opts.Logger,
		location:      opts.Location,
		notifyTimeout: opts.NotifyTimeout,
	}
	if e.clock == nil {
		e.clock = clock.Real()
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.notifier == nil {
		e.notifier = notify.LogNotifier{Logger: e.logger}
	}
	if e.location == nil {
		e.location = time.UTC
	}
	if e.notifyTimeout <= 0 {
		e.notifyTimeout = notify.DefaultWebhookTimeout
	}
	return e
}

// Location returns the engine's reference time zone.
func (e *Engine) Location() *time.Location {
	return e.location
}

// Now returns the engine clock's current time.
func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

// Wait blocks until every dispatched notification has finished.
func (e *Engine) Wait() {
	e.inflight.Wait()
}

func requireCaller(caller model.Identity) error {
	if caller.Anonymous() {
		return apperr.Unauthorized("caller identity required")
	}
	return nil
}

func requireAdmin(caller model.Identity) error {
	if !caller.IsAdmin() {
		return apperr.Unauthorized("admin role required")
	}
	return nil
}

func requireSelfOrAdmin(caller model.Identity, userID string) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	if caller.UserID != userID && !caller.IsAdmin() {
		return apperr.Unauthorized("cannot read another user's records")
	}
	return nil
}

// dispatch queues c for background delivery. The mutation that produced
// c has already committed; a failed delivery is logged and dropped.
// Changes reach the notifier in the order they were dispatched.
func (e *Engine) dispatch(ctx context.Context, c notify.Change) {
	e.inflight.Add(1)

	e.mu.Lock()
	e.pending = append(e.pending, pendingChange{ctx: context.WithoutCancel(ctx), change: c})
	start := !e.draining
	e.draining = true
	e.mu.Unlock()

	if start {
		go e.drain()
	}
}

// drain delivers queued changes until the queue is empty.
func (e *Engine) drain() {
	for {
		e.mu.Lock()
		if len(e.pending) == 0 {
			e.draining = false
			e.mu.Unlock()
			return
		}
		p := e.pending[0]
		e.pending[0] = pendingChange{}
		e.pending = e.pending[1:]
		e.mu.Unlock()

		e.deliver(p)
		e.inflight.Done()
	}
}

func (e *Engine) deliver(p pendingChange) {
	ctx, cancel := context.WithTimeout(p.ctx, e.notifyTimeout)
	defer cancel()
	if err := e.notifier.Notify(ctx, p.change); err != nil {
		e.logger.Warn("notification failed",
			"kind", p.change.Kind,
			"item_id", p.change.Item.ID,
			"error", err,
		)
	}
}
