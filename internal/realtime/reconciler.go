// Package realtime carries file status updates from the server to a client
// cart over a shared push channel.
package realtime

import (
	"context"
	"sync/atomic"

	"fabrication-service/internal/filestatus"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StatusMerger is the part of the cart store the reconciler writes to.
type StatusMerger interface {
	MergeStatus(sessionID string, fileID uuid.UUID, r filestatus.Report) bool
}

type Listener interface {
	Listen(ctx context.Context, handle func([]byte)) error
}

type Stats struct {
	Applied   uint64
	Malformed uint64
	Foreign   uint64
	Unknown   uint64
}

// Reconciler merges push events for one session into the cart store. Events
// are applied in arrival order with no ordering or dedup; a stale view is
// corrected by the next authoritative fetch.
type Reconciler struct {
	sessionID string
	store     StatusMerger
	log       *zap.Logger

	// OnApplied, when set, runs after an event changed the store.
	OnApplied func(Event)

	applied   atomic.Uint64
	malformed atomic.Uint64
	foreign   atomic.Uint64
	unknown   atomic.Uint64
}

func NewReconciler(sessionID string, store StatusMerger, log *zap.Logger) *Reconciler {
	return &Reconciler{sessionID: sessionID, store: store, log: log}
}

// Handle is the delivery callback. It never blocks on I/O and never fails;
// rejected payloads are counted and dropped.
func (r *Reconciler) Handle(payload []byte) {
	ev, err := ParseEvent(payload)
	if err != nil {
		r.malformed.Add(1)
		r.log.Warn("dropping malformed push event", zap.Error(err))
		return
	}
	if ev.SessionID != r.sessionID {
		r.foreign.Add(1)
		return
	}
	if !r.store.MergeStatus(r.sessionID, ev.Report.FileID, ev.Report) {
		r.unknown.Add(1)
		r.log.Debug("push event for file not in cart", zap.String("file_id", ev.Report.FileID.String()))
		return
	}
	r.applied.Add(1)
	r.log.Debug("applied status update",
		zap.String("file_id", ev.Report.FileID.String()),
		zap.String("status", string(ev.Report.Status)),
	)
	if r.OnApplied != nil {
		r.OnApplied(ev)
	}
}

// Run feeds Handle from l until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context, l Listener) error {
	return l.Listen(ctx, r.Handle)
}

func (r *Reconciler) Stats() Stats {
	return Stats{
		Applied:   r.applied.Load(),
		Malformed: r.malformed.Load(),
		Foreign:   r.foreign.Load(),
		Unknown:   r.unknown.Load(),
	}
}
