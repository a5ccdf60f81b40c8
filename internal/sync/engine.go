// Package sync implements the offline-resilient write queue. A submitted
// entry is never silently lost: writes that cannot be confirmed remotely
// are queued durably and replayed in submission order once connectivity
// returns.
package sync

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pricetrack/internal/models"
)

// QueueStore persists the ordered pending queue across restarts.
// Persistence is best-effort: Save failures are logged and swallowed and
// the in-memory queue stays authoritative for the process lifetime.
type QueueStore interface {
	Load(ctx context.Context) []models.PendingOperation
	Save(ctx context.Context, ops []models.PendingOperation) error
}

// Gateway is the remote write API. Any failure is treated uniformly.
type Gateway interface {
	Insert(ctx context.Context, entry models.NewPriceEntry) error
}

// Connectivity is the host-provided online signal.
type Connectivity interface {
	IsOnline() bool
	Subscribe(fn func())
}

// SubmitStatus tells the caller how a submission was accepted. Both values
// mean "saved": a queued entry will sync once the remote store is reachable.
type SubmitStatus string

const (
	// StatusSynced means the remote write was confirmed immediately.
	StatusSynced SubmitStatus = "synced"
	// StatusQueued means the entry was accepted for later delivery.
	StatusQueued SubmitStatus = "queued"
)

// Events receives engine lifecycle notifications. Implementations must not
// block; failures in event delivery never affect queue or write outcomes.
type Events interface {
	EntrySynced(entry models.NewPriceEntry)
	EntryQueued(op models.PendingOperation)
	DrainStarted(pending int)
	DrainCompleted(flushed int)
	DrainStalled(remaining int, err error)
}

// NopEvents is an Events implementation that discards all notifications.
type NopEvents struct{}

func (NopEvents) EntrySynced(models.NewPriceEntry) {}
func (NopEvents) EntryQueued(models.PendingOperation) {}
func (NopEvents) DrainStarted(int) {}
func (NopEvents) DrainCompleted(int) {}
func (NopEvents) DrainStalled(int, error) {}

// Engine owns the in-memory queue and serializes replay against the remote
// store. The queue is mutated only by tail-append (Submit) and head-removal
// (Drain on confirmed write); operations are never reordered or deduplicated.
type Engine struct {
	store   QueueStore
	gateway Gateway
	conn    Connectivity
	logger  *zap.Logger

	mu       sync.Mutex
	queue    []models.PendingOperation
	draining bool

	// persistMu is held from snapshot creation through the store write so
	// an older snapshot can never land on disk after a newer one.
	persistMu sync.Mutex

	events Events
}

// NewEngine constructs an Engine and loads the persisted queue.
func NewEngine(ctx context.Context, store QueueStore, gateway Gateway, conn Connectivity, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Engine{
		store:   store,
		gateway: gateway,
		conn:    conn,
		logger:  logger,
		events:  NopEvents{},
	}
	e.queue = store.Load(ctx)

	if n := len(e.queue); n > 0 {
		logger.Info("restored pending queue", zap.Int("pending", n))
	}

	return e
}

// SetEvents installs the notification sink. Must be called before Start.
func (e *Engine) SetEvents(events Events) {
	if events == nil {
		events = NopEvents{}
	}
	e.events = events
}

// Start subscribes to connectivity edges and, if the restored queue is
// non-empty, kicks an initial drain.
func (e *Engine) Start(ctx context.Context) {
	e.conn.Subscribe(func() {
		go e.Drain(ctx)
	})

	if e.Pending() > 0 {
		go e.Drain(ctx)
	}
}

// Submit accepts a price entry for delivery. When online it attempts the
// remote write directly; on failure, or while offline, the entry is queued
// and the submission is still reported as accepted. Callers must validate
// entries before submitting.
func (e *Engine) Submit(ctx context.Context, entry models.NewPriceEntry) SubmitStatus {
	if !e.conn.IsOnline() {
		e.enqueue(ctx, entry)
		return StatusQueued
	}

	if err := e.gateway.Insert(ctx, entry); err != nil {
		e.logger.Warn("immediate write failed, queuing for retry",
			zap.String("item", entry.ItemName),
			zap.Error(err))
		e.enqueue(ctx, entry)
		return StatusQueued
	}

	e.logger.Info("entry written to remote store",
		zap.String("item", entry.ItemName),
		zap.String("supplier", entry.Supplier))
	e.events.EntrySynced(entry)

	return StatusSynced
}

// enqueue appends the entry to the queue tail and persists the snapshot.
// An in-progress drain reaches the new tail on its current or a later pass.
func (e *Engine) enqueue(ctx context.Context, entry models.NewPriceEntry) {
	op := models.PendingOperation{
		ID:       uuid.New().String(),
		Kind:     models.OperationInsert,
		Entry:    entry,
		QueuedAt: time.Now().Unix(),
	}

	e.mu.Lock()
	e.queue = append(e.queue, op)
	e.mu.Unlock()

	e.persist(ctx)
	e.events.EntryQueued(op)
}

// Drain replays the queue head to tail, stopping at the first failure. The
// failed operation stays at the head and the whole tail waits behind it.
// The draining flag makes overlapping triggers a no-op so no pass can
// double-write an operation.
func (e *Engine) Drain(ctx context.Context) {
	e.mu.Lock()
	if e.draining || len(e.queue) == 0 {
		e.mu.Unlock()
		return
	}
	e.draining = true
	pending := len(e.queue)
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.draining = false
		e.mu.Unlock()
	}()

	e.logger.Info("draining pending queue", zap.Int("pending", pending))
	e.events.DrainStarted(pending)

	flushed := 0
	for {
		e.mu.Lock()
		if len(e.queue) == 0 {
			e.mu.Unlock()
			break
		}
		head := e.queue[0]
		e.mu.Unlock()

		if err := e.gateway.Insert(ctx, head.Entry); err != nil {
			e.mu.Lock()
			remaining := len(e.queue)
			e.mu.Unlock()

			e.logger.Warn("drain stopped at queue head",
				zap.String("operation_id", head.ID),
				zap.Int("remaining", remaining),
				zap.Error(err))
			e.events.DrainStalled(remaining, err)
			return
		}

		// Remote write confirmed: remove the head and persist before
		// attempting the next operation.
		e.mu.Lock()
		e.queue = e.queue[1:]
		e.mu.Unlock()

		e.persist(ctx)
		e.events.EntrySynced(head.Entry)
		flushed++
	}

	e.logger.Info("pending queue drained", zap.Int("flushed", flushed))
	e.events.DrainCompleted(flushed)
}

// persist writes the current queue state to the durable store. The snapshot
// is taken under persistMu, which stays held through the write: concurrent
// enqueues and dequeues serialize here, so the disk always converges to the
// most recent state. Failures are logged and swallowed.
func (e *Engine) persist(ctx context.Context) {
	e.persistMu.Lock()
	defer e.persistMu.Unlock()

	e.mu.Lock()
	snapshot := e.snapshotLocked()
	e.mu.Unlock()

	if err := e.store.Save(ctx, snapshot); err != nil {
		e.logger.Error("failed to persist pending queue", zap.Error(err))
	}
}

// Pending returns the number of queued operations.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

// Draining reports whether a drain pass is in progress.
func (e *Engine) Draining() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draining
}

// Snapshot returns a copy of the current queue in order.
func (e *Engine) Snapshot() []models.PendingOperation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() []models.PendingOperation {
	snapshot := make([]models.PendingOperation, len(e.queue))
	copy(snapshot, e.queue)
	return snapshot
}
