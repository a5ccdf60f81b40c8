package store

import (
	"context"

	"go.uber.org/zap"

	"pricetrack/internal/errors"
	"pricetrack/internal/models"
)

// QueueStore persists the ordered pending operation queue. The persisted
// layout is opaque to other components; only this type reads or writes it.
type QueueStore struct {
	db     *DB
	logger *zap.Logger
}

// NewQueueStore creates a QueueStore over an open database.
func NewQueueStore(db *DB, logger *zap.Logger) *QueueStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueueStore{db: db, logger: logger}
}

// Load returns the persisted queue in order. Corrupt or unreadable state is
// treated as an empty queue; startup never fails on it.
func (s *QueueStore) Load(ctx context.Context) []models.PendingOperation {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, kind, payload, queued_at FROM pending_operations ORDER BY position")
	if err != nil {
		s.logger.Warn("pending queue unreadable, treating as empty", zap.Error(err))
		return nil
	}
	defer rows.Close()

	var ops []models.PendingOperation
	for rows.Next() {
		var op models.PendingOperation
		var payload []byte
		if err := rows.Scan(&op.ID, &op.Kind, &payload, &op.QueuedAt); err != nil {
			s.logger.Warn("pending queue row corrupt, treating queue as empty", zap.Error(err))
			return nil
		}
		if err := op.DecodePayload(payload); err != nil {
			s.logger.Warn("pending queue payload corrupt, treating queue as empty", zap.Error(err))
			return nil
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		s.logger.Warn("pending queue read failed, treating as empty", zap.Error(err))
		return nil
	}

	return ops
}

// Save atomically replaces the persisted queue with the given snapshot.
// Callers invoke it after every enqueue and every successful dequeue.
func (s *QueueStore) Save(ctx context.Context, ops []models.PendingOperation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrQueuePersist, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM pending_operations"); err != nil {
		return errors.Wrap(errors.ErrQueuePersist, "failed to clear queue", err)
	}

	for pos, op := range ops {
		payload, err := op.EncodePayload()
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO pending_operations (position, id, kind, payload, queued_at) VALUES (?, ?, ?, ?, ?)",
			pos, op.ID, string(op.Kind), string(payload), op.QueuedAt)
		if err != nil {
			return errors.Wrap(errors.ErrQueuePersist, "failed to insert operation", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrQueuePersist, "failed to commit queue snapshot", err)
	}

	return nil
}
