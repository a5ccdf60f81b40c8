// Package models provides data model definitions for the price tracker core.
package models

import (
	"encoding/json"

	"pricetrack/internal/errors"
)

// PriceEntry is a confirmed price observation as stored by the remote store.
// Rows are created only by a confirmed successful write and are never
// mutated by this process.
type PriceEntry struct {
	ID           int64   `json:"id"`
	CreatedAt    string  `json:"created_at"`
	ItemName     string  `json:"item_name"`
	Supplier     string  `json:"supplier"`
	Price        float64 `json:"price"`
	Date         string  `json:"date"`
	ShopkeeperID string  `json:"shopkeeper_id"`
}

// NewPriceEntry is the insert payload for a price observation. The remote
// store assigns ID and CreatedAt.
type NewPriceEntry struct {
	ItemName     string  `json:"item_name"`
	Supplier     string  `json:"supplier"`
	Price        float64 `json:"price"`
	Date         string  `json:"date"`
	ShopkeeperID string  `json:"shopkeeper_id"`
}

// Validate checks the caller-side preconditions for a submission. Entries
// that fail validation never reach the sync engine or the queue.
func (e NewPriceEntry) Validate() error {
	if e.ItemName == "" {
		return errors.New(errors.ErrValidation, "item_name must not be empty")
	}
	if e.Supplier == "" {
		return errors.New(errors.ErrValidation, "supplier must not be empty")
	}
	if e.Price <= 0 {
		return errors.New(errors.ErrValidation, "price must be positive")
	}
	return nil
}

// OperationKind identifies the type of a queued write operation.
type OperationKind string

const (
	// OperationInsert is currently the only queued operation kind.
	OperationInsert OperationKind = "insert"
)

// PendingOperation is a write that could not be confirmed remotely and is
// waiting in the durable queue. Queue order is submission order; the queue
// is mutated only by tail-append and head-removal.
type PendingOperation struct {
	ID       string        `db:"id" json:"id"`
	Kind     OperationKind `db:"kind" json:"kind"`
	Entry    NewPriceEntry `db:"payload" json:"entry"`
	QueuedAt int64         `db:"queued_at" json:"queued_at"`
}

// EncodePayload serializes the operation payload for the durable store.
func (op PendingOperation) EncodePayload() (json.RawMessage, error) {
	data, err := json.Marshal(op.Entry)
	if err != nil {
		return nil, errors.Wrap(errors.ErrQueuePersist, "failed to encode payload", err)
	}
	return data, nil
}

// DecodePayload restores the operation payload from its stored form.
func (op *PendingOperation) DecodePayload(data json.RawMessage) error {
	if err := json.Unmarshal(data, &op.Entry); err != nil {
		return errors.Wrap(errors.ErrQueueCorrupt, "failed to decode payload", err)
	}
	return nil
}
