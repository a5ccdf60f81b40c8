package store

import (
	"context"
	"testing"

	"pricetrack/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testOps() []models.PendingOperation {
	return []models.PendingOperation{
		{
			ID:   "op-1",
			Kind: models.OperationInsert,
			Entry: models.NewPriceEntry{
				ItemName: "Apples", Supplier: "Farm", Price: 2.99,
				Date: "2026-08-28", ShopkeeperID: "guest",
			},
			QueuedAt: 1000,
		},
		{
			ID:   "op-2",
			Kind: models.OperationInsert,
			Entry: models.NewPriceEntry{
				ItemName: "Pears", Supplier: "Orchard", Price: 3.49,
				Date: "2026-08-28", ShopkeeperID: "guest",
			},
			QueuedAt: 1001,
		},
		{
			ID:   "op-3",
			Kind: models.OperationInsert,
			Entry: models.NewPriceEntry{
				ItemName: "Milk", Supplier: "Dairy Co", Price: 1.20,
				Date: "2026-08-28", ShopkeeperID: "guest",
			},
			QueuedAt: 1002,
		},
	}
}

// TestQueueSaveLoadRoundTrip verifies a saved queue loads back identically.
func TestQueueSaveLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)
	qs := NewQueueStore(db, nil)
	ctx := context.Background()

	ops := testOps()
	if err := qs.Save(ctx, ops); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := qs.Load(ctx)
	if len(loaded) != len(ops) {
		t.Fatalf("expected %d operations, got %d", len(ops), len(loaded))
	}
	for i := range ops {
		if loaded[i] != ops[i] {
			t.Errorf("operation %d mismatch: got %+v, want %+v", i, loaded[i], ops[i])
		}
	}
}

// TestQueueSurvivesReopen simulates a process restart: the reloaded queue
// must equal the pre-restart queue exactly.
func TestQueueSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	ops := testOps()

	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := NewQueueStore(db, nil).Save(ctx, ops); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	loaded := NewQueueStore(reopened, nil).Load(ctx)
	if len(loaded) != len(ops) {
		t.Fatalf("expected %d operations after reopen, got %d", len(ops), len(loaded))
	}
	for i := range ops {
		if loaded[i] != ops[i] {
			t.Errorf("operation %d mismatch after reopen: got %+v, want %+v", i, loaded[i], ops[i])
		}
	}
}

// TestQueueSaveOverwrites verifies Save replaces the prior snapshot, so a
// dequeued head never reappears.
func TestQueueSaveOverwrites(t *testing.T) {
	db := openTestDB(t)
	qs := NewQueueStore(db, nil)
	ctx := context.Background()

	ops := testOps()
	if err := qs.Save(ctx, ops); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := qs.Save(ctx, ops[1:]); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	loaded := qs.Load(ctx)
	if len(loaded) != 2 {
		t.Fatalf("expected 2 operations, got %d", len(loaded))
	}
	if loaded[0].ID != "op-2" || loaded[1].ID != "op-3" {
		t.Errorf("unexpected queue order after overwrite: %+v", loaded)
	}
}

// TestQueueLoadEmpty verifies an empty store loads an empty queue.
func TestQueueLoadEmpty(t *testing.T) {
	db := openTestDB(t)
	qs := NewQueueStore(db, nil)

	if loaded := qs.Load(context.Background()); len(loaded) != 0 {
		t.Errorf("expected empty queue, got %d operations", len(loaded))
	}
}

// TestQueueLoadCorruptPayload verifies corrupt persisted state is treated
// as an empty queue rather than failing startup.
func TestQueueLoadCorruptPayload(t *testing.T) {
	db := openTestDB(t)
	qs := NewQueueStore(db, nil)
	ctx := context.Background()

	if err := qs.Save(ctx, testOps()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := db.Exec("UPDATE pending_operations SET payload = 'not-json' WHERE position = 1"); err != nil {
		t.Fatalf("corrupting payload failed: %v", err)
	}

	if loaded := qs.Load(ctx); len(loaded) != 0 {
		t.Errorf("expected empty queue for corrupt state, got %d operations", len(loaded))
	}
}

// TestQueueSaveEmptySnapshot verifies persisting an empty queue clears it.
func TestQueueSaveEmptySnapshot(t *testing.T) {
	db := openTestDB(t)
	qs := NewQueueStore(db, nil)
	ctx := context.Background()

	if err := qs.Save(ctx, testOps()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := qs.Save(ctx, nil); err != nil {
		t.Fatalf("Save of empty snapshot failed: %v", err)
	}

	if loaded := qs.Load(ctx); len(loaded) != 0 {
		t.Errorf("expected cleared queue, got %d operations", len(loaded))
	}
}
