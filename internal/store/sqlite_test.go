package store_test

import (
	"context"
	"errors"
	"testing"

	"vigilnet/internal/db"
	"vigilnet/internal/migrate"
	"vigilnet/internal/store"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return &store.SQLite{DB: conn}
}

func TestAppendAndReadRows(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	rows, err := st.ReadRows(ctx, store.TabSettings)
	if err != nil {
		t.Fatalf("read empty: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty tab, got %d rows", len(rows))
	}

	recs := []store.Record{
		{"key": "current_cycle", "value": "1"},
		{"key": "cycle_start", "value": "2024-03-01T12:00:00Z"},
	}
	for _, rec := range recs {
		if err := st.AppendRow(ctx, store.TabSettings, rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	rows, err = st.ReadRows(ctx, store.TabSettings)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	// Store order is append order.
	if rows[0].Record["key"] != "current_cycle" || rows[1].Record["key"] != "cycle_start" {
		t.Fatalf("rows out of order: %v", rows)
	}
	// A header never written reads as "".
	if rows[0].Record["value"] != "1" {
		t.Fatalf("value = %q", rows[0].Record["value"])
	}
}

func TestUpdateCell(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	if err := st.AppendRow(ctx, store.TabSettings, store.Record{"key": "current_cycle", "value": "1"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	rows, _ := st.ReadRows(ctx, store.TabSettings)
	if err := st.UpdateCell(ctx, store.TabSettings, rows[0].Ref, "value", "2"); err != nil {
		t.Fatalf("update: %v", err)
	}
	rows, _ = st.ReadRows(ctx, store.TabSettings)
	if rows[0].Record["value"] != "2" {
		t.Fatalf("value = %q, want 2", rows[0].Record["value"])
	}

	if err := st.UpdateCell(ctx, store.TabSettings, store.RowRef(9999), "value", "3"); err == nil {
		t.Fatalf("expected error for missing row")
	}
}

func TestBatchUpdateCells(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	_ = st.AppendRow(ctx, store.TabSettings, store.Record{"key": "current_cycle", "value": "1"})
	_ = st.AppendRow(ctx, store.TabSettings, store.Record{"key": "cycle_start", "value": "old"})
	rows, _ := st.ReadRows(ctx, store.TabSettings)
	err := st.BatchUpdateCells(ctx, store.TabSettings, []store.CellUpdate{
		{Ref: rows[0].Ref, Field: "value", Value: "2"},
		{Ref: rows[1].Ref, Field: "value", Value: "new"},
	})
	if err != nil {
		t.Fatalf("batch update: %v", err)
	}
	rows, _ = st.ReadRows(ctx, store.TabSettings)
	if rows[0].Record["value"] != "2" || rows[1].Record["value"] != "new" {
		t.Fatalf("batch not applied: %v", rows)
	}
}

func TestBatchUpdateCellsAllOrNothing(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	_ = st.AppendRow(ctx, store.TabSettings, store.Record{"key": "current_cycle", "value": "1"})
	rows, _ := st.ReadRows(ctx, store.TabSettings)
	err := st.BatchUpdateCells(ctx, store.TabSettings, []store.CellUpdate{
		{Ref: rows[0].Ref, Field: "value", Value: "2"},
		{Ref: store.RowRef(9999), Field: "value", Value: "never"},
	})
	if err == nil {
		t.Fatalf("expected error for missing row in batch")
	}
	rows, _ = st.ReadRows(ctx, store.TabSettings)
	if rows[0].Record["value"] != "1" {
		t.Fatalf("partial batch applied: value = %q, want 1", rows[0].Record["value"])
	}
}

func TestUnknownTabAndField(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	if _, err := st.ReadRows(ctx, "NoSuchTab"); err == nil {
		t.Fatalf("expected error for unknown tab")
	}
	if err := st.AppendRow(ctx, store.TabSettings, store.Record{"bogus": "x"}); err == nil {
		t.Fatalf("expected error for unknown column")
	}
	_ = st.AppendRow(ctx, store.TabSettings, store.Record{"key": "k", "value": "v"})
	rows, _ := st.ReadRows(ctx, store.TabSettings)
	if err := st.UpdateCell(ctx, store.TabSettings, rows[0].Ref, "bogus", "x"); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestIOFailureWrapsErrUnavailable(t *testing.T) {
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	st := &store.SQLite{DB: conn}
	conn.Close()
	if _, err := st.ReadRows(context.Background(), store.TabSettings); !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}
