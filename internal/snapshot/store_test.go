package snapshot

import (
	"context"
	"testing"
)

type fakeContract struct {
	name string
	rows map[string][]byte
}

func (f *fakeContract) TableNames() []string { return []string{f.name} }

func (f *fakeContract) ExportTables() map[string]map[string][]byte {
	return map[string]map[string][]byte{f.name: f.rows}
}

func (f *fakeContract) ImportTables(tables map[string]map[string][]byte) error {
	f.rows = tables[f.name]
	return nil
}

func TestMemoryStoreSaveReplacesTable(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.SaveTable(ctx, "t", map[string][]byte{"a": []byte(`1`), "b": []byte(`2`)}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.SaveTable(ctx, "t", map[string][]byte{"a": []byte(`3`)}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	rows, err := store.LoadTable(ctx, "t")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rows) != 1 || string(rows["a"]) != "3" {
		t.Fatalf("expected replaced table, got %v", rows)
	}
}

func TestMemoryStoreCopiesRows(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	row := []byte(`original`)
	if err := store.SaveTable(ctx, "t", map[string][]byte{"k": row}); err != nil {
		t.Fatalf("save: %v", err)
	}
	row[0] = 'X'

	rows, err := store.LoadTable(ctx, "t")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(rows["k"]) != "original" {
		t.Fatalf("store aliased caller's buffer: %s", rows["k"])
	}
}

func TestPersisterRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	source := &fakeContract{name: "balances", rows: map[string][]byte{
		"alice": []byte(`{"funds":"1.0000 SYS"}`),
		"bob":   []byte(`{"funds":"2.0000 SYS"}`),
	}}
	if err := NewPersister(store, source).Persist(ctx); err != nil {
		t.Fatalf("persist: %v", err)
	}

	target := &fakeContract{name: "balances"}
	if err := NewPersister(store, target).Restore(ctx); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if len(target.rows) != 2 || string(target.rows["alice"]) != `{"funds":"1.0000 SYS"}` {
		t.Fatalf("unexpected restored rows: %v", target.rows)
	}
}
