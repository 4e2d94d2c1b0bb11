package snapshot

import (
	"context"
	"fmt"
)

// Store persists committed ledger tables as opaque JSON rows. Each save
// replaces the whole table: the in-memory chain state is authoritative and
// small, and full replacement keeps the store trivially consistent with it.
type Store interface {
	SaveTable(ctx context.Context, table string, rows map[string][]byte) error
	LoadTable(ctx context.Context, table string) (map[string][]byte, error)
}

// Exporter is implemented by contracts whose committed state survives
// process restarts.
type Exporter interface {
	TableNames() []string
	ExportTables() map[string]map[string][]byte
	ImportTables(tables map[string]map[string][]byte) error
}

// Persister saves and restores a set of contracts against a Store. Persist
// runs from the host's commit hook, after each successful transaction.
type Persister struct {
	store     Store
	exporters []Exporter
}

// NewPersister builds a persister over the store for the given contracts.
func NewPersister(store Store, exporters ...Exporter) *Persister {
	return &Persister{store: store, exporters: exporters}
}

// Persist writes every contract's committed tables to the store.
func (p *Persister) Persist(ctx context.Context) error {
	for _, e := range p.exporters {
		for table, rows := range e.ExportTables() {
			if err := p.store.SaveTable(ctx, table, rows); err != nil {
				return fmt.Errorf("save table %s: %w", table, err)
			}
		}
	}
	return nil
}

// Restore loads every contract's tables from the store, replacing in-memory
// state. Called once at boot, before the host serves transactions.
func (p *Persister) Restore(ctx context.Context) error {
	for _, e := range p.exporters {
		tables := make(map[string]map[string][]byte)
		for _, name := range e.TableNames() {
			rows, err := p.store.LoadTable(ctx, name)
			if err != nil {
				return fmt.Errorf("load table %s: %w", name, err)
			}
			tables[name] = rows
		}
		if err := e.ImportTables(tables); err != nil {
			return err
		}
	}
	return nil
}
