package chain

import (
	"context"
	"log/slog"
	"sync"
)

// StateTable is implemented by contract state that participates in
// transaction rollback. Snapshot must return a deep copy; Restore must
// replace the live state with a previously captured copy.
type StateTable interface {
	Snapshot() any
	Restore(snapshot any)
}

// Host is the deterministic execution environment for ledger contracts. It
// runs one transaction at a time: every external action executes inside
// Execute, which snapshots all registered state up front and restores it
// wholesale if anything fails. Contracts never see a partially applied
// transaction.
type Host struct {
	mu        sync.Mutex
	states    []StateTable
	observers map[Name]TransferObserver
	onCommit  func(ctx context.Context) error
	logger    *slog.Logger
}

// NewHost builds an empty host.
func NewHost(logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	return &Host{
		observers: make(map[Name]TransferObserver),
		logger:    logger,
	}
}

// RegisterState enrolls contract state in the rollback set. All state a
// contract mutates during actions must be registered before the first
// Execute call.
func (h *Host) RegisterState(s StateTable) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.states = append(h.states, s)
}

// RegisterTransferObserver wires a contract to receive transfer notices
// addressed to or sent from its account.
func (h *Host) RegisterTransferObserver(account Name, o TransferObserver) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.observers[account] = o
}

// SetCommitHook installs a callback invoked after each successful
// transaction, once the new state is the committed state. Persistence
// hangs off this hook; a hook failure is logged but does not unwind the
// in-memory commit.
func (h *Host) SetCommitHook(fn func(ctx context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onCommit = fn
}

// View runs fn while holding the host lock, for reads of committed state
// that must not interleave with an executing transaction.
func (h *Host) View(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn()
}

// Execute runs fn as one transaction carrying the given authorities. On any
// error every registered state table is restored to its pre-transaction
// copy, so a failure deep inside an inline action or a notification handler
// undoes the entire chain of effects.
func (h *Host) Execute(ctx context.Context, auths []PermissionLevel, fn func(tx *TxContext) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	snapshots := make([]any, len(h.states))
	for i, s := range h.states {
		snapshots[i] = s.Snapshot()
	}

	tx := &TxContext{host: h, auths: auths}
	if err := fn(tx); err != nil {
		for i, s := range h.states {
			s.Restore(snapshots[i])
		}
		h.logger.Debug("transaction aborted", "error", err)
		return err
	}

	if h.onCommit != nil {
		if err := h.onCommit(ctx); err != nil {
			h.logger.Warn("commit hook failed", "error", err)
		}
	}
	return nil
}
