package chain

import (
	"errors"
	"fmt"

	"github.com/subledger/subledger/internal/asset"
)

// ErrMissingAuthority occurs when an action runs without the required
// signer's authority. Always fatal to the enclosing transaction.
var ErrMissingAuthority = errors.New("missing required authority")

// TransferNotice is the payload delivered to transfer observers. It mirrors
// the token contract's transfer action: both sides of a transfer are
// notified within the transaction that moved the funds.
type TransferNotice struct {
	From     Name
	To       Name
	Quantity asset.Asset
	Memo     string
}

// TransferObserver is implemented by contracts that react to token
// transfers naming their account. The handler runs synchronously inside the
// originating transaction; returning an error aborts that whole
// transaction, token movement included.
type TransferObserver interface {
	OnTransfer(tx *TxContext, notice TransferNotice) error
}

// TxContext carries the authorities of the executing transaction. Contract
// actions receive it and declare their required signer once, at entry,
// before touching any state.
type TxContext struct {
	host  *Host
	auths []PermissionLevel
}

// HasAuth reports whether the transaction carries the actor's active
// authority.
func (tx *TxContext) HasAuth(actor Name) bool {
	for _, a := range tx.auths {
		if a.Actor == actor && a.Permission == PermissionActive {
			return true
		}
	}
	return false
}

// RequireAuth asserts the actor's active authority is present. This is the
// single authorization gate for every action; business logic runs only
// after it passes.
func (tx *TxContext) RequireAuth(actor Name) error {
	if !tx.HasAuth(actor) {
		return fmt.Errorf("%w: %s", ErrMissingAuthority, Active(actor))
	}
	return nil
}

// WithAuthority returns a derived context carrying only the given actor's
// active authority. Contracts use it for inline actions they issue under
// their own account, the way a withdrawal pays out from custody.
func (tx *TxContext) WithAuthority(actor Name) *TxContext {
	return &TxContext{host: tx.host, auths: []PermissionLevel{Active(actor)}}
}

// NotifyTransfer dispatches a transfer notice to the contract registered
// for account, if any. Accounts without contract code simply receive the
// funds; an observer error propagates and rolls back the transaction.
func (tx *TxContext) NotifyTransfer(account Name, notice TransferNotice) error {
	observer, ok := tx.host.observers[account]
	if !ok {
		return nil
	}
	return observer.OnTransfer(tx, notice)
}
