package subaccount

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/subledger/subledger/internal/asset"
	"github.com/subledger/subledger/internal/chain"
	"github.com/subledger/subledger/internal/token"
)

var (
	// ErrAccountExists occurs when opening a subaccount that already exists.
	ErrAccountExists = errors.New("account already exists")

	// ErrNoAccount occurs when acting on or crediting a user with no open
	// subaccount. A missing record is a meaningful state, distinct from an
	// open account with zero funds.
	ErrNoAccount = errors.New("user has no subaccount")

	// ErrInsufficientFunds occurs when a withdrawal exceeds the user's funds.
	ErrInsufficientFunds = errors.New("insufficient funds available")

	// ErrBalanceNotZero occurs when closing a subaccount that still holds funds.
	ErrBalanceNotZero = errors.New("balance must be zero to close account")
)

// Record is one user's subaccount row: the custodial funds the contract
// holds on their behalf. Funds never go negative.
type Record struct {
	Owner chain.Name  `json:"owner"`
	Funds asset.Asset `json:"funds"`
}

// Contract is the subaccount ledger. It custodies tokens transferred to its
// account, crediting the sender's record through the token contract's
// transfer notification, and pays them back out on withdrawal. The
// contract's own balance on the token ledger always equals the sum of all
// records; every path that moves tokens also moves a record, inside one
// host transaction.
type Contract struct {
	self    chain.Name
	symbol  asset.Symbol
	token   *token.Contract
	records map[chain.Name]asset.Asset
}

// New builds the subaccount contract hosted under self, custodying the
// given symbol on the token contract.
func New(self chain.Name, symbol asset.Symbol, tok *token.Contract) *Contract {
	return &Contract{
		self:    self,
		symbol:  symbol,
		token:   tok,
		records: make(map[chain.Name]asset.Asset),
	}
}

// Account returns the contract's hosting account name.
func (c *Contract) Account() chain.Name { return c.self }

// Symbol returns the custodied token symbol.
func (c *Contract) Symbol() asset.Symbol { return c.symbol }

// OpenAccount creates a zero-balance record for user. Only the payer's
// authority is required: a third party may provision an account on someone
// else's behalf because the payer bears the storage cost.
func (c *Contract) OpenAccount(tx *chain.TxContext, user, payer chain.Name) error {
	if err := tx.RequireAuth(payer); err != nil {
		return err
	}
	if err := user.Validate(); err != nil {
		return err
	}
	if _, exists := c.records[user]; exists {
		return fmt.Errorf("%w: %s", ErrAccountExists, user)
	}
	c.records[user] = asset.New(0, c.symbol)
	return nil
}

// Withdraw debits the user's record and pays the quantity back out of
// custody on the token ledger. The debit and the outbound transfer commit
// together or not at all; a failure on the token side rolls back the debit
// with the rest of the transaction.
func (c *Contract) Withdraw(tx *chain.TxContext, from chain.Name, quantity asset.Asset, memo string) error {
	if err := tx.RequireAuth(from); err != nil {
		return err
	}
	if err := quantity.Validate(); err != nil {
		return err
	}
	if !quantity.IsPositive() {
		return fmt.Errorf("%w: cannot withdraw negative or zero quantity", asset.ErrInvalidAsset)
	}
	if quantity.Symbol != c.symbol {
		return fmt.Errorf("%w: %s vs %s", asset.ErrSymbolMismatch, quantity.Symbol, c.symbol)
	}
	if len(memo) > token.MaxMemoBytes {
		return fmt.Errorf("memo has more than %d bytes", token.MaxMemoBytes)
	}

	funds, ok := c.records[from]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoAccount, from)
	}
	if funds.Amount < quantity.Amount {
		return fmt.Errorf("%w: %s has %s, requested %s", ErrInsufficientFunds, from, funds, quantity)
	}

	remaining, err := funds.Sub(quantity)
	if err != nil {
		return err
	}
	c.records[from] = remaining

	// Outbound leg under the contract's own authority. The notification it
	// triggers back into this contract is ignored by OnTransfer.
	return c.token.Transfer(tx.WithAuthority(c.self), c.self, from, quantity, memo)
}

// CloseAccount deletes the user's record. Requires the user's own
// authority and an exactly zero balance.
func (c *Contract) CloseAccount(tx *chain.TxContext, user chain.Name) error {
	if err := tx.RequireAuth(user); err != nil {
		return err
	}
	funds, ok := c.records[user]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoAccount, user)
	}
	if !funds.IsZero() {
		return fmt.Errorf("%w: %s still holds %s", ErrBalanceNotZero, user, funds)
	}
	delete(c.records, user)
	return nil
}

// OnTransfer credits the sender's record when tokens arrive in custody. It
// runs inside the transaction that moved the tokens. Transfers this
// contract initiated and transfers not addressed to it are ignored; a
// deposit from a user with no open subaccount is rejected, which aborts the
// whole transaction and returns the tokens to the sender by rollback.
// Silently absorbing uncredited funds would lose them.
func (c *Contract) OnTransfer(_ *chain.TxContext, notice chain.TransferNotice) error {
	if notice.From == c.self {
		return nil
	}
	if notice.To != c.self {
		return nil
	}
	if notice.Quantity.Symbol != c.symbol {
		return fmt.Errorf("%w: deposit %s, custody %s", asset.ErrSymbolMismatch, notice.Quantity.Symbol, c.symbol)
	}

	funds, ok := c.records[notice.From]
	if !ok {
		return fmt.Errorf("%w: %s, open an account before depositing", ErrNoAccount, notice.From)
	}
	credited, err := funds.Add(notice.Quantity)
	if err != nil {
		return err
	}
	c.records[notice.From] = credited
	return nil
}

// Balance returns the owner's record. The second return is false when no
// record exists, the "zero rows" state of a closed or never-opened account.
func (c *Contract) Balance(owner chain.Name) (Record, bool) {
	funds, ok := c.records[owner]
	if !ok {
		return Record{}, false
	}
	return Record{Owner: owner, Funds: funds}, true
}

// TotalFunds sums all records: by construction it equals the contract's own
// balance on the token ledger.
func (c *Contract) TotalFunds() asset.Asset {
	total := asset.New(0, c.symbol)
	for _, funds := range c.records {
		total.Amount += funds.Amount
	}
	return total
}

// Snapshot deep-copies the record table for transaction rollback.
func (c *Contract) Snapshot() any {
	snap := make(map[chain.Name]asset.Asset, len(c.records))
	for owner, funds := range c.records {
		snap[owner] = funds
	}
	return snap
}

// Restore replaces the record table with an earlier snapshot.
func (c *Contract) Restore(snapshot any) {
	c.records = snapshot.(map[chain.Name]asset.Asset)
}

const recordsTable = "subaccounts"

// TableNames lists the tables this contract persists.
func (c *Contract) TableNames() []string {
	return []string{recordsTable}
}

// ExportTables serializes committed records as JSON rows keyed by owner.
func (c *Contract) ExportTables() map[string]map[string][]byte {
	rows := make(map[string][]byte, len(c.records))
	for owner, funds := range c.records {
		data, err := json.Marshal(Record{Owner: owner, Funds: funds})
		if err != nil {
			continue
		}
		rows[string(owner)] = data
	}
	return map[string]map[string][]byte{recordsTable: rows}
}

// ImportTables restores committed records saved by ExportTables.
func (c *Contract) ImportTables(tables map[string]map[string][]byte) error {
	c.records = make(map[chain.Name]asset.Asset)
	for key, data := range tables[recordsTable] {
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("decode subaccount row %s: %w", key, err)
		}
		c.records[rec.Owner] = rec.Funds
	}
	return nil
}
