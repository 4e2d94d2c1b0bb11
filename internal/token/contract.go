package token

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/subledger/subledger/internal/asset"
	"github.com/subledger/subledger/internal/chain"
)

var (
	// ErrCurrencyExists occurs when creating a currency whose symbol is taken.
	ErrCurrencyExists = errors.New("token with symbol already exists")

	// ErrUnknownCurrency occurs when acting on a symbol that was never created.
	ErrUnknownCurrency = errors.New("token with symbol does not exist")

	// ErrSupplyExceeded occurs when an issue would push supply past the maximum.
	ErrSupplyExceeded = errors.New("quantity exceeds available supply")

	// ErrOverdrawn occurs when a transfer exceeds the sender's balance.
	ErrOverdrawn = errors.New("overdrawn balance")

	// ErrSelfTransfer occurs when sender and recipient are the same account.
	ErrSelfTransfer = errors.New("cannot transfer to self")
)

// MaxMemoBytes bounds transfer memos.
const MaxMemoBytes = 256

// CurrencyStats tracks the circulating and maximum supply of one symbol.
type CurrencyStats struct {
	Supply    asset.Asset `json:"supply"`
	MaxSupply asset.Asset `json:"max_supply"`
	Issuer    chain.Name  `json:"issuer"`
}

// Contract is the fungible token ledger: the source of truth for global
// token ownership. It holds per-owner balances and per-symbol supply stats,
// and notifies both sides of every transfer within the moving transaction.
type Contract struct {
	self     chain.Name
	stats    map[string]CurrencyStats
	balances map[chain.Name]map[string]asset.Asset
}

// New builds an empty token contract hosted under the given account.
func New(self chain.Name) *Contract {
	return &Contract{
		self:     self,
		stats:    make(map[string]CurrencyStats),
		balances: make(map[chain.Name]map[string]asset.Asset),
	}
}

// Account returns the contract's hosting account name.
func (c *Contract) Account() chain.Name { return c.self }

// Create registers a new currency. Only the token contract's own account
// may create currencies.
func (c *Contract) Create(tx *chain.TxContext, issuer chain.Name, maxSupply asset.Asset) error {
	if err := tx.RequireAuth(c.self); err != nil {
		return err
	}
	if err := maxSupply.Validate(); err != nil {
		return err
	}
	if !maxSupply.IsPositive() {
		return fmt.Errorf("%w: max supply must be positive", asset.ErrInvalidAsset)
	}
	code := maxSupply.Symbol.Code
	if _, exists := c.stats[code]; exists {
		return fmt.Errorf("%w: %s", ErrCurrencyExists, code)
	}

	c.stats[code] = CurrencyStats{
		Supply:    asset.New(0, maxSupply.Symbol),
		MaxSupply: maxSupply,
		Issuer:    issuer,
	}
	return nil
}

// Issue mints quantity to the recipient, bounded by the maximum supply.
// Requires the issuer's authority.
func (c *Contract) Issue(tx *chain.TxContext, to chain.Name, quantity asset.Asset, memo string) error {
	if err := validateQuantity(quantity, memo); err != nil {
		return err
	}
	st, ok := c.stats[quantity.Symbol.Code]
	if !ok {
		return fmt.Errorf("%w: %s, create token before issue", ErrUnknownCurrency, quantity.Symbol.Code)
	}
	if err := tx.RequireAuth(st.Issuer); err != nil {
		return err
	}
	if quantity.Symbol != st.Supply.Symbol {
		return fmt.Errorf("%w: %s vs %s", asset.ErrSymbolMismatch, quantity.Symbol, st.Supply.Symbol)
	}

	supply, err := st.Supply.Add(quantity)
	if err != nil {
		return err
	}
	if supply.Amount > st.MaxSupply.Amount {
		return fmt.Errorf("%w: supply %s, max %s", ErrSupplyExceeded, supply, st.MaxSupply)
	}

	st.Supply = supply
	c.stats[quantity.Symbol.Code] = st
	return c.credit(to, quantity)
}

// Transfer moves quantity from one owner to another and notifies the
// contracts registered for both, inside the same transaction. An error from
// either observer aborts the transfer.
func (c *Contract) Transfer(tx *chain.TxContext, from, to chain.Name, quantity asset.Asset, memo string) error {
	if err := tx.RequireAuth(from); err != nil {
		return err
	}
	if from == to {
		return ErrSelfTransfer
	}
	if err := validateQuantity(quantity, memo); err != nil {
		return err
	}
	st, ok := c.stats[quantity.Symbol.Code]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCurrency, quantity.Symbol.Code)
	}
	if quantity.Symbol != st.Supply.Symbol {
		return fmt.Errorf("%w: %s vs %s", asset.ErrSymbolMismatch, quantity.Symbol, st.Supply.Symbol)
	}

	if err := c.debit(from, quantity); err != nil {
		return err
	}
	if err := c.credit(to, quantity); err != nil {
		return err
	}

	notice := chain.TransferNotice{From: from, To: to, Quantity: quantity, Memo: memo}
	if err := tx.NotifyTransfer(from, notice); err != nil {
		return err
	}
	return tx.NotifyTransfer(to, notice)
}

// Balance returns the owner's balance for the symbol code. The second
// return is false when the owner has never held the currency.
func (c *Contract) Balance(owner chain.Name, code string) (asset.Asset, bool) {
	byCode, ok := c.balances[owner]
	if !ok {
		return asset.Asset{}, false
	}
	bal, ok := byCode[code]
	return bal, ok
}

// Stats returns the currency stats for the symbol code.
func (c *Contract) Stats(code string) (CurrencyStats, bool) {
	st, ok := c.stats[code]
	return st, ok
}

func (c *Contract) credit(owner chain.Name, quantity asset.Asset) error {
	byCode, ok := c.balances[owner]
	if !ok {
		byCode = make(map[string]asset.Asset)
		c.balances[owner] = byCode
	}
	current, ok := byCode[quantity.Symbol.Code]
	if !ok {
		current = asset.New(0, quantity.Symbol)
	}
	next, err := current.Add(quantity)
	if err != nil {
		return err
	}
	byCode[quantity.Symbol.Code] = next
	return nil
}

func (c *Contract) debit(owner chain.Name, quantity asset.Asset) error {
	byCode, ok := c.balances[owner]
	if !ok {
		return fmt.Errorf("%w: %s holds no %s", ErrOverdrawn, owner, quantity.Symbol.Code)
	}
	current, ok := byCode[quantity.Symbol.Code]
	if !ok {
		current = asset.New(0, quantity.Symbol)
	}
	if current.Amount < quantity.Amount {
		return fmt.Errorf("%w: %s has %s, needs %s", ErrOverdrawn, owner, current, quantity)
	}
	next, err := current.Sub(quantity)
	if err != nil {
		return err
	}
	byCode[quantity.Symbol.Code] = next
	return nil
}

func validateQuantity(quantity asset.Asset, memo string) error {
	if err := quantity.Validate(); err != nil {
		return err
	}
	if !quantity.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive", asset.ErrInvalidAsset)
	}
	if len(memo) > MaxMemoBytes {
		return fmt.Errorf("memo has more than %d bytes", MaxMemoBytes)
	}
	return nil
}

type contractSnapshot struct {
	stats    map[string]CurrencyStats
	balances map[chain.Name]map[string]asset.Asset
}

// Snapshot deep-copies the contract state for transaction rollback.
func (c *Contract) Snapshot() any {
	snap := contractSnapshot{
		stats:    make(map[string]CurrencyStats, len(c.stats)),
		balances: make(map[chain.Name]map[string]asset.Asset, len(c.balances)),
	}
	for code, st := range c.stats {
		snap.stats[code] = st
	}
	for owner, byCode := range c.balances {
		inner := make(map[string]asset.Asset, len(byCode))
		for code, bal := range byCode {
			inner[code] = bal
		}
		snap.balances[owner] = inner
	}
	return snap
}

// Restore replaces live state with a snapshot taken earlier in the same
// transaction attempt.
func (c *Contract) Restore(snapshot any) {
	snap := snapshot.(contractSnapshot)
	c.stats = snap.stats
	c.balances = snap.balances
}

const (
	balancesTable = "token_balances"
	statsTable    = "token_stats"
)

type balanceRow struct {
	Owner   chain.Name  `json:"owner"`
	Balance asset.Asset `json:"balance"`
}

// TableNames lists the tables this contract persists.
func (c *Contract) TableNames() []string {
	return []string{balancesTable, statsTable}
}

// ExportTables serializes committed state as JSON rows keyed for stable
// replacement on the next commit.
func (c *Contract) ExportTables() map[string]map[string][]byte {
	balances := make(map[string][]byte)
	for owner, byCode := range c.balances {
		for code, bal := range byCode {
			data, err := json.Marshal(balanceRow{Owner: owner, Balance: bal})
			if err != nil {
				continue
			}
			balances[string(owner)+":"+code] = data
		}
	}

	stats := make(map[string][]byte)
	for code, st := range c.stats {
		data, err := json.Marshal(st)
		if err != nil {
			continue
		}
		stats[code] = data
	}

	return map[string]map[string][]byte{
		balancesTable: balances,
		statsTable:    stats,
	}
}

// ImportTables restores committed state saved by ExportTables.
func (c *Contract) ImportTables(tables map[string]map[string][]byte) error {
	c.stats = make(map[string]CurrencyStats)
	c.balances = make(map[chain.Name]map[string]asset.Asset)

	for code, data := range tables[statsTable] {
		var st CurrencyStats
		if err := json.Unmarshal(data, &st); err != nil {
			return fmt.Errorf("decode stats row %s: %w", code, err)
		}
		c.stats[code] = st
	}
	for key, data := range tables[balancesTable] {
		var row balanceRow
		if err := json.Unmarshal(data, &row); err != nil {
			return fmt.Errorf("decode balance row %s: %w", key, err)
		}
		if err := c.credit(row.Owner, row.Balance); err != nil {
			return err
		}
	}
	return nil
}
