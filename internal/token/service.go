package token

import (
	"context"

	"github.com/subledger/subledger/internal/asset"
	"github.com/subledger/subledger/internal/chain"
)

// Service runs token actions as host transactions. Each call is one atomic
// transaction carrying the signer's active authority.
type Service struct {
	host     *chain.Host
	contract *Contract
}

// NewService builds a token service over the host and contract.
func NewService(host *chain.Host, contract *Contract) *Service {
	return &Service{host: host, contract: contract}
}

// CreateCurrency registers a new currency under the token contract's own
// authority. Used at bootstrap.
func (s *Service) CreateCurrency(ctx context.Context, issuer chain.Name, maxSupply asset.Asset) error {
	auths := []chain.PermissionLevel{chain.Active(s.contract.Account())}
	return s.host.Execute(ctx, auths, func(tx *chain.TxContext) error {
		return s.contract.Create(tx, issuer, maxSupply)
	})
}

// Issue mints tokens to a recipient with the signer's authority.
func (s *Service) Issue(ctx context.Context, signer, to chain.Name, quantity asset.Asset, memo string) error {
	auths := []chain.PermissionLevel{chain.Active(signer)}
	return s.host.Execute(ctx, auths, func(tx *chain.TxContext) error {
		return s.contract.Issue(tx, to, quantity, memo)
	})
}

// Transfer moves tokens between owners with the sender's authority. Any
// notification handler failure rolls the whole transfer back.
func (s *Service) Transfer(ctx context.Context, from, to chain.Name, quantity asset.Asset, memo string) error {
	auths := []chain.PermissionLevel{chain.Active(from)}
	return s.host.Execute(ctx, auths, func(tx *chain.TxContext) error {
		return s.contract.Transfer(tx, from, to, quantity, memo)
	})
}

// Balance reads an owner's committed balance for a symbol code.
func (s *Service) Balance(owner chain.Name, code string) (asset.Asset, bool) {
	var (
		bal asset.Asset
		ok  bool
	)
	s.host.View(func() {
		bal, ok = s.contract.Balance(owner, code)
	})
	return bal, ok
}
