package subaccount

import (
	"context"

	"github.com/subledger/subledger/internal/asset"
	"github.com/subledger/subledger/internal/chain"
)

// Service runs subaccount actions as host transactions, one atomic
// transaction per external action, carrying the signer's active authority.
type Service struct {
	host     *chain.Host
	contract *Contract
}

// NewService builds a subaccount service over the host and contract.
func NewService(host *chain.Host, contract *Contract) *Service {
	return &Service{host: host, contract: contract}
}

// Open provisions a zero-balance subaccount for user, billed to payer. The
// transaction carries only the payer's authority.
func (s *Service) Open(ctx context.Context, user, payer chain.Name) error {
	auths := []chain.PermissionLevel{chain.Active(payer)}
	return s.host.Execute(ctx, auths, func(tx *chain.TxContext) error {
		return s.contract.OpenAccount(tx, user, payer)
	})
}

// Withdraw pays quantity out of custody back to from, with from's
// authority.
func (s *Service) Withdraw(ctx context.Context, from chain.Name, quantity asset.Asset, memo string) error {
	auths := []chain.PermissionLevel{chain.Active(from)}
	return s.host.Execute(ctx, auths, func(tx *chain.TxContext) error {
		return s.contract.Withdraw(tx, from, quantity, memo)
	})
}

// Close deletes user's empty subaccount. The transaction carries the
// signer's authority; the contract rejects it unless signer is the user.
func (s *Service) Close(ctx context.Context, signer, user chain.Name) error {
	auths := []chain.PermissionLevel{chain.Active(signer)}
	return s.host.Execute(ctx, auths, func(tx *chain.TxContext) error {
		return s.contract.CloseAccount(tx, user)
	})
}

// Balance reads the committed record for owner; ok is false when no record
// exists.
func (s *Service) Balance(owner chain.Name) (Record, bool) {
	var (
		rec Record
		ok  bool
	)
	s.host.View(func() {
		rec, ok = s.contract.Balance(owner)
	})
	return rec, ok
}
