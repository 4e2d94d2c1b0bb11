package identity

import (
	"time"

	"github.com/subledger/subledger/internal/chain"
)

// Signer binds a chain account name to an API credential. Requests
// authenticated as a signer carry that account's active authority into the
// ledger transaction they trigger.
type Signer struct {
	ID         string
	Account    chain.Name
	SecretHash []byte
	CreatedAt  time.Time
}

// Credentials is what a caller presents to act as a signer.
type Credentials struct {
	Account chain.Name
	Secret  string
}
