package identity

import (
	"context"
	"sync"

	"github.com/subledger/subledger/internal/chain"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[chain.Name]Signer
}

// NewMemoryRepository constructs an in-memory repository for development
// mode and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[chain.Name]Signer)}
}

func (r *memoryRepository) Create(_ context.Context, signer Signer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.storage[signer.Account]; exists {
		return ErrSignerExists
	}
	r.storage[signer.Account] = signer
	return nil
}

func (r *memoryRepository) FindByAccount(_ context.Context, account chain.Name) (Signer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	signer, ok := r.storage[account]
	if !ok {
		return Signer{}, ErrSignerNotFound
	}
	return signer, nil
}
