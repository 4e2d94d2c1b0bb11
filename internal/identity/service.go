package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/subledger/subledger/internal/chain"
)

var (
	// ErrInvalidCredentials covers both unknown accounts and wrong secrets,
	// deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid signer credentials")

	// ErrSignerExists occurs when registering an account that already has a
	// signer credential.
	ErrSignerExists = errors.New("signer already registered")

	// ErrSignerNotFound occurs when looking up an account with no credential.
	ErrSignerNotFound = errors.New("signer not found")
)

const minSecretLength = 8

// Service manages signer credential lifecycle.
type Service struct {
	repo Repository
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register stores a new signer with a hashed secret.
func (s *Service) Register(ctx context.Context, creds Credentials) (Signer, error) {
	if err := creds.Account.Validate(); err != nil {
		return Signer{}, err
	}
	if len(creds.Secret) < minSecretLength {
		return Signer{}, errors.New("secret must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Secret), bcrypt.DefaultCost)
	if err != nil {
		return Signer{}, err
	}

	signer := Signer{
		ID:         uuid.New().String(),
		Account:    creds.Account,
		SecretHash: hash,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, signer); err != nil {
		return Signer{}, err
	}
	return signer, nil
}

// Authenticate resolves credentials to the account authority they grant.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (chain.Name, error) {
	signer, err := s.repo.FindByAccount(ctx, creds.Account)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(signer.SecretHash, []byte(creds.Secret)); err != nil {
		return "", ErrInvalidCredentials
	}
	return signer.Account, nil
}
