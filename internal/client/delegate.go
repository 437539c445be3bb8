package client

import (
	"context"

	"github.com/lazy-lotto/backend/internal/repository"
)

// DelegateRegistry answers whether an account counts as holding a
// collection, either directly or through a delegation some other wallet
// granted it. Bonus and burn-exemption checks go through this.
type DelegateRegistry interface {
	HoldsOrDelegated(ctx context.Context, account, token string) (bool, error)
	HoldingCount(ctx context.Context, account, token string) (int64, error)
}

type delegateRegistry struct {
	ledgerRepo repository.LedgerRepository
}

func NewDelegateRegistry(ledgerRepo repository.LedgerRepository) *delegateRegistry {
	return &delegateRegistry{ledgerRepo: ledgerRepo}
}

func (r *delegateRegistry) HoldsOrDelegated(ctx context.Context, account, token string) (bool, error) {
	count, err := r.ledgerRepo.CountSerialsByOwner(ctx, account, token)
	if err != nil {
		return false, err
	}

	if count > 0 {
		return true, nil
	}

	return r.ledgerRepo.HasDelegatedSerial(ctx, account, token)
}

func (r *delegateRegistry) HoldingCount(ctx context.Context, account, token string) (int64, error) {
	return r.ledgerRepo.CountSerialsByOwner(ctx, account, token)
}
