package client

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lazy-lotto/backend/pkg/crypto"
)

// PRNG produces the seed every roll derives its outcome from. Production
// uses the crypto/rand implementation; tests swap in a mock with a fixed
// seed so outcomes are deterministic.
type PRNG interface {
	GetSeed(ctx context.Context, salt common.Hash) (common.Hash, error)
}

type hashPRNG struct{}

func NewHashPRNG() PRNG {
	return &hashPRNG{}
}

func (p *hashPRNG) GetSeed(ctx context.Context, salt common.Hash) (common.Hash, error) {
	b, err := crypto.GenerateRandomBytes(common.HashLength)
	if err != nil {
		return common.Hash{}, err
	}

	sum := crypto.SHA256(append(b, salt.Bytes()...))
	return common.BytesToHash(sum[:]), nil
}

type mockPRNG struct {
	seed common.Hash
}

// NewMockPRNG returns a PRNG that always yields the given seed.
func NewMockPRNG(seed common.Hash) PRNG {
	return &mockPRNG{seed: seed}
}

func (p *mockPRNG) GetSeed(ctx context.Context, salt common.Hash) (common.Hash, error) {
	return p.seed, nil
}
