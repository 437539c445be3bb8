package ethutil

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/lazy-lotto/backend/pkg/crypto"
)

// NewRandomAddress draws a fresh 20-byte address. Token classes get their
// address from here at creation time.
func NewRandomAddress() (string, error) {
	b, err := crypto.GenerateRandomBytes(common.AddressLength)
	if err != nil {
		return "", err
	}

	return common.BytesToAddress(b).Hex(), nil
}

// NormalizeAddress maps the many hex spellings of an address onto the
// checksummed form used as a database key.
func NormalizeAddress(address string) string {
	return common.HexToAddress(address).Hex()
}
