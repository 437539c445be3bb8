package entity

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/lazy-lotto/backend/pkg/enum"
)

// HbarAddress is the zero-address sentinel meaning native hbar.
var HbarAddress = common.Address{}.Hex()

func IsHbar(token string) bool {
	return token == "" || common.HexToAddress(token) == (common.Address{})
}

type TokenType string

var (
	TokenTypeFungible    = enum.New(TokenType("fungible"))
	TokenTypeNonFungible = enum.New(TokenType("non_fungible"))
)

// TokenClass is a token created on the ledger. The hbar pseudo token is the
// class at the zero address, created during migration.
type TokenClass struct {
	Base

	Address  string `gorm:"uniqueIndex"`
	Type     TokenType
	Name     string
	Symbol   string
	Memo     string
	Decimals int64
	Treasury string

	TotalSupply int64
	NextSerial  int64

	Royalties Array[Royalty]
}

type TokenBalance struct {
	Base

	Account string `gorm:"uniqueIndex:idx_balance_account_token"`
	Token   string `gorm:"uniqueIndex:idx_balance_account_token"`
	Amount  int64
}

// NFTSerial is one serial of a non-fungible class. Wiping soft deletes the
// row so a wiped serial never resolves to an owner again.
type NFTSerial struct {
	Base

	Token  string `gorm:"uniqueIndex:idx_serial_token_serial"`
	Serial int64  `gorm:"uniqueIndex:idx_serial_token_serial"`
	Owner  string `gorm:"index"`

	MetadataCID string

	// Winning marks a ticket serial that has been repurposed as a prize
	// bearer.
	Winning bool
}

type TokenAllowance struct {
	Base

	Owner   string `gorm:"uniqueIndex:idx_allowance_owner_spender_token"`
	Spender string `gorm:"uniqueIndex:idx_allowance_owner_spender_token"`
	Token   string `gorm:"uniqueIndex:idx_allowance_owner_spender_token"`

	Amount     int64
	ApproveAll bool
}

// TokenAssociation must exist before an account can receive a token other
// than hbar.
type TokenAssociation struct {
	Base

	Account string `gorm:"uniqueIndex:idx_association_account_token"`
	Token   string `gorm:"uniqueIndex:idx_association_account_token"`
}

// Delegation is a delegate-of-record entry consulted by the bonus engine.
// Serial zero delegates the whole collection.
type Delegation struct {
	Base

	Owner    string `gorm:"index"`
	Delegate string `gorm:"index"`
	Token    string
	Serial   int64
}
