package entity

// PrizePackage is one atomic payout owned by a pool until roll time.
// Packages form an ordered list per pool; removal swaps the last package
// into the hole, so positions are stable only between mutations.
type PrizePackage struct {
	Base

	PoolID   int64 `gorm:"uniqueIndex:idx_prize_pool_position"`
	Position int64 `gorm:"uniqueIndex:idx_prize_pool_position"`

	Token  string
	Amount int64

	NFTTokens  Array[string]
	NFTSerials Array[[]int64]
}

// PendingPrize is a won package queued on a user account. While AsNFT is
// false the row belongs to the user's positional queue; once redeemed to a
// bearer serial it is addressed by (BearerToken, BearerSerial) instead and
// ownership travels with the serial.
type PendingPrize struct {
	Base

	UserAddress string `gorm:"index"`
	PoolID      int64

	// Position orders the counter-form queue per user. Claims swap the tail
	// entry into the hole. Redeemed-to-NFT rows keep Position = -1.
	Position int64

	Snapshot Map

	AsNFT        bool
	BearerToken  string `gorm:"index:idx_pending_bearer"`
	BearerSerial int64  `gorm:"index:idx_pending_bearer"`
}
