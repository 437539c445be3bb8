package entity

import "time"

const (
	// WinRateScale is the denominator of pool win rates: a threshold of
	// WinRateScale wins every roll.
	WinRateScale int64 = 100_000_000

	// BpsScale is the denominator of basis-point values.
	BpsScale = 10_000

	MaxRoyalties = 10
)

type Royalty struct {
	Recipient string `json:"recipient"`
	Bps       int64  `json:"bps"`
}

// Pool is a self-contained lottery instance. The primary key is the
// monotonically assigned pool id, starting at zero.
type Pool struct {
	SnowFlakeBase

	Name      string
	Symbol    string
	Memo      string
	TicketCID string
	WinCID    string

	// WinRateThreshold is the win probability numerator over WinRateScale,
	// before bonus scaling.
	WinRateThreshold int64

	EntryFee int64
	FeeToken string

	// TicketToken is the NFT collection minted at pool creation; every
	// ticket-as-NFT and every prize bearer is a serial of it.
	TicketToken string `gorm:"index"`

	Royalties Array[Royalty]

	Paused bool
	Closed bool

	IsGlobal     bool
	OwnerAddress string `gorm:"index"`

	// PrizeManager is the per-pool prize-add delegate, empty when unset.
	PrizeManager string

	// PlatformPercentage is frozen from the contract state at creation time.
	PlatformPercentage int64

	Duration   time.Duration
	MinEntries int64
	MaxEntries int64

	MaxTicketsPerBuy  int64
	MaxTicketsPerUser int64

	OutstandingEntries    int64
	OutstandingTicketNFTs int64 `gorm:"column:outstanding_ticket_nfts"`

	PrizeCount int64
}

// UserEntry is the counter form of unrolled tickets.
type UserEntry struct {
	Base

	PoolID      int64  `gorm:"uniqueIndex:idx_entry_pool_user"`
	UserAddress string `gorm:"uniqueIndex:idx_entry_pool_user"`

	Count int64

	// TotalBought accumulates across rolls for the per-user entry cap.
	TotalBought int64
}
