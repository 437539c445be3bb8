package entity

// ContractStateID is the primary key of the singleton contract state row.
const ContractStateID = 1

// ContractState is the global configuration of the deployment: the pause
// switch, pool creation fees, the platform share applied to new community
// pools, and the bonus engine settings that are not per collection.
type ContractState struct {
	SnowFlakeBase

	Paused bool

	CreationFeeHbar int64
	CreationFeeLazy int64

	// PlatformPercentage is the share of community pool proceeds diverted to
	// the platform, frozen onto each pool at creation. At most 25.
	PlatformPercentage int64

	// BurnPercentageBps is burned from fungible payouts on claim unless the
	// claimant holds the exempt collection.
	BurnPercentageBps int64
	BurnExemptToken   string

	LazyBalanceThreshold int64
	LazyBalanceBonusBps  int64
}

type Admin struct {
	Base

	Address string `gorm:"uniqueIndex"`
}

type GlobalPrizeManager struct {
	Base

	Address string `gorm:"uniqueIndex"`
}

type NFTBonus struct {
	Base

	Token string `gorm:"uniqueIndex"`
	Bps   int64
}

type TimeBonus struct {
	SnowFlakeBase

	StartTime int64
	EndTime   int64
	Bps       int64
}

// PoolProceeds tracks entry fee revenue per pool and token.
type PoolProceeds struct {
	Base

	PoolID    int64  `gorm:"uniqueIndex:idx_proceeds_pool_token"`
	Token     string `gorm:"uniqueIndex:idx_proceeds_pool_token"`
	Total     int64
	Withdrawn int64
}

type PlatformBalance struct {
	Base

	Token  string `gorm:"uniqueIndex"`
	Amount int64
}
