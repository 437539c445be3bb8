package model

type CalculateBoostRequest struct {
	User   string `json:"user" form:"user"`
	PoolID int64  `json:"pool_id" form:"pool_id"`
}

type CalculateBoostResponse struct {
	// Boost is the additive bonus in basis points scaled by 1e4, so it
	// composes with the 1e8 win-rate scale.
	Boost int64 `json:"boost"`
}

type SetBurnPercentageRequest struct {
	Bps         int64  `json:"bps"`
	ExemptToken string `json:"exempt_token"`
}

type SetBurnPercentageResponse struct{}

type SetLazyBalanceBonusRequest struct {
	Threshold int64 `json:"threshold"`
	Bps       int64 `json:"bps"`
}

type SetLazyBalanceBonusResponse struct{}

type SetNFTBonusRequest struct {
	Token string `json:"token"`
	Bps   int64  `json:"bps"`
}

type SetNFTBonusResponse struct{}

type RemoveNFTBonusRequest struct {
	Token string `json:"token"`
}

type RemoveNFTBonusResponse struct{}

type AddTimeBonusRequest struct {
	StartTime int64 `json:"start_time"`
	EndTime   int64 `json:"end_time"`
	Bps       int64 `json:"bps"`
}

type AddTimeBonusResponse struct {
	ID int64 `json:"id"`
}

type RemoveTimeBonusRequest struct {
	ID int64 `json:"id"`
}

type RemoveTimeBonusResponse struct{}

type TimeBonus struct {
	ID        int64 `json:"id"`
	StartTime int64 `json:"start_time"`
	EndTime   int64 `json:"end_time"`
	Bps       int64 `json:"bps"`
}

type NFTBonus struct {
	Token string `json:"token"`
	Bps   int64  `json:"bps"`
}

type GetBonusConfigRequest struct{}

type GetBonusConfigResponse struct {
	BurnPercentageBps    int64      `json:"burn_percentage_bps"`
	BurnExemptToken      string     `json:"burn_exempt_token"`
	LazyBalanceThreshold int64      `json:"lazy_balance_threshold"`
	LazyBalanceBonusBps  int64      `json:"lazy_balance_bonus_bps"`
	NFTBonuses           []NFTBonus `json:"nft_bonuses"`
	TimeBonuses          []TimeBonus `json:"time_bonuses"`
}
