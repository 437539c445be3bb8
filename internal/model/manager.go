package model

type SetCreationFeesRequest struct {
	FeeHbar int64 `json:"fee_hbar"`
	FeeLazy int64 `json:"fee_lazy"`
}

type SetCreationFeesResponse struct{}

type SetPlatformPercentageRequest struct {
	Percentage int64 `json:"percentage"`
}

type SetPlatformPercentageResponse struct{}

type WithdrawPoolProceedsRequest struct {
	PoolID int64  `json:"pool_id"`
	Token  string `json:"token"`
}

type WithdrawPoolProceedsResponse struct {
	OwnerAmount    int64 `json:"owner_amount"`
	PlatformAmount int64 `json:"platform_amount"`
}

type WithdrawPlatformFeesRequest struct {
	Token string `json:"token"`
}

type WithdrawPlatformFeesResponse struct {
	Amount int64 `json:"amount"`
}

type SetPoolPrizeManagerRequest struct {
	PoolID  int64  `json:"pool_id"`
	Manager string `json:"manager"`
}

type SetPoolPrizeManagerResponse struct{}

type AddGlobalPrizeManagerRequest struct {
	Manager string `json:"manager"`
}

type AddGlobalPrizeManagerResponse struct{}

type RemoveGlobalPrizeManagerRequest struct {
	Manager string `json:"manager"`
}

type RemoveGlobalPrizeManagerResponse struct{}

type CanAddPrizesRequest struct {
	PoolID  int64  `json:"pool_id" form:"pool_id"`
	Address string `json:"address" form:"address"`
}

type CanAddPrizesResponse struct {
	Allowed bool `json:"allowed"`
}

type TransferPoolOwnershipRequest struct {
	PoolID   int64  `json:"pool_id"`
	NewOwner string `json:"new_owner"`
}

type TransferPoolOwnershipResponse struct{}

type GetGlobalPoolsRequest struct {
	Offset int `json:"offset" form:"offset"`
	Limit  int `json:"limit" form:"limit"`
}

type GetGlobalPoolsResponse struct {
	Pools []Pool `json:"pools"`
}

type GetCommunityPoolsRequest struct {
	Offset int `json:"offset" form:"offset"`
	Limit  int `json:"limit" form:"limit"`
}

type GetCommunityPoolsResponse struct {
	Pools []Pool `json:"pools"`
}

type GetUserPoolsRequest struct {
	Owner string `json:"owner" form:"owner"`
}

type GetUserPoolsResponse struct {
	Pools []Pool `json:"pools"`
}
