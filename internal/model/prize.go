package model

type AddPrizePackageRequest struct {
	PoolID     int64     `json:"pool_id"`
	Token      string    `json:"token"`
	Amount     int64     `json:"amount"`
	NFTTokens  []string  `json:"nft_tokens"`
	NFTSerials [][]int64 `json:"nft_serials"`

	PayableAmount int64 `json:"payable_amount"`
}

type AddPrizePackageResponse struct {
	Position int64 `json:"position"`
}

type AddMultipleFungiblePrizesRequest struct {
	PoolID  int64   `json:"pool_id"`
	Token   string  `json:"token"`
	Amounts []int64 `json:"amounts"`

	PayableAmount int64 `json:"payable_amount"`
}

type AddMultipleFungiblePrizesResponse struct {
	StartPosition int64 `json:"start_position"`
	Count         int64 `json:"count"`
}

type RemovePrizesRequest struct {
	PoolID   int64 `json:"pool_id"`
	Position int64 `json:"position"`
}

type RemovePrizesResponse struct {
	Removed PrizePackage `json:"removed"`
}

type GetPrizesRequest struct {
	PoolID int64 `json:"pool_id" form:"pool_id"`
}

type GetPrizesResponse struct {
	Prizes []PrizePackage `json:"prizes"`
}
