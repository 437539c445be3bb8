package model

type BuyEntryRequest struct {
	PoolID int64 `json:"pool_id"`
	Count  int64 `json:"count"`

	// PayableAmount is the native value attached to the call, used when the
	// pool charges its entry fee in hbar.
	PayableAmount int64 `json:"payable_amount"`
}

type BuyEntryResponse struct {
	Entries int64 `json:"entries"`
	// Refund is the excess native value returned to the caller.
	Refund int64 `json:"refund"`
}

type BuyAndRollEntryRequest struct {
	PoolID        int64 `json:"pool_id"`
	Count         int64 `json:"count"`
	PayableAmount int64 `json:"payable_amount"`
}

type BuyAndRollEntryResponse struct {
	Wins        int64 `json:"wins"`
	StartOffset int64 `json:"start_offset"`
	Refund      int64 `json:"refund"`
}

type BuyAndRedeemEntryRequest struct {
	PoolID        int64 `json:"pool_id"`
	Count         int64 `json:"count"`
	PayableAmount int64 `json:"payable_amount"`
}

type BuyAndRedeemEntryResponse struct {
	Serials []int64 `json:"serials"`
	Refund  int64   `json:"refund"`
}

type RedeemEntriesToNFTRequest struct {
	PoolID int64 `json:"pool_id"`
	Count  int64 `json:"count"`
}

type RedeemEntriesToNFTResponse struct {
	Serials []int64 `json:"serials"`
}

type GetUserEntriesRequest struct {
	PoolID int64  `json:"pool_id" form:"pool_id"`
	User   string `json:"user" form:"user"`
}

type GetUserEntriesResponse struct {
	Count int64 `json:"count"`
}
