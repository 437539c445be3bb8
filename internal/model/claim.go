package model

type GetPendingPrizesRequest struct {
	User string `json:"user" form:"user"`
}

type GetPendingPrizesResponse struct {
	Prizes []PendingPrize `json:"prizes"`
}

type GetPendingPrizeRequest struct {
	User     string `json:"user" form:"user"`
	Position int64  `json:"position" form:"position"`
}

type GetPendingPrizeResponse struct {
	Prize PendingPrize `json:"prize"`
}

type GetPendingPrizeByNFTRequest struct {
	Token  string `json:"token" form:"token"`
	Serial int64  `json:"serial" form:"serial"`
}

type GetPendingPrizeByNFTResponse struct {
	Prize PendingPrize `json:"prize"`
}

type ClaimPrizeRequest struct {
	Position int64 `json:"position"`
}

type ClaimPrizeResponse struct {
	Paid   PrizePackage `json:"paid"`
	Burned int64        `json:"burned"`
}

type ClaimAllPrizesRequest struct{}

type ClaimAllPrizesResponse struct {
	Claimed int64 `json:"claimed"`
	Burned  int64 `json:"burned"`
}

type RedeemPrizeToNFTRequest struct {
	Positions []int64 `json:"positions"`
}

type RedeemPrizeToNFTResponse struct {
	BearerToken   string  `json:"bearer_token"`
	BearerSerials []int64 `json:"bearer_serials"`
}

type ClaimPrizeFromNFTRequest struct {
	Token   string  `json:"token"`
	Serials []int64 `json:"serials"`
}

type ClaimPrizeFromNFTResponse struct {
	Claimed int64 `json:"claimed"`
	Burned  int64 `json:"burned"`
}
