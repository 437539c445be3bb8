package model

type RollAllRequest struct {
	PoolID int64 `json:"pool_id"`
}

type RollAllResponse struct {
	Wins        int64 `json:"wins"`
	StartOffset int64 `json:"start_offset"`
}

type RollBatchRequest struct {
	PoolID int64 `json:"pool_id"`
	Count  int64 `json:"count"`
}

type RollBatchResponse struct {
	Wins        int64 `json:"wins"`
	StartOffset int64 `json:"start_offset"`
}

type RollWithNFTRequest struct {
	PoolID  int64   `json:"pool_id"`
	Serials []int64 `json:"serials"`
}

type RollWithNFTResponse struct {
	Wins        int64 `json:"wins"`
	StartOffset int64 `json:"start_offset"`
}

const (
	PRNGModeHash = "hash"
	PRNGModeMock = "mock"
)

type SetPRNGRequest struct {
	Mode string `json:"mode"`
	Seed string `json:"seed"`
}

type SetPRNGResponse struct{}
